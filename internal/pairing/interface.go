package pairing

import "github.com/crosscourt/shuttletrack/internal/club"

// Store defines the database operations required by the pairing aggregator.
type Store interface {
	GetGroupPlayer(groupID, groupPlayerID string) (*club.GroupPlayer, error)
	ListGroupPlayers(groupID string) ([]club.GroupPlayer, error)
	ListSessions(groupID string) ([]club.Session, error)
	ListSessionPlayers(sessionIDs []string) ([]club.SessionPlayer, error)
	ListCompletedGames(sessionIDs []string) ([]club.Game, int, error)
	UpsertPartnerStats(ps club.PartnerStats) error
	UpsertPairingMatchup(pm club.PairingMatchup) error
	ClearPartnerStats(groupID string) error
	ClearPairingMatchups(groupID string) error
	ListPartnerStats(groupID string) ([]club.PartnerStats, error)
	ListPairingMatchups(groupID string) ([]club.PairingMatchup, error)
}
