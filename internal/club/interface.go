package club

import "github.com/crosscourt/shuttletrack/internal/schedule"

// ClubStore defines the interface for interacting with the club's data.
// Read operations signal "not found" with a nil result and nil error;
// errors are reserved for storage failures.
type ClubStore interface {
	CreateGroup(name string) (*Group, error)
	GetGroup(groupID string) (*Group, error)
	ListGroups() ([]Group, error)
	DeleteGroup(groupID string) error

	CreateGroupPlayer(groupID, name string) (*GroupPlayer, error)
	GetGroupPlayer(groupID, groupPlayerID string) (*GroupPlayer, error)
	ListGroupPlayers(groupID string) ([]GroupPlayer, error)
	ApplyGameToRating(groupPlayerID string, ratingDelta float64, won bool) error

	CreateSession(groupID, name, mode string, courtCost, shuttleCost, playedAt int64) (*Session, error)
	GetSession(sessionID string) (*Session, error)
	ListSessions(groupID string) ([]Session, error)
	SessionCost(sessionID string) (*SessionCost, error)

	AddSessionPlayer(sessionID, name string, groupPlayerID *string) (*SessionPlayer, error)
	ListSessionPlayers(sessionIDs []string) ([]SessionPlayer, error)
	LinkGroupPlayer(sessionPlayerID, groupPlayerID string) error

	CreateGames(sessionID string, scheduled []schedule.ScheduledGame) ([]Game, error)
	GetGame(gameID string) (*Game, error)
	RecordResult(gameID, winningTeam string, teamAScore, teamBScore *int) (*Game, error)
	// ListCompletedGames returns played games newest-first, plus the count
	// of games skipped because their team data failed to parse.
	ListCompletedGames(sessionIDs []string) ([]Game, int, error)
	ListAllGames(sessionIDs []string) ([]Game, int, error)

	UpsertPartnerStats(ps PartnerStats) error
	UpsertPairingMatchup(pm PairingMatchup) error
	ClearPartnerStats(groupID string) error
	ClearPairingMatchups(groupID string) error
	ListPartnerStats(groupID string) ([]PartnerStats, error)
	ListPairingMatchups(groupID string) ([]PairingMatchup, error)
}
