package stats

import "github.com/crosscourt/shuttletrack/internal/club"

// Store defines the database operations required by the aggregator.
type Store interface {
	ListGroupPlayers(groupID string) ([]club.GroupPlayer, error)
	GetGroupPlayer(groupID, groupPlayerID string) (*club.GroupPlayer, error)
	ListSessions(groupID string) ([]club.Session, error)
	ListSessionPlayers(sessionIDs []string) ([]club.SessionPlayer, error)
	ListCompletedGames(sessionIDs []string) ([]club.Game, int, error)
}
