package notifier

import (
	"github.com/crosscourt/shuttletrack/internal/stats"
)

// ResultNotification carries everything needed to announce a recorded game
// result, with player names already resolved.
type ResultNotification struct {
	SessionName string
	GameNumber  int
	TeamANames  []string
	TeamBNames  []string
	WinningTeam string
	TeamAScore  *int
	TeamBScore  *int
}

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For completed games
	SendResultNotification(result *ResultNotification, dryRun bool) error
	// For slash commands
	SendLeaderboard(entries []stats.LeaderboardEntry, dryRun bool) error
	SendPlayerStats(detail *stats.PlayerDetailedStats, query string, dryRun bool) error
	SendPlayerNotFound(query string, dryRun bool) error

	// For formatting responses for slash commands
	FormatLeaderboardResponse(entries []stats.LeaderboardEntry) (any, error)
	FormatPlayerStatsResponse(detail *stats.PlayerDetailedStats, query string) (any, error)
	FormatPlayerNotFoundResponse(query string) (any, error)
}
