package club

import (
	"database/sql"
	"sync"
)

// store handles all database operations for the club.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Group is a persistent collection of recurring players sharing long-term
// stats across sessions.
type Group struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"created_at"`
}

// GroupPlayer is a durable player identity scoped to a group. Session
// players link to one via GroupPlayerID; unlinked session players are
// guests.
type GroupPlayer struct {
	ID         string  `json:"id"`
	GroupID    string  `json:"group_id"`
	Name       string  `json:"name"`
	EloRating  float64 `json:"elo_rating"`
	Wins       int     `json:"wins"`
	Losses     int     `json:"losses"`
	TotalGames int     `json:"total_games"`
	CreatedAt  int64   `json:"created_at"`
}

// Session is one occasion of play with a fixed roster and cost parameters.
// Costs are stored in minor currency units.
type Session struct {
	ID          string `json:"id"`
	GroupID     string `json:"group_id"`
	Name        string `json:"name"`
	Mode        string `json:"mode"`
	CourtCost   int64  `json:"court_cost"`
	ShuttleCost int64  `json:"shuttle_cost"`
	PlayedAt    int64  `json:"played_at"`
	CreatedAt   int64  `json:"created_at"`
}

// SessionPlayer is a session-scoped roster entry. GroupPlayerID is nil for
// guests.
type SessionPlayer struct {
	ID            string  `json:"id"`
	SessionID     string  `json:"session_id"`
	GroupPlayerID *string `json:"group_player_id,omitempty"`
	Name          string  `json:"name"`
}

// Game is a single scheduled or played game. TeamA/TeamB hold session
// player IDs in creation order, 1 per side for singles and 2 for doubles.
// WinningTeam is nil while the game is unplayed.
type Game struct {
	ID          string   `json:"id"`
	SessionID   string   `json:"session_id"`
	GameNumber  int      `json:"game_number"`
	TeamA       []string `json:"team_a"`
	TeamB       []string `json:"team_b"`
	WinningTeam *string  `json:"winning_team"`
	TeamAScore  *int     `json:"team_a_score,omitempty"`
	TeamBScore  *int     `json:"team_b_score,omitempty"`
	CreatedAt   int64    `json:"created_at"`
}

// Played reports whether a result has been recorded for the game.
func (g *Game) Played() bool {
	return g.WinningTeam != nil
}

// PartnerStats aggregates the record of an unordered pair of group players
// as teammates. Player1ID < Player2ID is enforced at write time.
type PartnerStats struct {
	GroupID    string `json:"group_id"`
	Player1ID  string `json:"player1_id"`
	Player2ID  string `json:"player2_id"`
	Wins       int    `json:"wins"`
	Losses     int    `json:"losses"`
	TotalGames int    `json:"total_games"`
}

// PairingMatchup aggregates the head-to-head record of two canonically
// ordered teams, counted from team1's perspective.
type PairingMatchup struct {
	GroupID     string   `json:"group_id"`
	Team1       []string `json:"team1"`
	Team2       []string `json:"team2"`
	Team1Wins   int      `json:"team1_wins"`
	Team1Losses int      `json:"team1_losses"`
	TotalGames  int      `json:"total_games"`
}

// SessionCost is the per-attendee split of a session's court and shuttle
// costs, in minor currency units.
type SessionCost struct {
	SessionID   string `json:"session_id"`
	TotalCost   int64  `json:"total_cost"`
	PlayerCount int    `json:"player_count"`
	PerPlayer   int64  `json:"per_player"`
}
