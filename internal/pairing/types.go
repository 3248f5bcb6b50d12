// Package pairing maintains the persisted partner-pair and team-vs-team
// aggregates for a group. Recalculation is a full rebuild: the stored rows
// are wiped and every completed game is replayed.
package pairing

// Aggregator rebuilds and reads pairing aggregates. It holds no state of
// its own, so one instance serves all requests.
type Aggregator struct {
	store Store
}

// RecalcResult reports the outcome of a full rebuild.
type RecalcResult struct {
	PartnersUpdated int `json:"partners_updated"`
	MatchupsUpdated int `json:"matchups_updated"`
	SkippedGames    int `json:"skipped_games"`
}

// GameRecord is one game from the pairing's perspective.
type GameRecord struct {
	GameID        string `json:"game_id"`
	SessionID     string `json:"session_id"`
	GameNumber    int    `json:"game_number"`
	Won           bool   `json:"won"`
	PointsFor     int    `json:"points_for"`
	PointsAgainst int    `json:"points_against"`
	CreatedAt     int64  `json:"created_at"`
}

// OpponentBreakdown is the pairing's record against one opposing team.
type OpponentBreakdown struct {
	Team              []string     `json:"team"`
	TeamNames         []string     `json:"team_names"`
	Wins              int          `json:"wins"`
	Losses            int          `json:"losses"`
	TotalGames        int          `json:"total_games"`
	WinRate           float64      `json:"win_rate"`
	PointsFor         int          `json:"points_for"`
	PointsAgainst     int          `json:"points_against"`
	PointDifferential int          `json:"point_differential"`
	Games             []GameRecord `json:"games"`
}

// PairingDetail is the full report for one specific pair of group players.
type PairingDetail struct {
	GroupID           string              `json:"group_id"`
	Player1ID         string              `json:"player1_id"`
	Player2ID         string              `json:"player2_id"`
	Player1Name       string              `json:"player1_name"`
	Player2Name       string              `json:"player2_name"`
	Wins              int                 `json:"wins"`
	Losses            int                 `json:"losses"`
	TotalGames        int                 `json:"total_games"`
	WinRate           float64             `json:"win_rate"`
	PointsFor         int                 `json:"points_for"`
	PointsAgainst     int                 `json:"points_against"`
	PointDifferential int                 `json:"point_differential"`
	Opponents         []OpponentBreakdown `json:"opponents"`
}
