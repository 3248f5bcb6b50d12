package stats

// Aggregator computes leaderboards and per-player statistics from raw game
// history. All derived numbers are recounted from games on every call;
// stored win/loss counters on group players are never trusted.
type Aggregator struct {
	store Store
}

// Trend classifies a player's recent form window.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// recentFormWindow bounds the form list driving the trend classification.
const recentFormWindow = 5

// recentGamesWindow bounds the recent-game lists in detailed stats.
const recentGamesWindow = 10

// unluckyMargin is the largest losing margin still counted as an unlucky
// loss.
const unluckyMargin = 2

// LeaderboardEntry is one row of the group leaderboard, ranked by ELO.
type LeaderboardEntry struct {
	GroupPlayerID string   `json:"group_player_id"`
	PlayerName    string   `json:"player_name"`
	EloRating     float64  `json:"elo_rating"`
	Rank          int      `json:"rank"`
	TotalGames    int      `json:"total_games"`
	Wins          int      `json:"wins"`
	Losses        int      `json:"losses"`
	WinRate       float64  `json:"win_rate"`
	RecentForm    []string `json:"recent_form"`
	Trend         Trend    `json:"trend"`
}

// GameSummary is a compact per-game record from one player's perspective.
type GameSummary struct {
	GameID        string `json:"game_id"`
	SessionID     string `json:"session_id"`
	GameNumber    int    `json:"game_number"`
	Won           bool   `json:"won"`
	PointsFor     int    `json:"points_for"`
	PointsAgainst int    `json:"points_against"`
	CreatedAt     int64  `json:"created_at"`
}

// UnluckyGame is a close loss, margin 1 or 2 points.
type UnluckyGame struct {
	GameSummary
	Margin int `json:"margin"`
}

// PartnerRecord is a one-sided record with a specific teammate: "my record
// when partnered with X".
type PartnerRecord struct {
	GroupPlayerID string        `json:"group_player_id"`
	PlayerName    string        `json:"player_name"`
	Wins          int           `json:"wins"`
	Losses        int           `json:"losses"`
	TotalGames    int           `json:"total_games"`
	WinRate       float64       `json:"win_rate"`
	Games         []GameSummary `json:"games"`
}

// OpponentRecord mirrors PartnerRecord for players faced across the net.
type OpponentRecord struct {
	GroupPlayerID string        `json:"group_player_id"`
	PlayerName    string        `json:"player_name"`
	Wins          int           `json:"wins"`
	Losses        int           `json:"losses"`
	TotalGames    int           `json:"total_games"`
	WinRate       float64       `json:"win_rate"`
	Games         []GameSummary `json:"games"`
}

// PlayerDetailedStats is the full per-player report.
type PlayerDetailedStats struct {
	GroupPlayerID     string           `json:"group_player_id"`
	PlayerName        string           `json:"player_name"`
	EloRating         float64          `json:"elo_rating"`
	Rank              int              `json:"rank"`
	TotalPlayers      int              `json:"total_players"`
	TotalGames        int              `json:"total_games"`
	Wins              int              `json:"wins"`
	Losses            int              `json:"losses"`
	WinRate           float64          `json:"win_rate"`
	PointsScored      int              `json:"points_scored"`
	PointsConceded    int              `json:"points_conceded"`
	PointDifferential int              `json:"point_differential"`
	SessionsPlayed    int              `json:"sessions_played"`
	CurrentStreak     int              `json:"current_streak"`
	BestWinStreak     int              `json:"best_win_streak"`
	RecentForm        []string         `json:"recent_form"`
	PartnerStats      []PartnerRecord  `json:"partner_stats"`
	OpponentStats     []OpponentRecord `json:"opponent_stats"`
	RecentGames       []GameSummary    `json:"recent_games"`
	UnluckyGames      []UnluckyGame    `json:"unlucky_games"`
	UnluckyCount      int              `json:"unlucky_count"`
}
