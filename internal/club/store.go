package club

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/crosscourt/shuttletrack/internal/schedule"
)

// New creates a new ClubStore.
func New(db *sql.DB) ClubStore {
	return &store{
		db: db,
	}
}

func (s *store) CreateGroup(name string) (*Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	group := &Group{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now().Unix(),
	}
	_, err := s.db.Exec("INSERT INTO groups (id, name, created_at) VALUES (?, ?, ?)",
		group.ID, group.Name, group.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	log.Info("Created group", "id", group.ID, "name", name)
	return group, nil
}

func (s *store) GetGroup(groupID string) (*Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var group Group
	err := s.db.QueryRow("SELECT id, name, created_at FROM groups WHERE id = ?", groupID).
		Scan(&group.ID, &group.Name, &group.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return &group, nil
}

func (s *store) ListGroups() ([]Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT id, name, created_at FROM groups ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}
	defer rows.Close()

	var groups []Group
	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group row: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// DeleteGroup removes the group; sessions, players, games and aggregates go
// with it via foreign key cascades.
func (s *store) DeleteGroup(groupID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("DELETE FROM groups WHERE id = ?", groupID)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	log.Info("Deleted group", "id", groupID)
	return nil
}

func (s *store) CreateGroupPlayer(groupID, name string) (*GroupPlayer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	player := &GroupPlayer{
		ID:        uuid.New().String(),
		GroupID:   groupID,
		Name:      name,
		EloRating: 1200,
		CreatedAt: time.Now().Unix(),
	}
	_, err := s.db.Exec(`
		INSERT INTO group_players (id, group_id, name, elo_rating, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		player.ID, player.GroupID, player.Name, player.EloRating, player.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create group player: %w", err)
	}

	log.Info("Created group player", "id", player.ID, "group", groupID, "name", name)
	return player, nil
}

func (s *store) GetGroupPlayer(groupID, groupPlayerID string) (*GroupPlayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var p GroupPlayer
	err := s.db.QueryRow(`
		SELECT id, group_id, name, elo_rating, wins, losses, total_games, created_at
		FROM group_players WHERE group_id = ? AND id = ?`, groupID, groupPlayerID).
		Scan(&p.ID, &p.GroupID, &p.Name, &p.EloRating, &p.Wins, &p.Losses, &p.TotalGames, &p.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get group player: %w", err)
	}
	return &p, nil
}

func (s *store) ListGroupPlayers(groupID string) ([]GroupPlayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, group_id, name, elo_rating, wins, losses, total_games, created_at
		FROM group_players WHERE group_id = ? ORDER BY created_at ASC`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query group players: %w", err)
	}
	defer rows.Close()

	var players []GroupPlayer
	for rows.Next() {
		var p GroupPlayer
		if err := rows.Scan(&p.ID, &p.GroupID, &p.Name, &p.EloRating, &p.Wins, &p.Losses, &p.TotalGames, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group player row: %w", err)
		}
		players = append(players, p)
	}
	return players, nil
}

// ApplyGameToRating adjusts a group player's ELO and stored win/loss
// counters after a recorded result. The counters are bookkeeping only; the
// leaderboard always recounts from game history.
func (s *store) ApplyGameToRating(groupPlayerID string, ratingDelta float64, won bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	winInc, lossInc := 0, 1
	if won {
		winInc, lossInc = 1, 0
	}
	_, err := s.db.Exec(`
		UPDATE group_players
		SET elo_rating = elo_rating + ?, wins = wins + ?, losses = losses + ?, total_games = total_games + 1
		WHERE id = ?`,
		ratingDelta, winInc, lossInc, groupPlayerID)
	if err != nil {
		return fmt.Errorf("failed to apply rating change: %w", err)
	}
	return nil
}

func (s *store) CreateSession(groupID, name, mode string, courtCost, shuttleCost, playedAt int64) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := &Session{
		ID:          uuid.New().String(),
		GroupID:     groupID,
		Name:        name,
		Mode:        mode,
		CourtCost:   courtCost,
		ShuttleCost: shuttleCost,
		PlayedAt:    playedAt,
		CreatedAt:   time.Now().Unix(),
	}
	_, err := s.db.Exec(`
		INSERT INTO sessions (id, group_id, name, mode, court_cost, shuttle_cost, played_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID, session.GroupID, session.Name, session.Mode,
		session.CourtCost, session.ShuttleCost, session.PlayedAt, session.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	log.Info("Created session", "id", session.ID, "group", groupID, "mode", mode)
	return session, nil
}

func (s *store) GetSession(sessionID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sess Session
	err := s.db.QueryRow(`
		SELECT id, group_id, name, mode, court_cost, shuttle_cost, played_at, created_at
		FROM sessions WHERE id = ?`, sessionID).
		Scan(&sess.ID, &sess.GroupID, &sess.Name, &sess.Mode, &sess.CourtCost, &sess.ShuttleCost, &sess.PlayedAt, &sess.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &sess, nil
}

func (s *store) ListSessions(groupID string) ([]Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, group_id, name, mode, court_cost, shuttle_cost, played_at, created_at
		FROM sessions WHERE group_id = ? ORDER BY played_at DESC`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.GroupID, &sess.Name, &sess.Mode, &sess.CourtCost, &sess.ShuttleCost, &sess.PlayedAt, &sess.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, nil
}

// SessionCost splits the session's court and shuttle costs evenly across
// the roster. Remainder from integer division stays with the organizer.
func (s *store) SessionCost(sessionID string) (*SessionCost, error) {
	sess, err := s.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}

	players, err := s.ListSessionPlayers([]string{sessionID})
	if err != nil {
		return nil, err
	}

	cost := &SessionCost{
		SessionID:   sessionID,
		TotalCost:   sess.CourtCost + sess.ShuttleCost,
		PlayerCount: len(players),
	}
	if cost.PlayerCount > 0 {
		cost.PerPlayer = cost.TotalCost / int64(cost.PlayerCount)
	}
	return cost, nil
}

func (s *store) AddSessionPlayer(sessionID, name string, groupPlayerID *string) (*SessionPlayer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	player := &SessionPlayer{
		ID:            uuid.New().String(),
		SessionID:     sessionID,
		GroupPlayerID: groupPlayerID,
		Name:          name,
	}
	_, err := s.db.Exec(`
		INSERT INTO session_players (id, session_id, group_player_id, name)
		VALUES (?, ?, ?, ?)`,
		player.ID, player.SessionID, player.GroupPlayerID, player.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to add session player: %w", err)
	}
	return player, nil
}

func (s *store) ListSessionPlayers(sessionIDs []string) ([]SessionPlayer, error) {
	if len(sessionIDs) == 0 {
		return []SessionPlayer{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	query := fmt.Sprintf(`
		SELECT id, session_id, group_player_id, name
		FROM session_players WHERE session_id IN (?%s)`,
		strings.Repeat(", ?", len(sessionIDs)-1))

	rows, err := s.db.Query(query, ToAnySlice(sessionIDs)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query session players: %w", err)
	}
	defer rows.Close()

	var players []SessionPlayer
	for rows.Next() {
		var p SessionPlayer
		var groupPlayerID sql.NullString
		if err := rows.Scan(&p.ID, &p.SessionID, &groupPlayerID, &p.Name); err != nil {
			return nil, fmt.Errorf("failed to scan session player row: %w", err)
		}
		if groupPlayerID.Valid {
			p.GroupPlayerID = &groupPlayerID.String
		}
		players = append(players, p)
	}
	return players, nil
}

func (s *store) LinkGroupPlayer(sessionPlayerID, groupPlayerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("UPDATE session_players SET group_player_id = ? WHERE id = ?",
		groupPlayerID, sessionPlayerID)
	if err != nil {
		return fmt.Errorf("failed to link group player: %w", err)
	}
	return nil
}

// CreateGames persists a generated schedule as unplayed games with
// sequential game numbers continuing from the session's current maximum.
func (s *store) CreateGames(sessionID string, scheduled []schedule.ScheduledGame) ([]Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var nextNumber int
	err = tx.QueryRow("SELECT COALESCE(MAX(game_number), 0) + 1 FROM games WHERE session_id = ?", sessionID).
		Scan(&nextNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to determine next game number: %w", err)
	}

	now := time.Now().Unix()
	games := make([]Game, 0, len(scheduled))
	for i, sg := range scheduled {
		game := Game{
			ID:         uuid.New().String(),
			SessionID:  sessionID,
			GameNumber: nextNumber + i,
			TeamA:      sg.TeamA,
			TeamB:      sg.TeamB,
			CreatedAt:  now,
		}
		teamAJSON, err := json.Marshal(game.TeamA)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal team A: %w", err)
		}
		teamBJSON, err := json.Marshal(game.TeamB)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal team B: %w", err)
		}

		_, err = tx.Exec(`
			INSERT INTO games (id, session_id, game_number, team_a_json, team_b_json, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			game.ID, game.SessionID, game.GameNumber, string(teamAJSON), string(teamBJSON), game.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to insert game %d: %w", game.GameNumber, err)
		}
		games = append(games, game)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit games: %w", err)
	}

	log.Info("Created games", "session", sessionID, "count", len(games))
	return games, nil
}

func (s *store) GetGame(gameID string) (*Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT id, session_id, game_number, team_a_json, team_b_json, winning_team, team_a_score, team_b_score, created_at
		FROM games WHERE id = ?`, gameID)

	game, err := scanGame(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return game, nil
}

// RecordResult marks a game as played. An unplayed game must carry null
// scores, so scores are only written together with the winner.
func (s *store) RecordResult(gameID, winningTeam string, teamAScore, teamBScore *int) (*Game, error) {
	if winningTeam != "A" && winningTeam != "B" {
		return nil, fmt.Errorf("invalid winning team %q", winningTeam)
	}

	s.mu.Lock()
	res, err := s.db.Exec(`
		UPDATE games SET winning_team = ?, team_a_score = ?, team_b_score = ? WHERE id = ?`,
		winningTeam, teamAScore, teamBScore, gameID)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to record result: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}

	log.Info("Recorded game result", "game", gameID, "winner", winningTeam)
	return s.GetGame(gameID)
}

func (s *store) ListCompletedGames(sessionIDs []string) ([]Game, int, error) {
	return s.listGames(sessionIDs, true)
}

func (s *store) ListAllGames(sessionIDs []string) ([]Game, int, error) {
	return s.listGames(sessionIDs, false)
}

// listGames returns games newest-first. Rows whose team JSON fails to parse
// are skipped and counted rather than failing the whole read.
func (s *store) listGames(sessionIDs []string, completedOnly bool) ([]Game, int, error) {
	if len(sessionIDs) == 0 {
		return []Game{}, 0, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	query := fmt.Sprintf(`
		SELECT id, session_id, game_number, team_a_json, team_b_json, winning_team, team_a_score, team_b_score, created_at
		FROM games WHERE session_id IN (?%s)`,
		strings.Repeat(", ?", len(sessionIDs)-1))
	if completedOnly {
		query += " AND winning_team IS NOT NULL"
	}
	query += " ORDER BY created_at DESC, game_number DESC"

	rows, err := s.db.Query(query, ToAnySlice(sessionIDs)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query games: %w", err)
	}
	defer rows.Close()

	var games []Game
	skipped := 0
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			if _, ok := err.(*malformedTeamError); ok {
				log.Warn("Skipping game with malformed team data", "error", err)
				skipped++
				continue
			}
			return nil, 0, fmt.Errorf("failed to scan game row: %w", err)
		}
		games = append(games, *game)
	}
	return games, skipped, nil
}

// malformedTeamError marks a row whose serialized team membership could not
// be normalized into a player ID list.
type malformedTeamError struct {
	gameID string
	err    error
}

func (e *malformedTeamError) Error() string {
	return fmt.Sprintf("game %s has malformed team data: %v", e.gameID, e.err)
}

// scanGame scans a single game row, normalizing the serialized team fields
// into player ID slices.
func scanGame(scanner interface{ Scan(...any) error }) (*Game, error) {
	var game Game
	var teamAJSON, teamBJSON string
	var winningTeam sql.NullString
	var teamAScore, teamBScore sql.NullInt64

	err := scanner.Scan(
		&game.ID, &game.SessionID, &game.GameNumber,
		&teamAJSON, &teamBJSON,
		&winningTeam, &teamAScore, &teamBScore, &game.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if game.TeamA, err = parseTeam(teamAJSON); err != nil {
		return nil, &malformedTeamError{gameID: game.ID, err: err}
	}
	if game.TeamB, err = parseTeam(teamBJSON); err != nil {
		return nil, &malformedTeamError{gameID: game.ID, err: err}
	}

	if winningTeam.Valid {
		game.WinningTeam = &winningTeam.String
	}
	if teamAScore.Valid {
		v := int(teamAScore.Int64)
		game.TeamAScore = &v
	}
	if teamBScore.Valid {
		v := int(teamBScore.Int64)
		game.TeamBScore = &v
	}
	return &game, nil
}

// parseTeam accepts the stored team representation: a JSON array of player
// IDs, or a double-encoded JSON string containing such an array.
func parseTeam(raw string) ([]string, error) {
	var team []string
	if err := json.Unmarshal([]byte(raw), &team); err == nil {
		return team, nil
	}

	var nested string
	if err := json.Unmarshal([]byte(raw), &nested); err == nil {
		if err := json.Unmarshal([]byte(nested), &team); err == nil {
			return team, nil
		}
	}
	return nil, fmt.Errorf("not a player ID array: %q", raw)
}

// UpsertPartnerStats writes a partner pair row, normalizing the pair so
// player1 < player2 holds for every stored row.
func (s *store) UpsertPartnerStats(ps PartnerStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ps.Player1ID > ps.Player2ID {
		ps.Player1ID, ps.Player2ID = ps.Player2ID, ps.Player1ID
	}

	_, err := s.db.Exec(`
		INSERT INTO partner_stats (group_id, player1_id, player2_id, wins, losses, total_games)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(group_id, player1_id, player2_id) DO UPDATE SET
			wins = excluded.wins,
			losses = excluded.losses,
			total_games = excluded.total_games;`,
		ps.GroupID, ps.Player1ID, ps.Player2ID, ps.Wins, ps.Losses, ps.TotalGames)
	if err != nil {
		return fmt.Errorf("failed to upsert partner stats: %w", err)
	}
	return nil
}

func (s *store) UpsertPairingMatchup(pm PairingMatchup) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	team1JSON, err := json.Marshal(pm.Team1)
	if err != nil {
		return fmt.Errorf("failed to marshal team1: %w", err)
	}
	team2JSON, err := json.Marshal(pm.Team2)
	if err != nil {
		return fmt.Errorf("failed to marshal team2: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO pairing_matchups (group_id, team1_key, team2_key, team1_json, team2_json, team1_wins, team1_losses, total_games)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(group_id, team1_key, team2_key) DO UPDATE SET
			team1_wins = excluded.team1_wins,
			team1_losses = excluded.team1_losses,
			total_games = excluded.total_games;`,
		pm.GroupID, strings.Join(pm.Team1, ":"), strings.Join(pm.Team2, ":"),
		string(team1JSON), string(team2JSON), pm.Team1Wins, pm.Team1Losses, pm.TotalGames)
	if err != nil {
		return fmt.Errorf("failed to upsert pairing matchup: %w", err)
	}
	return nil
}

func (s *store) ClearPartnerStats(groupID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("DELETE FROM partner_stats WHERE group_id = ?", groupID)
	if err != nil {
		return fmt.Errorf("failed to clear partner stats: %w", err)
	}
	return nil
}

func (s *store) ClearPairingMatchups(groupID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("DELETE FROM pairing_matchups WHERE group_id = ?", groupID)
	if err != nil {
		return fmt.Errorf("failed to clear pairing matchups: %w", err)
	}
	return nil
}

func (s *store) ListPartnerStats(groupID string) ([]PartnerStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT group_id, player1_id, player2_id, wins, losses, total_games
		FROM partner_stats WHERE group_id = ?
		ORDER BY wins DESC, total_games DESC`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query partner stats: %w", err)
	}
	defer rows.Close()

	var stats []PartnerStats
	for rows.Next() {
		var ps PartnerStats
		if err := rows.Scan(&ps.GroupID, &ps.Player1ID, &ps.Player2ID, &ps.Wins, &ps.Losses, &ps.TotalGames); err != nil {
			return nil, fmt.Errorf("failed to scan partner stats row: %w", err)
		}
		stats = append(stats, ps)
	}
	return stats, nil
}

func (s *store) ListPairingMatchups(groupID string) ([]PairingMatchup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT group_id, team1_json, team2_json, team1_wins, team1_losses, total_games
		FROM pairing_matchups WHERE group_id = ?
		ORDER BY team1_wins DESC, total_games DESC`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pairing matchups: %w", err)
	}
	defer rows.Close()

	var matchups []PairingMatchup
	for rows.Next() {
		var pm PairingMatchup
		var team1JSON, team2JSON string
		if err := rows.Scan(&pm.GroupID, &team1JSON, &team2JSON, &pm.Team1Wins, &pm.Team1Losses, &pm.TotalGames); err != nil {
			return nil, fmt.Errorf("failed to scan pairing matchup row: %w", err)
		}
		if err := json.Unmarshal([]byte(team1JSON), &pm.Team1); err != nil {
			log.Error("Failed to unmarshal team1_json", "error", err, "groupID", groupID)
			continue
		}
		if err := json.Unmarshal([]byte(team2JSON), &pm.Team2); err != nil {
			log.Error("Failed to unmarshal team2_json", "error", err, "groupID", groupID)
			continue
		}
		matchups = append(matchups, pm)
	}
	return matchups, nil
}

func ToAnySlice[T any](s []T) []any {
	a := make([]any, len(s))
	for i, v := range s {
		a[i] = v
	}
	return a
}
