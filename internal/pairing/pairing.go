package pairing

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/crosscourt/shuttletrack/internal/club"
	"github.com/crosscourt/shuttletrack/internal/pairkey"
)

// New creates a new Aggregator.
func New(store Store) *Aggregator {
	return &Aggregator{store: store}
}

// Recalculate wipes the group's partner and matchup rows and replays every
// completed game. It is idempotent; callers throttle it, not this method.
// Games whose team data could not be parsed are skipped and counted.
func (a *Aggregator) Recalculate(groupID string) (*RecalcResult, error) {
	sessions, err := a.store.ListSessions(groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sessions: %w", err)
	}
	sessionIDs := make([]string, len(sessions))
	for i, s := range sessions {
		sessionIDs[i] = s.ID
	}
	sessionPlayers, err := a.store.ListSessionPlayers(sessionIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load session players: %w", err)
	}
	games, skipped, err := a.store.ListCompletedGames(sessionIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load games: %w", err)
	}
	if skipped > 0 {
		log.Warn("Skipping games with malformed team data in pairing rebuild", "group_id", groupID, "count", skipped)
	}

	playerToGroup := make(map[string]string)
	for _, sp := range sessionPlayers {
		if sp.GroupPlayerID != nil {
			playerToGroup[sp.ID] = *sp.GroupPlayerID
		}
	}

	partners := make(map[string]*club.PartnerStats)
	matchups := make(map[string]*club.PairingMatchup)

	addPair := func(team []string, won bool) {
		if len(team) != 2 {
			return
		}
		p1, p2 := pairkey.NormalizePair(team[0], team[1])
		key := pairkey.PairKey(team[0], team[1])
		ps, ok := partners[key]
		if !ok {
			ps = &club.PartnerStats{GroupID: groupID, Player1ID: p1, Player2ID: p2}
			partners[key] = ps
		}
		if won {
			ps.Wins++
		} else {
			ps.Losses++
		}
		ps.TotalGames++
	}

	for _, game := range games {
		teamAWon := *game.WinningTeam == "A"

		// Teams containing guests carry no durable identity and stay out
		// of the persisted aggregates.
		teamA, okA := resolveTeam(game.TeamA, playerToGroup)
		teamB, okB := resolveTeam(game.TeamB, playerToGroup)

		if okA {
			addPair(teamA, teamAWon)
		}
		if okB {
			addPair(teamB, !teamAWon)
		}

		if okA && okB {
			team1, team2, swapped := pairkey.NormalizeMatchup(teamA, teamB)
			key := pairkey.MatchupKey(teamA, teamB)
			pm, ok := matchups[key]
			if !ok {
				pm = &club.PairingMatchup{GroupID: groupID, Team1: team1, Team2: team2}
				matchups[key] = pm
			}
			if teamAWon != swapped {
				pm.Team1Wins++
			} else {
				pm.Team1Losses++
			}
			pm.TotalGames++
		}
	}

	if err := a.store.ClearPartnerStats(groupID); err != nil {
		return nil, fmt.Errorf("failed to clear partner stats: %w", err)
	}
	if err := a.store.ClearPairingMatchups(groupID); err != nil {
		return nil, fmt.Errorf("failed to clear pairing matchups: %w", err)
	}

	// Deterministic write order keeps reruns byte-for-byte comparable.
	for _, key := range sortedKeys(partners) {
		if err := a.store.UpsertPartnerStats(*partners[key]); err != nil {
			return nil, fmt.Errorf("failed to write partner stats: %w", err)
		}
	}
	for _, key := range sortedKeys(matchups) {
		if err := a.store.UpsertPairingMatchup(*matchups[key]); err != nil {
			return nil, fmt.Errorf("failed to write pairing matchup: %w", err)
		}
	}

	return &RecalcResult{
		PartnersUpdated: len(partners),
		MatchupsUpdated: len(matchups),
		SkippedGames:    skipped,
	}, nil
}

// PartnerLeaderboard returns the group's persisted partner-pair rows sorted
// by wins descending, total games breaking ties.
func (a *Aggregator) PartnerLeaderboard(groupID string) ([]club.PartnerStats, error) {
	rows, err := a.store.ListPartnerStats(groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load partner stats: %w", err)
	}
	if rows == nil {
		rows = []club.PartnerStats{}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Wins != rows[j].Wins {
			return rows[i].Wins > rows[j].Wins
		}
		return rows[i].TotalGames > rows[j].TotalGames
	})
	return rows, nil
}

// Leaderboard returns the group's persisted matchup rows sorted by team1
// wins descending, total games breaking ties.
func (a *Aggregator) Leaderboard(groupID string) ([]club.PairingMatchup, error) {
	rows, err := a.store.ListPairingMatchups(groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pairing matchups: %w", err)
	}
	if rows == nil {
		rows = []club.PairingMatchup{}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Team1Wins != rows[j].Team1Wins {
			return rows[i].Team1Wins > rows[j].Team1Wins
		}
		return rows[i].TotalGames > rows[j].TotalGames
	})
	return rows, nil
}

// DetailedStats reports one pairing's record against every opposing team,
// with per-game history and point differentials pulled from the game log.
// Returns (nil, nil) when either player does not exist in the group.
func (a *Aggregator) DetailedStats(groupID, player1ID, player2ID string) (*PairingDetail, error) {
	player1, err := a.store.GetGroupPlayer(groupID, player1ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load group player: %w", err)
	}
	player2, err := a.store.GetGroupPlayer(groupID, player2ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load group player: %w", err)
	}
	if player1 == nil || player2 == nil {
		return nil, nil
	}

	pairTeam := pairkey.NormalizeTeam([]string{player1.ID, player2.ID})
	pairTeamKey := pairkey.TeamKey(pairTeam)

	rows, err := a.store.ListPairingMatchups(groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pairing matchups: %w", err)
	}
	players, err := a.store.ListGroupPlayers(groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load group players: %w", err)
	}
	names := make(map[string]string, len(players))
	for _, p := range players {
		names[p.ID] = p.Name
	}

	type breakdown struct {
		OpponentBreakdown
		fromRow bool
	}
	breakdowns := make(map[string]*breakdown)
	get := func(opp []string, fromRow bool) *breakdown {
		key := pairkey.TeamKey(opp)
		bd, ok := breakdowns[key]
		if !ok {
			team := pairkey.NormalizeTeam(opp)
			teamNames := make([]string, len(team))
			for i, id := range team {
				teamNames[i] = names[id]
			}
			bd = &breakdown{
				OpponentBreakdown: OpponentBreakdown{Team: team, TeamNames: teamNames, Games: []GameRecord{}},
				fromRow:           fromRow,
			}
			breakdowns[key] = bd
		}
		return bd
	}

	for _, row := range rows {
		switch pairTeamKey {
		case pairkey.TeamKey(row.Team1):
			bd := get(row.Team2, true)
			bd.Wins = row.Team1Wins
			bd.Losses = row.Team1Losses
		case pairkey.TeamKey(row.Team2):
			bd := get(row.Team1, true)
			bd.Wins = row.Team1Losses
			bd.Losses = row.Team1Wins
		}
	}

	sessions, err := a.store.ListSessions(groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sessions: %w", err)
	}
	sessionIDs := make([]string, len(sessions))
	for i, s := range sessions {
		sessionIDs[i] = s.ID
	}
	sessionPlayers, err := a.store.ListSessionPlayers(sessionIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load session players: %w", err)
	}
	games, skipped, err := a.store.ListCompletedGames(sessionIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load games: %w", err)
	}
	if skipped > 0 {
		log.Warn("Skipped games with malformed team data in pairing breakdowns", "group_id", groupID, "count", skipped)
	}
	playerToGroup := make(map[string]string)
	for _, sp := range sessionPlayers {
		if sp.GroupPlayerID != nil {
			playerToGroup[sp.ID] = *sp.GroupPlayerID
		}
	}

	detail := &PairingDetail{
		GroupID:     groupID,
		Player1ID:   pairTeam[0],
		Player2ID:   pairTeam[1],
		Player1Name: names[pairTeam[0]],
		Player2Name: names[pairTeam[1]],
		Opponents:   []OpponentBreakdown{},
	}

	for _, game := range games {
		teamA, okA := resolveTeam(game.TeamA, playerToGroup)
		teamB, okB := resolveTeam(game.TeamB, playerToGroup)
		if !okA || !okB {
			continue
		}

		var opp []string
		var onTeamA bool
		switch pairTeamKey {
		case pairkey.TeamKey(teamA):
			opp, onTeamA = teamB, true
		case pairkey.TeamKey(teamB):
			opp, onTeamA = teamA, false
		default:
			continue
		}

		won := (*game.WinningTeam == "A") == onTeamA
		pointsFor, pointsAgainst := scoresFor(&game, onTeamA)

		bd := get(opp, false)
		// Win/loss counts come from the persisted rows when present; the
		// game walk only fills them in for rows the rebuild hasn't
		// written yet.
		if !bd.fromRow {
			if won {
				bd.Wins++
			} else {
				bd.Losses++
			}
		}
		bd.PointsFor += pointsFor
		bd.PointsAgainst += pointsAgainst
		bd.Games = append(bd.Games, GameRecord{
			GameID:        game.ID,
			SessionID:     game.SessionID,
			GameNumber:    game.GameNumber,
			Won:           won,
			PointsFor:     pointsFor,
			PointsAgainst: pointsAgainst,
			CreatedAt:     game.CreatedAt,
		})
	}

	for _, bd := range breakdowns {
		bd.TotalGames = bd.Wins + bd.Losses
		if bd.TotalGames > 0 {
			bd.WinRate = float64(bd.Wins) / float64(bd.TotalGames)
		}
		bd.PointDifferential = bd.PointsFor - bd.PointsAgainst

		detail.Wins += bd.Wins
		detail.Losses += bd.Losses
		detail.PointsFor += bd.PointsFor
		detail.PointsAgainst += bd.PointsAgainst
		detail.Opponents = append(detail.Opponents, bd.OpponentBreakdown)
	}
	detail.TotalGames = detail.Wins + detail.Losses
	if detail.TotalGames > 0 {
		detail.WinRate = float64(detail.Wins) / float64(detail.TotalGames)
	}
	detail.PointDifferential = detail.PointsFor - detail.PointsAgainst

	sort.SliceStable(detail.Opponents, func(i, j int) bool {
		if detail.Opponents[i].WinRate != detail.Opponents[j].WinRate {
			return detail.Opponents[i].WinRate > detail.Opponents[j].WinRate
		}
		if detail.Opponents[i].TotalGames != detail.Opponents[j].TotalGames {
			return detail.Opponents[i].TotalGames > detail.Opponents[j].TotalGames
		}
		return pairkey.TeamKey(detail.Opponents[i].Team) < pairkey.TeamKey(detail.Opponents[j].Team)
	})

	return detail, nil
}

// resolveTeam maps a full team of session player IDs to group player IDs.
// ok is false when any member is a guest.
func resolveTeam(team []string, playerToGroup map[string]string) ([]string, bool) {
	resolved := make([]string, 0, len(team))
	for _, spID := range team {
		gpID, ok := playerToGroup[spID]
		if !ok {
			return nil, false
		}
		resolved = append(resolved, gpID)
	}
	return resolved, true
}

func scoresFor(game *club.Game, onTeamA bool) (pointsFor, pointsAgainst int) {
	scoreA, scoreB := 0, 0
	if game.TeamAScore != nil {
		scoreA = *game.TeamAScore
	}
	if game.TeamBScore != nil {
		scoreB = *game.TeamBScore
	}
	if onTeamA {
		return scoreA, scoreB
	}
	return scoreB, scoreA
}

func sortedKeys[V any](m map[string]*V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
