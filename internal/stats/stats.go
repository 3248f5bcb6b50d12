// Package stats aggregates raw game records into leaderboards and
// per-player detailed statistics.
package stats

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/crosscourt/shuttletrack/internal/club"
)

// New creates a new Aggregator.
func New(store Store) *Aggregator {
	return &Aggregator{store: store}
}

// ComputeLeaderboard recounts every group player's record from completed
// games and ranks the group by ELO rating, descending. An unknown group
// simply has no players and yields an empty leaderboard.
func (a *Aggregator) ComputeLeaderboard(groupID string) ([]LeaderboardEntry, error) {
	var players []club.GroupPlayer
	var sessions []club.Session

	// Player list and session list have no data dependency.
	var g errgroup.Group
	g.Go(func() error {
		var err error
		players, err = a.store.ListGroupPlayers(groupID)
		return err
	})
	g.Go(func() error {
		var err error
		sessions, err = a.store.ListSessions(groupID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load group data: %w", err)
	}

	if len(players) == 0 {
		return []LeaderboardEntry{}, nil
	}

	games, playerToGroup, err := a.loadGames(sessions)
	if err != nil {
		return nil, err
	}

	type tally struct {
		wins, losses int
		form         []string
	}
	tallies := make(map[string]*tally, len(players))
	for _, p := range players {
		tallies[p.ID] = &tally{form: []string{}}
	}

	for _, game := range games {
		winner := *game.WinningTeam
		// One win or loss per group player per game, even if a duplicate
		// session-player linkage puts the same identity on a roster twice.
		counted := make(map[string]bool)

		for _, side := range []struct {
			members []string
			won     bool
		}{
			{game.TeamA, winner == "A"},
			{game.TeamB, winner == "B"},
		} {
			for _, spID := range side.members {
				gpID, ok := playerToGroup[spID]
				if !ok {
					continue // guest
				}
				t, ok := tallies[gpID]
				if !ok || counted[gpID] {
					continue
				}
				counted[gpID] = true
				if side.won {
					t.wins++
				} else {
					t.losses++
				}
				if len(t.form) < recentFormWindow {
					t.form = append(t.form, formSymbol(side.won))
				}
			}
		}
	}

	entries := make([]LeaderboardEntry, 0, len(players))
	for _, p := range players {
		t := tallies[p.ID]
		entry := LeaderboardEntry{
			GroupPlayerID: p.ID,
			PlayerName:    p.Name,
			EloRating:     p.EloRating,
			TotalGames:    t.wins + t.losses,
			Wins:          t.wins,
			Losses:        t.losses,
			RecentForm:    t.form,
			Trend:         classifyTrend(t.form),
		}
		if entry.TotalGames > 0 {
			entry.WinRate = float64(t.wins) / float64(entry.TotalGames)
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].EloRating > entries[j].EloRating
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// ComputePlayerDetailedStats builds the full report for one group player.
// Returns (nil, nil) when the player does not exist in the group.
func (a *Aggregator) ComputePlayerDetailedStats(groupID, groupPlayerID string) (*PlayerDetailedStats, error) {
	target, err := a.store.GetGroupPlayer(groupID, groupPlayerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load group player: %w", err)
	}
	if target == nil {
		return nil, nil
	}

	var players []club.GroupPlayer
	var sessions []club.Session
	var g errgroup.Group
	g.Go(func() error {
		var err error
		players, err = a.store.ListGroupPlayers(groupID)
		return err
	})
	g.Go(func() error {
		var err error
		sessions, err = a.store.ListSessions(groupID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load group data: %w", err)
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
		log.Warn("Skipped games with malformed team data during aggregation", "count", skipped)
	}

	playerToGroup := make(map[string]string)
	sessionsPlayed := make(map[string]bool)
	for _, sp := range sessionPlayers {
		if sp.GroupPlayerID == nil {
			continue
		}
		playerToGroup[sp.ID] = *sp.GroupPlayerID
		if *sp.GroupPlayerID == target.ID {
			sessionsPlayed[sp.SessionID] = true
		}
	}
	names := make(map[string]string, len(players))
	for _, p := range players {
		names[p.ID] = p.Name
	}

	detail := &PlayerDetailedStats{
		GroupPlayerID: target.ID,
		PlayerName:    target.Name,
		EloRating:     target.EloRating,
		Rank:          eloRank(players, target.ID),
		TotalPlayers:  len(players),
		RecentForm:    []string{},
		RecentGames:   []GameSummary{},
		UnluckyGames:  []UnluckyGame{},
	}

	partners := make(map[string]*PartnerRecord)
	opponents := make(map[string]*OpponentRecord)
	streakBroken := false
	runningWins := 0

	// Games arrive newest-first; the whole walk happens in that order.
	for _, game := range games {
		ownTeam, oppTeam, won, ok := sideOf(&game, playerToGroup, target.ID)
		if !ok {
			continue
		}

		detail.TotalGames++
		if won {
			detail.Wins++
		} else {
			detail.Losses++
		}

		pointsFor, pointsAgainst := scoresFor(&game, ownTeam.isTeamA)
		detail.PointsScored += pointsFor
		detail.PointsConceded += pointsAgainst

		summary := GameSummary{
			GameID:        game.ID,
			SessionID:     game.SessionID,
			GameNumber:    game.GameNumber,
			Won:           won,
			PointsFor:     pointsFor,
			PointsAgainst: pointsAgainst,
			CreatedAt:     game.CreatedAt,
		}

		if !won && game.TeamAScore != nil && game.TeamBScore != nil {
			margin := *game.TeamAScore - *game.TeamBScore
			if margin < 0 {
				margin = -margin
			}
			if margin >= 1 && margin <= unluckyMargin {
				detail.UnluckyGames = append(detail.UnluckyGames, UnluckyGame{GameSummary: summary, Margin: margin})
			}
		}

		if len(detail.RecentGames) < recentGamesWindow {
			detail.RecentGames = append(detail.RecentGames, summary)
			detail.RecentForm = append(detail.RecentForm, formSymbol(won))
		}

		// The signed streak only grows while consecutive games, walking
		// backward in time, keep matching the most recent game's outcome.
		// The first break stops it for good even though the walk goes on.
		switch {
		case detail.TotalGames == 1:
			if won {
				detail.CurrentStreak = 1
			} else {
				detail.CurrentStreak = -1
			}
		case !streakBroken:
			if won && detail.CurrentStreak > 0 {
				detail.CurrentStreak++
			} else if !won && detail.CurrentStreak < 0 {
				detail.CurrentStreak--
			} else {
				streakBroken = true
			}
		}

		// Longest run of consecutive wins, tracked over the same walk.
		if won {
			runningWins++
			if runningWins > detail.BestWinStreak {
				detail.BestWinStreak = runningWins
			}
		} else {
			runningWins = 0
		}

		for _, gpID := range ownTeam.groupPlayers {
			if gpID == target.ID {
				continue
			}
			rec, ok := partners[gpID]
			if !ok {
				rec = &PartnerRecord{GroupPlayerID: gpID, PlayerName: names[gpID], Games: []GameSummary{}}
				partners[gpID] = rec
			}
			if won {
				rec.Wins++
			} else {
				rec.Losses++
			}
			rec.TotalGames++
			rec.Games = append(rec.Games, summary)
		}
		for _, gpID := range oppTeam.groupPlayers {
			rec, ok := opponents[gpID]
			if !ok {
				rec = &OpponentRecord{GroupPlayerID: gpID, PlayerName: names[gpID], Games: []GameSummary{}}
				opponents[gpID] = rec
			}
			if won {
				rec.Wins++
			} else {
				rec.Losses++
			}
			rec.TotalGames++
			rec.Games = append(rec.Games, summary)
		}
	}

	detail.PointDifferential = detail.PointsScored - detail.PointsConceded
	detail.SessionsPlayed = len(sessionsPlayed)
	detail.UnluckyCount = len(detail.UnluckyGames)
	if detail.TotalGames > 0 {
		detail.WinRate = float64(detail.Wins) / float64(detail.TotalGames)
	}

	detail.PartnerStats = make([]PartnerRecord, 0, len(partners))
	for _, rec := range partners {
		if rec.TotalGames > 0 {
			rec.WinRate = float64(rec.Wins) / float64(rec.TotalGames)
		}
		detail.PartnerStats = append(detail.PartnerStats, *rec)
	}
	detail.OpponentStats = make([]OpponentRecord, 0, len(opponents))
	for _, rec := range opponents {
		if rec.TotalGames > 0 {
			rec.WinRate = float64(rec.Wins) / float64(rec.TotalGames)
		}
		detail.OpponentStats = append(detail.OpponentStats, *rec)
	}
	sort.SliceStable(detail.PartnerStats, func(i, j int) bool {
		if detail.PartnerStats[i].WinRate != detail.PartnerStats[j].WinRate {
			return detail.PartnerStats[i].WinRate > detail.PartnerStats[j].WinRate
		}
		return detail.PartnerStats[i].TotalGames > detail.PartnerStats[j].TotalGames
	})
	sort.SliceStable(detail.OpponentStats, func(i, j int) bool {
		if detail.OpponentStats[i].WinRate != detail.OpponentStats[j].WinRate {
			return detail.OpponentStats[i].WinRate > detail.OpponentStats[j].WinRate
		}
		return detail.OpponentStats[i].TotalGames > detail.OpponentStats[j].TotalGames
	})

	return detail, nil
}

// loadGames fetches the session roster mapping and the completed games for
// the given sessions.
func (a *Aggregator) loadGames(sessions []club.Session) ([]club.Game, map[string]string, error) {
	sessionIDs := make([]string, len(sessions))
	for i, s := range sessions {
		sessionIDs[i] = s.ID
	}

	sessionPlayers, err := a.store.ListSessionPlayers(sessionIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load session players: %w", err)
	}
	games, skipped, err := a.store.ListCompletedGames(sessionIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load games: %w", err)
	}
	if skipped > 0 {
		log.Warn("Skipped games with malformed team data during aggregation", "count", skipped)
	}

	playerToGroup := make(map[string]string)
	for _, sp := range sessionPlayers {
		if sp.GroupPlayerID != nil {
			playerToGroup[sp.ID] = *sp.GroupPlayerID
		}
	}
	return games, playerToGroup, nil
}

// side describes one side of a game after roster resolution.
type side struct {
	isTeamA      bool
	groupPlayers []string
}

// sideOf resolves which side of the game the target played on. ok is false
// when the target did not participate.
func sideOf(game *club.Game, playerToGroup map[string]string, targetID string) (own, opp side, won, ok bool) {
	teamA := resolveTeam(game.TeamA, playerToGroup)
	teamB := resolveTeam(game.TeamB, playerToGroup)

	onA := contains(teamA, targetID)
	onB := contains(teamB, targetID)
	if !onA && !onB {
		return side{}, side{}, false, false
	}

	winner := *game.WinningTeam
	if onA {
		return side{isTeamA: true, groupPlayers: teamA}, side{groupPlayers: teamB}, winner == "A", true
	}
	return side{groupPlayers: teamB}, side{isTeamA: true, groupPlayers: teamA}, winner == "B", true
}

// resolveTeam maps session player IDs to group player IDs, dropping guests.
func resolveTeam(members []string, playerToGroup map[string]string) []string {
	var resolved []string
	for _, spID := range members {
		if gpID, ok := playerToGroup[spID]; ok {
			resolved = append(resolved, gpID)
		}
	}
	return resolved
}

// scoresFor returns the game's scores from the perspective of the given
// side. Missing scores count as zero.
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

// eloRank returns the 1-based position of the player within the group when
// sorted by ELO descending. Independent of game history.
func eloRank(players []club.GroupPlayer, targetID string) int {
	sorted := make([]club.GroupPlayer, len(players))
	copy(sorted, players)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].EloRating > sorted[j].EloRating
	})
	for i, p := range sorted {
		if p.ID == targetID {
			return i + 1
		}
	}
	return 0
}

// classifyTrend labels a recent-form window: up when recent wins outnumber
// losses by more than one, down in the reverse case, stable otherwise.
func classifyTrend(form []string) Trend {
	wins, losses := 0, 0
	for _, f := range form {
		if f == "W" {
			wins++
		} else {
			losses++
		}
	}
	switch {
	case wins-losses > 1:
		return TrendUp
	case losses-wins > 1:
		return TrendDown
	default:
		return TrendStable
	}
}

func formSymbol(won bool) string {
	if won {
		return "W"
	}
	return "L"
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
