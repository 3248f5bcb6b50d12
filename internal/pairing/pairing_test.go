package pairing

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crosscourt/shuttletrack/internal/club"
)

func fourPlayers() []club.GroupPlayer {
	return []club.GroupPlayer{
		{ID: "gp-1", GroupID: "grp-1", Name: "Alice", EloRating: 1200},
		{ID: "gp-2", GroupID: "grp-1", Name: "Bob", EloRating: 1200},
		{ID: "gp-3", GroupID: "grp-1", Name: "Carol", EloRating: 1200},
		{ID: "gp-4", GroupID: "grp-1", Name: "Dave", EloRating: 1200},
	}
}

// newStoreFixture wires a mock store with one session whose roster links
// sp-N to players[N-1]. Upserted rows land in the returned mock's call
// records.
func newStoreFixture(players []club.GroupPlayer, games []club.Game) *club.MockStore {
	sessionPlayers := make([]club.SessionPlayer, len(players))
	for i := range players {
		gpID := players[i].ID
		sessionPlayers[i] = club.SessionPlayer{
			ID:            fmt.Sprintf("sp-%d", i+1),
			SessionID:     "sess-1",
			GroupPlayerID: &gpID,
			Name:          players[i].Name,
		}
	}

	m := club.NewMock()
	m.ListGroupPlayersFunc = func(groupID string) ([]club.GroupPlayer, error) {
		return players, nil
	}
	m.GetGroupPlayerFunc = func(groupID, groupPlayerID string) (*club.GroupPlayer, error) {
		for i := range players {
			if players[i].ID == groupPlayerID {
				return &players[i], nil
			}
		}
		return nil, nil
	}
	m.ListSessionsFunc = func(groupID string) ([]club.Session, error) {
		return []club.Session{{ID: "sess-1", GroupID: groupID, Name: "Tuesday night", Mode: "doubles"}}, nil
	}
	m.ListSessionPlayersFunc = func(sessionIDs []string) ([]club.SessionPlayer, error) {
		return sessionPlayers, nil
	}
	m.ListCompletedGamesFunc = func(sessionIDs []string) ([]club.Game, int, error) {
		return games, 0, nil
	}
	return m
}

func playedGame(id string, number int, teamA, teamB []string, winner string, scoreA, scoreB int) club.Game {
	return club.Game{
		ID:          id,
		SessionID:   "sess-1",
		GameNumber:  number,
		TeamA:       teamA,
		TeamB:       teamB,
		WinningTeam: &winner,
		TeamAScore:  &scoreA,
		TeamBScore:  &scoreB,
		CreatedAt:   int64(1700000000 + number),
	}
}

func TestRecalculateBuildsPartnerAndMatchupRows(t *testing.T) {
	games := []club.Game{
		playedGame("g-1", 1, []string{"sp-1", "sp-2"}, []string{"sp-3", "sp-4"}, "A", 21, 15),
	}
	m := newStoreFixture(fourPlayers(), games)

	result, err := New(m).Recalculate("grp-1")
	require.NoError(t, err)
	assert.Equal(t, 2, result.PartnersUpdated)
	assert.Equal(t, 1, result.MatchupsUpdated)
	assert.Equal(t, 0, result.SkippedGames)

	assert.Equal(t, []string{"grp-1", "grp-1"}, []string{m.ClearPartnerStatsCalls[0], m.ClearPairingMatchupsCalls[0]})

	require.Len(t, m.UpsertPartnerStatsCalls, 2)
	winners := m.UpsertPartnerStatsCalls[0]
	assert.Equal(t, "gp-1", winners.Player1ID)
	assert.Equal(t, "gp-2", winners.Player2ID)
	assert.Equal(t, 1, winners.Wins)
	assert.Equal(t, 0, winners.Losses)
	losers := m.UpsertPartnerStatsCalls[1]
	assert.Equal(t, "gp-3", losers.Player1ID)
	assert.Equal(t, 0, losers.Wins)
	assert.Equal(t, 1, losers.Losses)

	require.Len(t, m.UpsertPairingMatchupCalls, 1)
	pm := m.UpsertPairingMatchupCalls[0]
	assert.Equal(t, []string{"gp-1", "gp-2"}, pm.Team1)
	assert.Equal(t, []string{"gp-3", "gp-4"}, pm.Team2)
	assert.Equal(t, 1, pm.Team1Wins)
	assert.Equal(t, 0, pm.Team1Losses)
	assert.Equal(t, 1, pm.TotalGames)
}

func TestRecalculateMatchupSymmetry(t *testing.T) {
	// The same two teams meet twice with storage sides flipped; both games
	// must land on one row counted from team1's perspective.
	games := []club.Game{
		playedGame("g-2", 2, []string{"sp-4", "sp-3"}, []string{"sp-2", "sp-1"}, "A", 21, 18),
		playedGame("g-1", 1, []string{"sp-1", "sp-2"}, []string{"sp-3", "sp-4"}, "A", 21, 15),
	}
	m := newStoreFixture(fourPlayers(), games)

	result, err := New(m).Recalculate("grp-1")
	require.NoError(t, err)
	assert.Equal(t, 1, result.MatchupsUpdated)

	require.Len(t, m.UpsertPairingMatchupCalls, 1)
	pm := m.UpsertPairingMatchupCalls[0]
	assert.Equal(t, []string{"gp-1", "gp-2"}, pm.Team1)
	assert.Equal(t, 2, pm.TotalGames)
	assert.Equal(t, 2, pm.Team1Wins+pm.Team1Losses)
	assert.Equal(t, 1, pm.Team1Wins)
	assert.Equal(t, 1, pm.Team1Losses)
}

func TestRecalculateSkipsGuestTeams(t *testing.T) {
	games := []club.Game{
		// sp-guest is unlinked: its team produces no partner pair and the
		// game produces no matchup row.
		playedGame("g-1", 1, []string{"sp-1", "sp-guest"}, []string{"sp-3", "sp-4"}, "B", 12, 21),
	}
	m := newStoreFixture(fourPlayers(), games)

	result, err := New(m).Recalculate("grp-1")
	require.NoError(t, err)
	assert.Equal(t, 1, result.PartnersUpdated)
	assert.Equal(t, 0, result.MatchupsUpdated)

	require.Len(t, m.UpsertPartnerStatsCalls, 1)
	assert.Equal(t, "gp-3", m.UpsertPartnerStatsCalls[0].Player1ID)
	assert.Equal(t, 1, m.UpsertPartnerStatsCalls[0].Wins)
	assert.Empty(t, m.UpsertPairingMatchupCalls)
}

func TestRecalculateSinglesProducesNoPartnerRows(t *testing.T) {
	games := []club.Game{
		playedGame("g-1", 1, []string{"sp-1"}, []string{"sp-2"}, "A", 21, 17),
	}
	m := newStoreFixture(fourPlayers(), games)

	result, err := New(m).Recalculate("grp-1")
	require.NoError(t, err)
	assert.Equal(t, 0, result.PartnersUpdated)
	assert.Equal(t, 1, result.MatchupsUpdated)

	pm := m.UpsertPairingMatchupCalls[0]
	assert.Equal(t, []string{"gp-1"}, pm.Team1)
	assert.Equal(t, []string{"gp-2"}, pm.Team2)
}

func TestRecalculateReportsSkippedGames(t *testing.T) {
	m := newStoreFixture(fourPlayers(), nil)
	m.ListCompletedGamesFunc = func(sessionIDs []string) ([]club.Game, int, error) {
		return nil, 3, nil
	}

	result, err := New(m).Recalculate("grp-1")
	require.NoError(t, err)
	assert.Equal(t, 3, result.SkippedGames)
	assert.Equal(t, 0, result.PartnersUpdated)
}

func TestRecalculateIdempotent(t *testing.T) {
	games := []club.Game{
		playedGame("g-2", 2, []string{"sp-1", "sp-3"}, []string{"sp-2", "sp-4"}, "B", 19, 21),
		playedGame("g-1", 1, []string{"sp-1", "sp-2"}, []string{"sp-3", "sp-4"}, "A", 21, 15),
	}
	m := newStoreFixture(fourPlayers(), games)
	agg := New(m)

	first, err := agg.Recalculate("grp-1")
	require.NoError(t, err)
	second, err := agg.Recalculate("grp-1")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Second run rewrote the same rows in the same order.
	half := len(m.UpsertPartnerStatsCalls) / 2
	assert.Equal(t, m.UpsertPartnerStatsCalls[:half], m.UpsertPartnerStatsCalls[half:])
}

func TestLeaderboardSorting(t *testing.T) {
	m := club.NewMock()
	m.ListPairingMatchupsFunc = func(groupID string) ([]club.PairingMatchup, error) {
		return []club.PairingMatchup{
			{Team1: []string{"gp-1", "gp-2"}, Team1Wins: 1, TotalGames: 2},
			{Team1: []string{"gp-1", "gp-3"}, Team1Wins: 3, TotalGames: 4},
			{Team1: []string{"gp-1", "gp-4"}, Team1Wins: 1, TotalGames: 5},
		}, nil
	}

	rows, err := New(m).Leaderboard("grp-1")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"gp-1", "gp-3"}, rows[0].Team1)
	assert.Equal(t, []string{"gp-1", "gp-4"}, rows[1].Team1)
	assert.Equal(t, []string{"gp-1", "gp-2"}, rows[2].Team1)
}

func TestLeaderboardEmptyGroup(t *testing.T) {
	m := club.NewMock()

	rows, err := New(m).Leaderboard("grp-1")
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestDetailedStatsUnknownPlayer(t *testing.T) {
	m := newStoreFixture(fourPlayers(), nil)

	detail, err := New(m).DetailedStats("grp-1", "gp-1", "gp-missing")
	require.NoError(t, err)
	assert.Nil(t, detail)
}

func TestDetailedStatsExpandsOpponents(t *testing.T) {
	games := []club.Game{
		playedGame("g-2", 2, []string{"sp-3", "sp-4"}, []string{"sp-2", "sp-1"}, "A", 21, 18),
		playedGame("g-1", 1, []string{"sp-1", "sp-2"}, []string{"sp-3", "sp-4"}, "A", 21, 15),
	}
	m := newStoreFixture(fourPlayers(), games)
	m.ListPairingMatchupsFunc = func(groupID string) ([]club.PairingMatchup, error) {
		return []club.PairingMatchup{
			{
				GroupID: groupID,
				Team1:   []string{"gp-1", "gp-2"},
				Team2:   []string{"gp-3", "gp-4"},
				Team1Wins: 1, Team1Losses: 1, TotalGames: 2,
			},
		}, nil
	}

	// Argument order must not matter.
	detail, err := New(m).DetailedStats("grp-1", "gp-2", "gp-1")
	require.NoError(t, err)
	require.NotNil(t, detail)

	assert.Equal(t, "gp-1", detail.Player1ID)
	assert.Equal(t, "gp-2", detail.Player2ID)
	assert.Equal(t, "Alice", detail.Player1Name)
	assert.Equal(t, 1, detail.Wins)
	assert.Equal(t, 1, detail.Losses)
	assert.Equal(t, 2, detail.TotalGames)
	assert.Equal(t, 0.5, detail.WinRate)
	assert.Equal(t, 39, detail.PointsFor)
	assert.Equal(t, 36, detail.PointsAgainst)
	assert.Equal(t, 3, detail.PointDifferential)

	require.Len(t, detail.Opponents, 1)
	opp := detail.Opponents[0]
	assert.Equal(t, []string{"gp-3", "gp-4"}, opp.Team)
	assert.Equal(t, []string{"Carol", "Dave"}, opp.TeamNames)
	assert.Equal(t, 1, opp.Wins)
	assert.Equal(t, 1, opp.Losses)
	require.Len(t, opp.Games, 2)
	assert.False(t, opp.Games[0].Won)
	assert.Equal(t, 18, opp.Games[0].PointsFor)
	assert.True(t, opp.Games[1].Won)
}

func TestDetailedStatsFromPerspectiveOfTeam2(t *testing.T) {
	// The pair sits on the row's team2 side; wins and losses must flip.
	m := newStoreFixture(fourPlayers(), nil)
	m.ListPairingMatchupsFunc = func(groupID string) ([]club.PairingMatchup, error) {
		return []club.PairingMatchup{
			{
				GroupID: groupID,
				Team1:   []string{"gp-1", "gp-2"},
				Team2:   []string{"gp-3", "gp-4"},
				Team1Wins: 3, Team1Losses: 1, TotalGames: 4,
			},
		}, nil
	}

	detail, err := New(m).DetailedStats("grp-1", "gp-3", "gp-4")
	require.NoError(t, err)
	require.NotNil(t, detail)

	assert.Equal(t, 1, detail.Wins)
	assert.Equal(t, 3, detail.Losses)
	require.Len(t, detail.Opponents, 1)
	assert.Equal(t, []string{"gp-1", "gp-2"}, detail.Opponents[0].Team)
}

func TestDetailedStatsNoHistory(t *testing.T) {
	m := newStoreFixture(fourPlayers(), nil)

	detail, err := New(m).DetailedStats("grp-1", "gp-1", "gp-2")
	require.NoError(t, err)
	require.NotNil(t, detail)

	assert.Equal(t, 0, detail.TotalGames)
	assert.Equal(t, 0.0, detail.WinRate)
	assert.Empty(t, detail.Opponents)
}

func TestDetailedStatsToleratesSkippedGames(t *testing.T) {
	games := []club.Game{
		playedGame("g-1", 1, []string{"sp-1", "sp-2"}, []string{"sp-3", "sp-4"}, "A", 21, 15),
	}
	m := newStoreFixture(fourPlayers(), games)
	m.ListCompletedGamesFunc = func(sessionIDs []string) ([]club.Game, int, error) {
		return games, 2, nil
	}

	detail, err := New(m).DetailedStats("grp-1", "gp-1", "gp-2")
	require.NoError(t, err)
	require.NotNil(t, detail)

	assert.Equal(t, 1, detail.Wins)
	assert.Equal(t, 1, detail.TotalGames)
}

func TestPartnerLeaderboardSortsByWins(t *testing.T) {
	m := newStoreFixture(fourPlayers(), nil)
	m.ListPartnerStatsFunc = func(groupID string) ([]club.PartnerStats, error) {
		return []club.PartnerStats{
			{GroupID: groupID, Player1ID: "gp-1", Player2ID: "gp-3", Wins: 1, Losses: 2, TotalGames: 3},
			{GroupID: groupID, Player1ID: "gp-1", Player2ID: "gp-2", Wins: 2, Losses: 0, TotalGames: 2},
			{GroupID: groupID, Player1ID: "gp-2", Player2ID: "gp-4", Wins: 1, Losses: 0, TotalGames: 1},
		}, nil
	}

	rows, err := New(m).PartnerLeaderboard("grp-1")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "gp-2", rows[0].Player2ID)
	// Equal wins break on total games.
	assert.Equal(t, "gp-3", rows[1].Player2ID)
	assert.Equal(t, "gp-4", rows[2].Player2ID)
}

func TestPartnerLeaderboardEmptyGroup(t *testing.T) {
	rows, err := New(newStoreFixture(fourPlayers(), nil)).PartnerLeaderboard("grp-1")
	require.NoError(t, err)
	require.NotNil(t, rows)
	assert.Empty(t, rows)
}
