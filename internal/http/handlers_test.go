package http

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/crosscourt/shuttletrack/internal/club"
	"github.com/crosscourt/shuttletrack/internal/config"
	"github.com/crosscourt/shuttletrack/internal/database"
	"github.com/crosscourt/shuttletrack/internal/metrics"
	"github.com/crosscourt/shuttletrack/internal/notifier"
	"github.com/crosscourt/shuttletrack/internal/pairing"
	"github.com/crosscourt/shuttletrack/internal/pubsub"
	"github.com/crosscourt/shuttletrack/internal/schedule"
	"github.com/crosscourt/shuttletrack/internal/stats"
)

// setupTestServer initializes a new server with a test database and mock clients.
func setupTestServer(t *testing.T) (*Server, club.ClubStore, *pubsub.MockPubSubClient, *notifier.Mock, *metrics.Mock, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	clubStore := club.New(db)
	statsAgg := stats.New(clubStore)
	pairingAgg := pairing.New(clubStore)
	metricsMock := metrics.NewMock()
	metricsHandler := metrics.NewMetricsHandler(prometheus.NewRegistry())
	pubsubMock := pubsub.NewMock("TEST")
	notifierMock := notifier.NewMock()
	cfg := config.Config{}

	server := NewServer(clubStore, statsAgg, pairingAgg, metricsMock, metricsHandler, cfg, notifierMock, pubsubMock)

	teardown := func() {
		if dbTeardown != nil {
			dbTeardown()
		}
	}
	return server, clubStore, pubsubMock, notifierMock, metricsMock, teardown
}

// createFixtureSession seeds one group with four linked players and a
// doubles session with its full three-game schedule.
func createFixtureSession(t *testing.T, store club.ClubStore) (groupID string, sessionID string, games []club.Game, groupPlayerIDs []string) {
	t.Helper()

	group, err := store.CreateGroup("Tuesday badminton")
	require.NoError(t, err)

	names := []string{"Alice", "Bob", "Carol", "Dave"}
	session, err := store.CreateSession(group.ID, "Week 1", "doubles", 48000, 12000, 1700000000)
	require.NoError(t, err)

	var rosterIDs []string
	for _, name := range names {
		player, err := store.CreateGroupPlayer(group.ID, name)
		require.NoError(t, err)
		groupPlayerIDs = append(groupPlayerIDs, player.ID)

		sp, err := store.AddSessionPlayer(session.ID, name, &player.ID)
		require.NoError(t, err)
		rosterIDs = append(rosterIDs, sp.ID)
	}

	games, err = store.CreateGames(session.ID, schedule.Generate(rosterIDs, 0, schedule.ModeDoubles))
	require.NoError(t, err)
	require.Len(t, games, 3)

	return group.ID, session.ID, games, groupPlayerIDs
}

func postJSON(t *testing.T, server *Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	return rr
}

func get(server *Server, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	return rr
}

func TestHealthCheck(t *testing.T) {
	server, _, _, _, _, teardown := setupTestServer(t)
	defer teardown()

	rr := get(server, "/health")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK!", rr.Body.String())
}

func TestCreateListDeleteGroup(t *testing.T) {
	server, _, _, _, _, teardown := setupTestServer(t)
	defer teardown()

	rr := postJSON(t, server, "/groups", map[string]any{
		"name":    "Thursday crew",
		"players": []string{"Alice", "Bob"},
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	var created struct {
		Group   club.Group         `json:"group"`
		Players []club.GroupPlayer `json:"players"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, "Thursday crew", created.Group.Name)
	require.Len(t, created.Players, 2)
	assert.Equal(t, 1200.0, created.Players[0].EloRating)

	rr = get(server, "/groups")
	require.Equal(t, http.StatusOK, rr.Code)
	var groups []club.Group
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &groups))
	require.Len(t, groups, 1)

	req := httptest.NewRequest("DELETE", "/groups?groupID="+created.Group.ID, nil)
	del := httptest.NewRecorder()
	server.ServeHTTP(del, req)
	assert.Equal(t, http.StatusNoContent, del.Code)

	rr = get(server, "/groups")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &groups))
	assert.Empty(t, groups)
}

func TestCreateGroupValidation(t *testing.T) {
	server, _, _, _, _, teardown := setupTestServer(t)
	defer teardown()

	rr := postJSON(t, server, "/groups", map[string]any{"name": ""})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateSessionGeneratesSchedule(t *testing.T) {
	server, store, _, _, _, teardown := setupTestServer(t)
	defer teardown()

	group, err := store.CreateGroup("Tuesday badminton")
	require.NoError(t, err)

	rr := postJSON(t, server, "/sessions", map[string]any{
		"group_id":     group.ID,
		"name":         "Week 1",
		"mode":         "doubles",
		"court_cost":   48000,
		"shuttle_cost": 12000,
		"played_at":    1700000000,
		"players": []map[string]any{
			{"name": "Alice"}, {"name": "Bob"}, {"name": "Carol"}, {"name": "Dave"},
		},
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created struct {
		Session club.Session         `json:"session"`
		Players []club.SessionPlayer `json:"players"`
		Games   []club.Game          `json:"games"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, "doubles", created.Session.Mode)
	require.Len(t, created.Players, 4)
	require.Len(t, created.Games, 3)
	for i, game := range created.Games {
		assert.Equal(t, i+1, game.GameNumber)
		assert.Len(t, game.TeamA, 2)
		assert.Len(t, game.TeamB, 2)
		assert.Nil(t, game.WinningTeam)
	}
}

func TestCreateSessionRejectsBadRoster(t *testing.T) {
	server, store, _, _, _, teardown := setupTestServer(t)
	defer teardown()

	group, err := store.CreateGroup("Tuesday badminton")
	require.NoError(t, err)

	// Seven players cannot play round-robin doubles on one court.
	players := make([]map[string]any, 7)
	for i := range players {
		players[i] = map[string]any{"name": fmt.Sprintf("p%d", i)}
	}
	rr := postJSON(t, server, "/sessions", map[string]any{
		"group_id": group.ID,
		"name":     "Week 1",
		"mode":     "doubles",
		"players":  players,
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = postJSON(t, server, "/sessions", map[string]any{
		"group_id": group.ID,
		"name":     "Week 1",
		"mode":     "trios",
		"players":  players,
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateSessionUnknownGroup(t *testing.T) {
	server, _, _, _, _, teardown := setupTestServer(t)
	defer teardown()

	rr := postJSON(t, server, "/sessions", map[string]any{
		"group_id": "nope",
		"name":     "Week 1",
		"mode":     "singles",
		"players":  []map[string]any{{"name": "Alice"}, {"name": "Bob"}},
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRecordResultFlow(t *testing.T) {
	server, store, pubsubMock, _, metricsMock, teardown := setupTestServer(t)
	defer teardown()

	groupID, _, games, playerIDs := createFixtureSession(t, store)

	rr := postJSON(t, server, "/games/result", map[string]any{
		"game_id":      games[0].ID,
		"winning_team": "A",
		"team_a_score": 21,
		"team_b_score": 15,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var updated club.Game
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
	require.NotNil(t, updated.WinningTeam)
	assert.Equal(t, "A", *updated.WinningTeam)

	assert.Equal(t, 1, metricsMock.GamesRecorded())

	// Both follow-up events went out.
	require.Len(t, pubsubMock.SendMessageCalls, 2)
	assert.Equal(t, string(pubsub.EventRecalcPairings), pubsubMock.SendMessageCalls[0].Topic)
	assert.Equal(t, string(pubsub.EventNotifyResult), pubsubMock.SendMessageCalls[1].Topic)

	// An even 2v2 at equal ratings moves each player by K/2.
	winners := 0
	losers := 0
	for _, gpID := range playerIDs {
		player, err := store.GetGroupPlayer(groupID, gpID)
		require.NoError(t, err)
		switch player.EloRating {
		case 1216.0:
			winners++
			assert.Equal(t, 1, player.Wins)
		case 1184.0:
			losers++
			assert.Equal(t, 1, player.Losses)
		default:
			t.Fatalf("unexpected rating %f for %s", player.EloRating, player.Name)
		}
	}
	assert.Equal(t, 2, winners)
	assert.Equal(t, 2, losers)
}

func TestRecordResultValidation(t *testing.T) {
	server, store, _, _, _, teardown := setupTestServer(t)
	defer teardown()

	_, _, games, _ := createFixtureSession(t, store)

	rr := postJSON(t, server, "/games/result", map[string]any{
		"game_id":      games[0].ID,
		"winning_team": "C",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = postJSON(t, server, "/games/result", map[string]any{
		"game_id":      "missing",
		"winning_team": "A",
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestLeaderboardEndpoint(t *testing.T) {
	server, store, _, _, metricsMock, teardown := setupTestServer(t)
	defer teardown()

	groupID, _, games, _ := createFixtureSession(t, store)
	_, err := store.RecordResult(games[0].ID, "A", nil, nil)
	require.NoError(t, err)

	rr := get(server, "/leaderboard?groupID="+groupID)
	require.Equal(t, http.StatusOK, rr.Code)

	var entries []stats.LeaderboardEntry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &entries))
	require.Len(t, entries, 4)
	totalWins := 0
	for _, e := range entries {
		totalWins += e.Wins
	}
	assert.Equal(t, 2, totalWins)
	assert.Equal(t, 1, metricsMock.LeaderboardsComputed())
}

func TestLeaderboardRequiresGroup(t *testing.T) {
	server, _, _, _, _, teardown := setupTestServer(t)
	defer teardown()

	rr := get(server, "/leaderboard")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPlayerStatsNotFound(t *testing.T) {
	server, store, _, _, _, teardown := setupTestServer(t)
	defer teardown()

	groupID, _, _, _ := createFixtureSession(t, store)

	rr := get(server, "/players/stats?groupID="+groupID+"&playerID=missing")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestPlayerStatsEndpoint(t *testing.T) {
	server, store, _, _, _, teardown := setupTestServer(t)
	defer teardown()

	groupID, _, games, playerIDs := createFixtureSession(t, store)
	_, err := store.RecordResult(games[0].ID, "A", nil, nil)
	require.NoError(t, err)

	rr := get(server, "/players/stats?groupID="+groupID+"&playerID="+playerIDs[0])
	require.Equal(t, http.StatusOK, rr.Code)

	var detail stats.PlayerDetailedStats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &detail))
	assert.Equal(t, playerIDs[0], detail.GroupPlayerID)
	assert.Equal(t, 1, detail.TotalGames)
}

func TestPairingRecalcRateLimit(t *testing.T) {
	server, store, _, _, metricsMock, teardown := setupTestServer(t)
	defer teardown()

	groupID, _, games, _ := createFixtureSession(t, store)
	_, err := store.RecordResult(games[0].ID, "A", nil, nil)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/pairings/recalculate?groupID="+groupID, nil)
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var result pairing.RecalcResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.Equal(t, 2, result.PartnersUpdated)
	assert.Equal(t, 1, result.MatchupsUpdated)
	assert.Equal(t, 1, metricsMock.RecalcRuns())

	// Second call inside the cooldown window is rejected.
	req = httptest.NewRequest("POST", "/pairings/recalculate?groupID="+groupID, nil)
	rr = httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))
	assert.Equal(t, 1, metricsMock.RecalcRuns())

	// Another group is unaffected.
	req = httptest.NewRequest("POST", "/pairings/recalculate?groupID=other", nil)
	rr = httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestPairingLeaderboardEndpoint(t *testing.T) {
	server, store, _, _, _, teardown := setupTestServer(t)
	defer teardown()

	groupID, _, games, _ := createFixtureSession(t, store)
	_, err := store.RecordResult(games[0].ID, "B", nil, nil)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/pairings/recalculate?groupID="+groupID, nil)
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	rr2 := get(server, "/pairings/leaderboard?groupID="+groupID)
	require.Equal(t, http.StatusOK, rr2.Code)

	var rows []club.PairingMatchup
	require.NoError(t, json.Unmarshal(rr2.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].TotalGames)
}

func TestPubSubRecalcPush(t *testing.T) {
	server, store, _, _, metricsMock, teardown := setupTestServer(t)
	defer teardown()

	groupID, _, games, _ := createFixtureSession(t, store)
	_, err := store.RecordResult(games[0].ID, "A", nil, nil)
	require.NoError(t, err)

	payload, err := msgpack.Marshal(pubsub.RecalcPairingsEvent{GroupID: groupID})
	require.NoError(t, err)
	envelope := map[string]any{
		"subscription": "projects/test/subscriptions/recalc",
		"message": map[string]any{
			"data": base64.StdEncoding.EncodeToString(payload),
		},
	}

	rr := postJSON(t, server, "/pubsub/recalc-pairings", envelope)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, 1, metricsMock.RecalcRuns())

	rows, err := store.ListPairingMatchups(groupID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestPubSubRecalcPushBadPayload(t *testing.T) {
	server, _, _, _, _, teardown := setupTestServer(t)
	defer teardown()

	req := httptest.NewRequest("POST", "/pubsub/recalc-pairings", strings.NewReader("not json"))
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPubSubNotifyResultPush(t *testing.T) {
	server, store, _, notifierMock, _, teardown := setupTestServer(t)
	defer teardown()

	_, _, games, _ := createFixtureSession(t, store)
	scoreA, scoreB := 21, 15
	_, err := store.RecordResult(games[0].ID, "A", &scoreA, &scoreB)
	require.NoError(t, err)

	payload, err := msgpack.Marshal(pubsub.NotifyResultEvent{GameID: games[0].ID})
	require.NoError(t, err)
	envelope := map[string]any{
		"message": map[string]any{
			"data": base64.StdEncoding.EncodeToString(payload),
		},
	}

	rr := postJSON(t, server, "/pubsub/notify-result", envelope)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	require.Len(t, notifierMock.SendResultNotificationCalls, 1)
	sent := notifierMock.SendResultNotificationCalls[0]
	assert.Equal(t, "Week 1", sent.SessionName)
	assert.Equal(t, "A", sent.WinningTeam)
	assert.Len(t, sent.TeamANames, 2)
	require.NotNil(t, sent.TeamAScore)
	assert.Equal(t, 21, *sent.TeamAScore)
}

func TestSlackLeaderboardCommand(t *testing.T) {
	server, store, _, notifierMock, _, teardown := setupTestServer(t)
	defer teardown()

	groupID, _, games, _ := createFixtureSession(t, store)
	_, err := store.RecordResult(games[0].ID, "A", nil, nil)
	require.NoError(t, err)

	notifierMock.FormatLeaderboardResponseFunc = func(entries []stats.LeaderboardEntry) (any, error) {
		text := fmt.Sprintf("%d players", len(entries))
		return slack.NewBlockMessage(slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", text, false, false), nil, nil)), nil
	}

	form := url.Values{"text": {groupID}}
	req := httptest.NewRequest("POST", "/slack/command/leaderboard", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "4 players")
}

func TestSlackPlayerStatsCommandNotFound(t *testing.T) {
	server, store, _, notifierMock, _, teardown := setupTestServer(t)
	defer teardown()

	groupID, _, _, _ := createFixtureSession(t, store)

	notifierMock.FormatPlayerNotFoundResponseFunc = func(query string) (any, error) {
		return slack.NewBlockMessage(slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "no such player: "+query, false, false), nil, nil)), nil
	}

	form := url.Values{"text": {groupID + " Zed"}}
	req := httptest.NewRequest("POST", "/slack/command/player-stats", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "no such player: Zed")
}

func TestSessionCostEndpoint(t *testing.T) {
	server, store, _, _, _, teardown := setupTestServer(t)
	defer teardown()

	_, sessionID, _, _ := createFixtureSession(t, store)

	rr := get(server, "/sessions/cost?sessionID="+sessionID)
	require.Equal(t, http.StatusOK, rr.Code)

	var cost club.SessionCost
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &cost))
	assert.Equal(t, int64(60000), cost.TotalCost)
	assert.Equal(t, 4, cost.PlayerCount)
	assert.Equal(t, int64(15000), cost.PerPlayer)
}

func TestPromotePlayer(t *testing.T) {
	server, store, _, _, _, teardown := setupTestServer(t)
	defer teardown()

	group, err := store.CreateGroup("Tuesday badminton")
	require.NoError(t, err)
	session, err := store.CreateSession(group.ID, "Week 1", "doubles", 0, 0, 1700000000)
	require.NoError(t, err)
	guest, err := store.AddSessionPlayer(session.ID, "Erin", nil)
	require.NoError(t, err)
	require.Nil(t, guest.GroupPlayerID)

	rr := postJSON(t, server, "/players/promote", map[string]any{
		"group_id":          group.ID,
		"session_player_id": guest.ID,
		"name":              "Erin",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var promoted club.GroupPlayer
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &promoted))
	assert.Equal(t, "Erin", promoted.Name)
	assert.Equal(t, 1200.0, promoted.EloRating)

	roster, err := store.ListSessionPlayers([]string{session.ID})
	require.NoError(t, err)
	require.Len(t, roster, 1)
	require.NotNil(t, roster[0].GroupPlayerID)
	assert.Equal(t, promoted.ID, *roster[0].GroupPlayerID)
}

func TestPromotePlayerUnknownGroup(t *testing.T) {
	server, _, _, _, _, teardown := setupTestServer(t)
	defer teardown()

	rr := postJSON(t, server, "/players/promote", map[string]any{
		"group_id":          "nope",
		"session_player_id": "sp-1",
		"name":              "Erin",
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestPartnerStatsEndpoint(t *testing.T) {
	server, store, _, _, _, teardown := setupTestServer(t)
	defer teardown()

	groupID, _, games, _ := createFixtureSession(t, store)
	_, err := store.RecordResult(games[0].ID, "A", nil, nil)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/pairings/recalculate?groupID="+groupID, nil)
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	rr2 := get(server, "/pairings/partners?groupID="+groupID)
	require.Equal(t, http.StatusOK, rr2.Code)

	var rows []club.PartnerStats
	require.NoError(t, json.Unmarshal(rr2.Body.Bytes(), &rows))
	require.Len(t, rows, 2)
	// The winning pair sorts first.
	assert.Equal(t, 1, rows[0].Wins)
	assert.Equal(t, 0, rows[1].Wins)
}
