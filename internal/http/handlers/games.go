package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/crosscourt/shuttletrack/internal/club"
	"github.com/crosscourt/shuttletrack/internal/elo"
	"github.com/crosscourt/shuttletrack/internal/metrics"
	"github.com/crosscourt/shuttletrack/internal/pubsub"
)

// ListGamesHandler returns every game of a session, played or not.
func ListGamesHandler(store club.ClubStore, metricsSvc metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("sessionID")
		if sessionID == "" {
			http.Error(w, "sessionID is required", http.StatusBadRequest)
			return
		}
		games, skipped, err := store.ListAllGames([]string{sessionID})
		if err != nil {
			log.Error("Failed to list games", "session_id", sessionID, "error", err)
			http.Error(w, "Failed to list games", http.StatusInternalServerError)
			return
		}
		if skipped > 0 {
			log.Warn("Skipped games with malformed team data", "session_id", sessionID, "count", skipped)
			metricsSvc.AddSkippedGames(skipped)
		}
		if games == nil {
			games = []club.Game{}
		}
		respondJSON(w, http.StatusOK, games)
	}
}

// RecordResultHandler records a game result, applies the rating exchange to
// every linked group player, and hands the downstream work (pairing rebuild,
// notifications) to pub/sub.
func RecordResultHandler(store club.ClubStore, metricsSvc metrics.Metrics, pubsubClient pubsub.PubSubClient) http.HandlerFunc {
	type request struct {
		GameID      string `json:"game_id"`
		WinningTeam string `json:"winning_team"`
		TeamAScore  *int   `json:"team_a_score,omitempty"`
		TeamBScore  *int   `json:"team_b_score,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if req.GameID == "" {
			http.Error(w, "game_id is required", http.StatusBadRequest)
			return
		}
		if req.WinningTeam != "A" && req.WinningTeam != "B" {
			http.Error(w, "winning_team must be 'A' or 'B'", http.StatusBadRequest)
			return
		}

		game, err := store.RecordResult(req.GameID, req.WinningTeam, req.TeamAScore, req.TeamBScore)
		if err != nil {
			log.Error("Failed to record result", "game_id", req.GameID, "error", err)
			http.Error(w, "Failed to record result", http.StatusInternalServerError)
			return
		}
		if game == nil {
			http.Error(w, "Game not found", http.StatusNotFound)
			return
		}
		metricsSvc.IncGamesRecorded()

		session, err := store.GetSession(game.SessionID)
		if err != nil || session == nil {
			log.Error("Failed to load session for recorded game", "session_id", game.SessionID, "error", err)
			http.Error(w, "Failed to load session", http.StatusInternalServerError)
			return
		}

		if err := applyRatings(store, session.GroupID, game, req.WinningTeam == "A"); err != nil {
			log.Error("Failed to apply rating changes", "game_id", game.ID, "error", err)
			http.Error(w, "Failed to apply rating changes", http.StatusInternalServerError)
			return
		}

		isDryRun := IsDryRunFromContext(r)
		if isDryRun {
			log.Info("[Dry Run] Would publish recalc and notify events", "group_id", session.GroupID, "game_id", game.ID)
		} else {
			if err := pubsubClient.SendMessage(pubsub.EventRecalcPairings, pubsub.RecalcPairingsEvent{GroupID: session.GroupID}); err != nil {
				log.Error("Failed to publish recalc event", "group_id", session.GroupID, "error", err)
			}
			if err := pubsubClient.SendMessage(pubsub.EventNotifyResult, pubsub.NotifyResultEvent{GroupID: session.GroupID, GameID: game.ID}); err != nil {
				log.Error("Failed to publish notify event", "game_id", game.ID, "error", err)
			}
		}

		log.Info("Recorded game result", "game_id", game.ID, "winning_team", req.WinningTeam)
		respondJSON(w, http.StatusOK, game)
	}
}

// applyRatings exchanges ELO between the two teams of a played game. Guests
// carry no rating: they neither contribute to a team's strength nor receive
// an update.
func applyRatings(store club.ClubStore, groupID string, game *club.Game, teamAWon bool) error {
	sessionPlayers, err := store.ListSessionPlayers([]string{game.SessionID})
	if err != nil {
		return err
	}
	players, err := store.ListGroupPlayers(groupID)
	if err != nil {
		return err
	}

	playerToGroup := make(map[string]string)
	for _, sp := range sessionPlayers {
		if sp.GroupPlayerID != nil {
			playerToGroup[sp.ID] = *sp.GroupPlayerID
		}
	}
	ratings := make(map[string]float64, len(players))
	for _, p := range players {
		ratings[p.ID] = p.EloRating
	}

	resolve := func(team []string) (ids []string, teamRatings []float64) {
		for _, spID := range team {
			gpID, ok := playerToGroup[spID]
			if !ok {
				continue
			}
			rating, ok := ratings[gpID]
			if !ok {
				continue
			}
			ids = append(ids, gpID)
			teamRatings = append(teamRatings, rating)
		}
		return ids, teamRatings
	}

	idsA, ratingsA := resolve(game.TeamA)
	idsB, ratingsB := resolve(game.TeamB)
	if len(idsA) == 0 && len(idsB) == 0 {
		return nil
	}

	deltaA, deltaB := elo.Update(ratingsA, ratingsB, teamAWon)
	for _, gpID := range idsA {
		if err := store.ApplyGameToRating(gpID, deltaA, teamAWon); err != nil {
			return err
		}
	}
	for _, gpID := range idsB {
		if err := store.ApplyGameToRating(gpID, deltaB, !teamAWon); err != nil {
			return err
		}
	}
	return nil
}
