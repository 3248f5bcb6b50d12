package handlers

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/crosscourt/shuttletrack/internal/club"
	"github.com/crosscourt/shuttletrack/internal/metrics"
	"github.com/crosscourt/shuttletrack/internal/notifier"
	"github.com/crosscourt/shuttletrack/internal/pairing"
	"github.com/crosscourt/shuttletrack/internal/pubsub"
)

// decodePush unwraps a Pub/Sub push request down to the raw MessagePack
// payload. It writes the error response itself; callers bail on nil.
func decodePush(w http.ResponseWriter, r *http.Request) []byte {
	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("Failed to read request body", "error", err)
		http.Error(w, "Failed to read request body", http.StatusInternalServerError)
		return nil
	}
	log.Debug("Received push message", "body", string(bodyBytes))

	var msg pushEnvelope
	if err := json.Unmarshal(bodyBytes, &msg); err != nil {
		log.Error("Failed to unmarshal wrapper JSON", "error", err)
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return nil
	}

	rawData, err := base64.StdEncoding.DecodeString(msg.Message.Data)
	if err != nil {
		log.Error("Failed to decode base64 data", "error", err)
		http.Error(w, "Invalid base64 data", http.StatusBadRequest)
		return nil
	}
	return rawData
}

// RecalcPairingsPushHandler consumes recalc-pairings events pushed by the
// Pub/Sub subscription and runs the rebuild. Unlike the manual endpoint it
// is not rate limited: events only exist because a result was recorded.
func RecalcPairingsPushHandler(aggregator *pairing.Aggregator, pubsubClient pubsub.PubSubClient, metricsSvc metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rawData := decodePush(w, r)
		if rawData == nil {
			return
		}

		event := pubsub.RecalcPairingsEvent{}
		if err := pubsubClient.ProcessMessage(rawData, &event); err != nil {
			http.Error(w, "Invalid message payload", http.StatusBadRequest)
			return
		}
		if event.GroupID == "" {
			http.Error(w, "Missing group ID", http.StatusBadRequest)
			return
		}

		start := time.Now()
		result, err := aggregator.Recalculate(event.GroupID)
		if err != nil {
			log.Error("Failed to recalculate pairing stats", "group_id", event.GroupID, "error", err)
			http.Error(w, "Failed to recalculate pairing stats", http.StatusInternalServerError)
			return
		}
		metricsSvc.IncRecalcRuns()
		metricsSvc.ObserveRecalcDuration(time.Since(start).Seconds())
		metricsSvc.AddSkippedGames(result.SkippedGames)

		log.Info("Recalculated pairing stats from event",
			"group_id", event.GroupID,
			"partners", result.PartnersUpdated,
			"matchups", result.MatchupsUpdated,
		)
		w.Write([]byte("OK"))
	}
}

// NotifyResultPushHandler consumes notify-result events and posts the game
// result to the configured channel.
func NotifyResultPushHandler(store club.ClubStore, notif notifier.Notifier, pubsubClient pubsub.PubSubClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rawData := decodePush(w, r)
		if rawData == nil {
			return
		}

		event := pubsub.NotifyResultEvent{}
		if err := pubsubClient.ProcessMessage(rawData, &event); err != nil {
			http.Error(w, "Invalid message payload", http.StatusBadRequest)
			return
		}

		game, err := store.GetGame(event.GameID)
		if err != nil {
			log.Error("Failed to load game for notification", "game_id", event.GameID, "error", err)
			http.Error(w, "Failed to load game", http.StatusInternalServerError)
			return
		}
		if game == nil || !game.Played() {
			log.Warn("Notify event for missing or unplayed game", "game_id", event.GameID)
			// Ack anyway; redelivery will not make the game appear.
			w.Write([]byte("OK"))
			return
		}

		session, err := store.GetSession(game.SessionID)
		if err != nil || session == nil {
			log.Error("Failed to load session for notification", "session_id", game.SessionID, "error", err)
			http.Error(w, "Failed to load session", http.StatusInternalServerError)
			return
		}
		sessionPlayers, err := store.ListSessionPlayers([]string{game.SessionID})
		if err != nil {
			log.Error("Failed to load session players for notification", "session_id", game.SessionID, "error", err)
			http.Error(w, "Failed to load session players", http.StatusInternalServerError)
			return
		}
		names := make(map[string]string, len(sessionPlayers))
		for _, sp := range sessionPlayers {
			names[sp.ID] = sp.Name
		}
		resolve := func(team []string) []string {
			out := make([]string, 0, len(team))
			for _, spID := range team {
				if name, ok := names[spID]; ok {
					out = append(out, name)
				}
			}
			return out
		}

		isDryRun := IsDryRunFromContext(r)
		err = notif.SendResultNotification(&notifier.ResultNotification{
			SessionName: session.Name,
			GameNumber:  game.GameNumber,
			TeamANames:  resolve(game.TeamA),
			TeamBNames:  resolve(game.TeamB),
			WinningTeam: *game.WinningTeam,
			TeamAScore:  game.TeamAScore,
			TeamBScore:  game.TeamBScore,
		}, isDryRun)
		if err != nil {
			log.Error("Failed to notify result", "game_id", game.ID, "error", err)
			http.Error(w, "Failed to notify result", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}
