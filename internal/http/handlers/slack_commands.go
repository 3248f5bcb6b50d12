package handlers

import (
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/slack-go/slack"

	"github.com/crosscourt/shuttletrack/internal/club"
	"github.com/crosscourt/shuttletrack/internal/metrics"
	"github.com/crosscourt/shuttletrack/internal/notifier"
	"github.com/crosscourt/shuttletrack/internal/stats"
)

// LeaderboardCommandHandler returns a handler for the /leaderboard Slack
// command. The command text is the group ID.
func LeaderboardCommandHandler(aggregator *stats.Aggregator, notif notifier.Notifier, metricsSvc metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		groupID := strings.TrimSpace(r.FormValue("text"))
		if groupID == "" {
			http.Error(w, "Group ID is required.", http.StatusBadRequest)
			return
		}

		entries, err := aggregator.ComputeLeaderboard(groupID)
		if err != nil {
			log.Error("Failed to compute leaderboard", "group_id", groupID, "error", err)
			http.Error(w, "Failed to compute leaderboard", http.StatusInternalServerError)
			return
		}
		metricsSvc.IncLeaderboardsComputed()

		msg, err := notif.FormatLeaderboardResponse(entries)
		if err != nil {
			log.Error("Failed to format leaderboard", "error", err)
			http.Error(w, "Failed to format leaderboard", http.StatusInternalServerError)
			return
		}

		slackMsg, ok := msg.(slack.Message)
		if !ok {
			log.Error("Failed to cast message to slack.Message")
			http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
			return
		}
		respondWithSlackMsg(w, slackMsg)
	}
}

// PlayerStatsCommandHandler returns a handler for the /player-stats Slack
// command. The command text is the group ID followed by the player's name.
func PlayerStatsCommandHandler(store club.ClubStore, aggregator *stats.Aggregator, notif notifier.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		text := strings.TrimSpace(r.FormValue("text"))
		parts := strings.SplitN(text, " ", 2)
		if len(parts) < 2 {
			http.Error(w, "Usage: <group-id> <player-name>", http.StatusBadRequest)
			return
		}
		groupID, playerName := parts[0], strings.TrimSpace(parts[1])

		log.Info("Received player stats command", "group_id", groupID, "player", playerName)

		players, err := store.ListGroupPlayers(groupID)
		if err != nil {
			log.Error("Failed to list group players", "group_id", groupID, "error", err)
			http.Error(w, "Failed to list group players", http.StatusInternalServerError)
			return
		}
		var playerID string
		for _, p := range players {
			if strings.EqualFold(p.Name, playerName) {
				playerID = p.ID
				break
			}
		}

		var msg any
		if playerID == "" {
			msg, err = notif.FormatPlayerNotFoundResponse(playerName)
		} else {
			var detail *stats.PlayerDetailedStats
			detail, err = aggregator.ComputePlayerDetailedStats(groupID, playerID)
			if err == nil {
				if detail == nil {
					msg, err = notif.FormatPlayerNotFoundResponse(playerName)
				} else {
					msg, err = notif.FormatPlayerStatsResponse(detail, playerName)
				}
			}
		}
		if err != nil {
			log.Error("Failed to format player stats", "error", err)
			http.Error(w, "Failed to format player stats", http.StatusInternalServerError)
			return
		}

		slackMsg, ok := msg.(slack.Message)
		if !ok {
			log.Error("Failed to cast message to slack.Message")
			http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
			return
		}
		respondWithSlackMsg(w, slackMsg)
	}
}
