package handlers

import (
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/crosscourt/shuttletrack/internal/metrics"
	"github.com/crosscourt/shuttletrack/internal/stats"
)

// LeaderboardHandler serves the ELO-ranked group leaderboard.
func LeaderboardHandler(aggregator *stats.Aggregator, metricsSvc metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID := r.URL.Query().Get("groupID")
		if groupID == "" {
			http.Error(w, "groupID is required", http.StatusBadRequest)
			return
		}

		entries, err := aggregator.ComputeLeaderboard(groupID)
		if err != nil {
			log.Error("Failed to compute leaderboard", "group_id", groupID, "error", err)
			http.Error(w, "Failed to compute leaderboard", http.StatusInternalServerError)
			return
		}
		metricsSvc.IncLeaderboardsComputed()
		respondJSON(w, http.StatusOK, entries)
	}
}

// PlayerStatsHandler serves one player's detailed report.
func PlayerStatsHandler(aggregator *stats.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID := r.URL.Query().Get("groupID")
		playerID := r.URL.Query().Get("playerID")
		if groupID == "" || playerID == "" {
			http.Error(w, "groupID and playerID are required", http.StatusBadRequest)
			return
		}

		detail, err := aggregator.ComputePlayerDetailedStats(groupID, playerID)
		if err != nil {
			log.Error("Failed to compute player stats", "group_id", groupID, "player_id", playerID, "error", err)
			http.Error(w, "Failed to compute player stats", http.StatusInternalServerError)
			return
		}
		if detail == nil {
			http.Error(w, "Player not found", http.StatusNotFound)
			return
		}
		respondJSON(w, http.StatusOK, detail)
	}
}
