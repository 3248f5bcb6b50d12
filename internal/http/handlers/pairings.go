package handlers

import (
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/crosscourt/shuttletrack/internal/metrics"
	"github.com/crosscourt/shuttletrack/internal/pairing"
)

// RecalculatePairingsHandler triggers a full rebuild of a group's pairing
// aggregates. Rebuilds are throttled per group; a rejected call reports how
// long to back off via Retry-After.
func RecalculatePairingsHandler(aggregator *pairing.Aggregator, limiter *RateLimiter, metricsSvc metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID := r.URL.Query().Get("groupID")
		if groupID == "" {
			http.Error(w, "groupID is required", http.StatusBadRequest)
			return
		}

		allowed, retryAfter := limiter.Allow(groupID)
		if !allowed {
			seconds := int(math.Ceil(retryAfter.Seconds()))
			w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
			http.Error(w, "Recalculation is rate limited for this group", http.StatusTooManyRequests)
			log.Info("Rejected pairing recalc, cooldown active", "group_id", groupID, "retry_after_s", seconds)
			return
		}

		start := time.Now()
		result, err := aggregator.Recalculate(groupID)
		if err != nil {
			log.Error("Failed to recalculate pairing stats", "group_id", groupID, "error", err)
			http.Error(w, "Failed to recalculate pairing stats", http.StatusInternalServerError)
			return
		}
		metricsSvc.IncRecalcRuns()
		metricsSvc.ObserveRecalcDuration(time.Since(start).Seconds())
		metricsSvc.AddSkippedGames(result.SkippedGames)

		log.Info("Recalculated pairing stats",
			"group_id", groupID,
			"partners", result.PartnersUpdated,
			"matchups", result.MatchupsUpdated,
			"skipped", result.SkippedGames,
		)
		respondJSON(w, http.StatusOK, result)
	}
}

// PairingLeaderboardHandler serves the persisted matchup rows.
func PairingLeaderboardHandler(aggregator *pairing.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID := r.URL.Query().Get("groupID")
		if groupID == "" {
			http.Error(w, "groupID is required", http.StatusBadRequest)
			return
		}

		rows, err := aggregator.Leaderboard(groupID)
		if err != nil {
			log.Error("Failed to load pairing leaderboard", "group_id", groupID, "error", err)
			http.Error(w, "Failed to load pairing leaderboard", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, rows)
	}
}

// PartnerStatsHandler serves the persisted partner-pair rows.
func PartnerStatsHandler(aggregator *pairing.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID := r.URL.Query().Get("groupID")
		if groupID == "" {
			http.Error(w, "groupID is required", http.StatusBadRequest)
			return
		}

		rows, err := aggregator.PartnerLeaderboard(groupID)
		if err != nil {
			log.Error("Failed to load partner stats", "group_id", groupID, "error", err)
			http.Error(w, "Failed to load partner stats", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, rows)
	}
}

// PairingStatsHandler serves one pair's record against every opposing team.
func PairingStatsHandler(aggregator *pairing.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID := r.URL.Query().Get("groupID")
		player1 := r.URL.Query().Get("player1")
		player2 := r.URL.Query().Get("player2")
		if groupID == "" || player1 == "" || player2 == "" {
			http.Error(w, "groupID, player1 and player2 are required", http.StatusBadRequest)
			return
		}

		detail, err := aggregator.DetailedStats(groupID, player1, player2)
		if err != nil {
			log.Error("Failed to compute pairing stats", "group_id", groupID, "error", err)
			http.Error(w, "Failed to compute pairing stats", http.StatusInternalServerError)
			return
		}
		if detail == nil {
			http.Error(w, "Player not found", http.StatusNotFound)
			return
		}
		respondJSON(w, http.StatusOK, detail)
	}
}
