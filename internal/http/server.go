package http

import (
	"net/http"
	"time"

	"github.com/crosscourt/shuttletrack/internal/club"
	"github.com/crosscourt/shuttletrack/internal/config"
	"github.com/crosscourt/shuttletrack/internal/http/handlers"
	"github.com/crosscourt/shuttletrack/internal/metrics"
	"github.com/crosscourt/shuttletrack/internal/notifier"
	"github.com/crosscourt/shuttletrack/internal/pairing"
	"github.com/crosscourt/shuttletrack/internal/pubsub"
	"github.com/crosscourt/shuttletrack/internal/stats"
)

// recalcCooldown bounds how often one group's pairing aggregates may be
// rebuilt through the manual endpoint.
const recalcCooldown = 5 * time.Minute

func NewServer(store club.ClubStore, statsAgg *stats.Aggregator, pairingAgg *pairing.Aggregator, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config, notifier notifier.Notifier, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Store:          store,
		Stats:          statsAgg,
		Pairings:       pairingAgg,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Notifier:       notifier,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
		recalcLimiter:  handlers.NewRateLimiter(recalcCooldown),
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// This makes it easy to add more middlewares in the future, like an authentication middleware.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(handlers.HealthCheckHandler(s.Store), paramsMiddleware))

	s.Router.Handle("POST /groups", Chain(handlers.CreateGroupHandler(s.Store), paramsMiddleware))
	s.Router.Handle("GET /groups", Chain(handlers.ListGroupsHandler(s.Store), paramsMiddleware))
	s.Router.Handle("DELETE /groups", Chain(handlers.DeleteGroupHandler(s.Store), paramsMiddleware))
	s.Router.Handle("GET /players", Chain(handlers.ListGroupPlayersHandler(s.Store), paramsMiddleware))
	s.Router.Handle("POST /players/promote", Chain(handlers.PromotePlayerHandler(s.Store), paramsMiddleware))

	s.Router.Handle("POST /sessions", Chain(handlers.CreateSessionHandler(s.Store), paramsMiddleware))
	s.Router.Handle("GET /sessions", Chain(handlers.ListSessionsHandler(s.Store), paramsMiddleware))
	s.Router.Handle("GET /sessions/cost", Chain(handlers.SessionCostHandler(s.Store), paramsMiddleware))

	s.Router.Handle("GET /games", Chain(handlers.ListGamesHandler(s.Store, s.Metrics), paramsMiddleware))
	s.Router.Handle("POST /games/result", Chain(handlers.RecordResultHandler(s.Store, s.Metrics, s.pubsub), paramsMiddleware))

	s.Router.Handle("GET /leaderboard", Chain(handlers.LeaderboardHandler(s.Stats, s.Metrics), paramsMiddleware))
	s.Router.Handle("GET /players/stats", Chain(handlers.PlayerStatsHandler(s.Stats), paramsMiddleware))

	s.Router.Handle("POST /pairings/recalculate", Chain(handlers.RecalculatePairingsHandler(s.Pairings, s.recalcLimiter, s.Metrics), paramsMiddleware))
	s.Router.Handle("GET /pairings/leaderboard", Chain(handlers.PairingLeaderboardHandler(s.Pairings), paramsMiddleware))
	s.Router.Handle("GET /pairings/partners", Chain(handlers.PartnerStatsHandler(s.Pairings), paramsMiddleware))
	s.Router.Handle("GET /pairings/stats", Chain(handlers.PairingStatsHandler(s.Pairings), paramsMiddleware))

	s.Router.Handle("POST /pubsub/recalc-pairings", Chain(handlers.RecalcPairingsPushHandler(s.Pairings, s.pubsub, s.Metrics), paramsMiddleware))
	s.Router.Handle("POST /pubsub/notify-result", Chain(handlers.NotifyResultPushHandler(s.Store, s.Notifier, s.pubsub), paramsMiddleware))

	s.Router.Handle("POST /slack/command/leaderboard", Chain(handlers.LeaderboardCommandHandler(s.Stats, s.Notifier, s.Metrics), paramsMiddleware))
	s.Router.Handle("POST /slack/command/player-stats", Chain(handlers.PlayerStatsCommandHandler(s.Store, s.Stats, s.Notifier), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
