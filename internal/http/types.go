package http

import (
	"net/http"

	"github.com/crosscourt/shuttletrack/internal/club"
	"github.com/crosscourt/shuttletrack/internal/config"
	"github.com/crosscourt/shuttletrack/internal/http/handlers"
	"github.com/crosscourt/shuttletrack/internal/metrics"
	"github.com/crosscourt/shuttletrack/internal/notifier"
	"github.com/crosscourt/shuttletrack/internal/pairing"
	"github.com/crosscourt/shuttletrack/internal/pubsub"
	"github.com/crosscourt/shuttletrack/internal/stats"
)

type Server struct {
	Store          club.ClubStore
	Stats          *stats.Aggregator
	Pairings       *pairing.Aggregator
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Notifier       notifier.Notifier
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
	recalcLimiter  *handlers.RateLimiter
}
