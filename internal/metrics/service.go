package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		GamesRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shuttle_games_recorded_total",
			Help: "The total number of game results recorded.",
		}),
		LeaderboardsComputed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shuttle_leaderboards_computed_total",
			Help: "The total number of leaderboard aggregations performed.",
		}),
		RecalcRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shuttle_pairing_recalc_runs_total",
			Help: "The total number of pairing-stat rebuilds performed.",
		}),
		RecalcDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "shuttle_pairing_recalc_duration_seconds",
			Help:    "The duration of individual pairing-stat rebuilds.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		SkippedGames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shuttle_skipped_games_total",
			Help: "The total number of games skipped due to malformed team data.",
		}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shuttle_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shuttle_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "shuttle_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.GamesRecorded,
		s.LeaderboardsComputed,
		s.RecalcRuns,
		s.RecalcDuration,
		s.SkippedGames,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncGamesRecorded() {
	s.GamesRecorded.Inc()
}

func (s *Service) IncLeaderboardsComputed() {
	s.LeaderboardsComputed.Inc()
}

func (s *Service) IncRecalcRuns() {
	s.RecalcRuns.Inc()
}

func (s *Service) ObserveRecalcDuration(duration float64) {
	s.RecalcDuration.Observe(duration)
}

func (s *Service) AddSkippedGames(count int) {
	if count > 0 {
		s.SkippedGames.Add(float64(count))
	}
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
