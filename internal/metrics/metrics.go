// Package metrics exposes Prometheus instruments for content generation,
// XP awards and game completions.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ContentFetches counts provider requests by kind and outcome
	ContentFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "explorer_content_fetches_total",
			Help: "Content provider requests",
		},
		[]string{"kind", "outcome"}, // outcome: success/failure
	)

	ContentFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "explorer_content_fetch_duration_seconds",
			Help:    "Time spent waiting for the content provider",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"kind"},
	)

	// FallbackRounds counts play-throughs served from built-in content
	FallbackRounds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "explorer_fallback_rounds_total",
			Help: "Games started with built-in rounds",
		},
		[]string{"kind"},
	)

	XPAwarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "explorer_xp_awarded_total",
			Help: "XP awarded by source",
		},
		[]string{"source"},
	)

	GamesCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "explorer_games_completed_total",
			Help: "Finished mini-game play-throughs",
		},
		[]string{"game"},
	)

	PlayerLevel = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "explorer_player_level",
			Help: "Current player level",
		},
	)

	RealtimeClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "explorer_realtime_clients",
			Help: "Connected websocket clients",
		},
	)
)

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
