// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RoomsActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tabletop_rooms_active",
			Help: "Rooms currently held in the registry",
		},
		[]string{"game"},
	)
	MovesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tabletop_moves_total",
			Help: "Actions accepted by a game engine",
		},
		[]string{"game", "actor"},
	)
	RejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tabletop_moves_rejected_total",
			Help: "Actions rejected by a game engine, by rule code",
		},
		[]string{"game", "code"},
	)
	MatchesFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tabletop_matches_finished_total",
			Help: "Matches that reached a terminal state, by how they ended",
		},
		[]string{"game", "reason"},
	)
	Rematches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tabletop_rematches_total",
			Help: "Rematch votes by outcome",
		},
		[]string{"game", "outcome"},
	)
	BotSearchSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tabletop_bot_search_seconds",
			Help:    "Wall-clock time spent choosing a bot move",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2, 5},
		},
		[]string{"game"},
	)
	SocketsOpen = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tabletop_sockets_open",
			Help: "Open websocket connections",
		},
	)
)

func init() {
	prometheus.MustRegister(RoomsActive)
	prometheus.MustRegister(MovesTotal)
	prometheus.MustRegister(RejectedTotal)
	prometheus.MustRegister(MatchesFinished)
	prometheus.MustRegister(Rematches)
	prometheus.MustRegister(BotSearchSeconds)
	prometheus.MustRegister(SocketsOpen)
}
