package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors exposed on /metrics.
type Metrics struct {
	ActiveSessions   prometheus.Gauge
	ConnectedClients prometheus.Gauge
	CommandsTotal    *prometheus.CounterVec
	CommandsRejected *prometheus.CounterVec
	GamesFinished    *prometheus.CounterVec
	CommandDuration  prometheus.Histogram
}

// New registers and returns the server metrics under namespace.
func New(namespace string) *Metrics {
	m := &Metrics{
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of game sessions held in memory",
		}),
		ConnectedClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connected_clients",
			Help:      "Number of connected websocket observers",
		}),
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Total moderator commands processed",
		}, []string{"command"}),
		CommandsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_rejected_total",
			Help:      "Moderator commands rejected by validation",
		}, []string{"command", "reason"}),
		GamesFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_finished_total",
			Help:      "Finished games by winning faction",
		}, []string{"winner"}),
		CommandDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Moderator command processing latency",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
	}

	prometheus.MustRegister(
		m.ActiveSessions,
		m.ConnectedClients,
		m.CommandsTotal,
		m.CommandsRejected,
		m.GamesFinished,
		m.CommandDuration,
	)

	return m
}

// Nop returns metrics that are never registered, for tests.
func Nop() *Metrics {
	return &Metrics{
		ActiveSessions:   prometheus.NewGauge(prometheus.GaugeOpts{Name: "nop_active_sessions"}),
		ConnectedClients: prometheus.NewGauge(prometheus.GaugeOpts{Name: "nop_connected_clients"}),
		CommandsTotal:    prometheus.NewCounterVec(prometheus.CounterOpts{Name: "nop_commands_total"}, []string{"command"}),
		CommandsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{Name: "nop_commands_rejected_total"}, []string{"command", "reason"}),
		GamesFinished:    prometheus.NewCounterVec(prometheus.CounterOpts{Name: "nop_games_finished_total"}, []string{"winner"}),
		CommandDuration:  prometheus.NewHistogram(prometheus.HistogramOpts{Name: "nop_command_duration_seconds"}),
	}
}
