package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HubMetrics tracks the websocket hub: how many subscribers are live,
// what gets broadcast, and how many sends were dropped on dead or
// stalled connections.
type HubMetrics struct {
	ActiveConnections prometheus.Gauge
	EventsBroadcast   *prometheus.CounterVec
	DroppedSends      prometheus.Counter
}

func NewHubMetrics(reg prometheus.Registerer) *HubMetrics {
	factory := promauto.With(reg)

	return &HubMetrics{
		ActiveConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "pollservice",
				Subsystem: "ws",
				Name:      "active_connections",
				Help:      "Number of currently registered websocket subscribers",
			},
		),
		EventsBroadcast: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pollservice",
				Subsystem: "ws",
				Name:      "events_broadcast_total",
				Help:      "Total number of events fanned out to subscribers",
			},
			[]string{"type"},
		),
		DroppedSends: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "pollservice",
				Subsystem: "ws",
				Name:      "dropped_sends_total",
				Help:      "Total number of subscribers dropped during a broadcast pass",
			},
		),
	}
}
