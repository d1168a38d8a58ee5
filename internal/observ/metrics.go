package observ

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every Prometheus instrument the server records.
//
// Instruments live on a struct (not package-level vars) for the same reason
// the session store and hub do: tests construct an isolated registry per test
// case instead of fighting over global registration.
type Metrics struct {
	Registry *prometheus.Registry

	APIRequests       *prometheus.CounterVec
	ActiveSessions    prometheus.Gauge
	ActiveConnections prometheus.Gauge
	BroadcastsSent    prometheus.Counter
	BroadcastsDropped prometheus.Counter
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		APIRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Name:      "api_requests_total",
			Help:      "API requests by method, route, and status.",
		}, []string{"method", "route", "status"}),

		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "portal",
			Name:      "active_sessions",
			Help:      "Sessions currently held in the session store.",
		}),

		ActiveConnections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "portal",
			Name:      "active_ws_connections",
			Help:      "Live websocket connections registered with the hub.",
		}),

		BroadcastsSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "portal",
			Name:      "broadcast_events_total",
			Help:      "Events delivered to websocket connections.",
		}),

		BroadcastsDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "portal",
			Name:      "broadcast_events_dropped_total",
			Help:      "Events dropped because a connection's send buffer was full.",
		}),
	}
}
