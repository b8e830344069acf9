package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes server gauges and counters on the status endpoint.
type Metrics struct {
	Sessions         prometheus.Gauge
	Channels         prometheus.Gauge
	ConnectionsTotal prometheus.Counter
	RefusedTotal     prometheus.Counter
	MessagesTotal    prometheus.Counter
}

// NewMetrics registers the server metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Sessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ircd_sessions",
			Help: "Number of currently accepted connections.",
		}),
		Channels: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ircd_channels",
			Help: "Number of currently open channels.",
		}),
		ConnectionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "ircd_connections_total",
			Help: "Total connections accepted.",
		}),
		RefusedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "ircd_connections_refused_total",
			Help: "Total connections refused because the server was full.",
		}),
		MessagesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "ircd_messages_total",
			Help: "Total PRIVMSG lines relayed.",
		}),
	}
}
