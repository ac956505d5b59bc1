package consumer

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ThreeDotsLabs/watermill/components/metrics"
)

var (
	eventsProjected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fanout",
		Name:      "events_projected_total",
		Help:      "Events successfully projected into the role's store.",
	}, []string{"role", "topic"})

	decodeFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fanout",
		Name:      "decode_failures_total",
		Help:      "Messages dropped because the payload was not valid JSON.",
	}, []string{"role", "topic"})

	projectionFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fanout",
		Name:      "projection_failures_total",
		Help:      "Messages dropped after a failed projection write.",
	}, []string{"role", "topic"})
)

func init() {
	prometheus.MustRegister(eventsProjected, decodeFailures, projectionFailures)
}

// registerMetrics attaches Watermill's Prometheus router metrics when the
// metrics endpoint is enabled. Disabled routers skip registration so tests can
// build many consumers against the default registerer.
func (c *Consumer) registerMetrics() {
	if c.conf.MetricsPort <= 0 {
		return
	}
	builder := metrics.NewPrometheusMetricsBuilder(
		prometheus.DefaultRegisterer,
		"fanout",
		c.roleLabel,
	)
	builder.AddPrometheusRouterMetrics(c.router)
}
