package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	EndpointLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "stocksight",
			Subsystem: "api",
			Name:      "latency_seconds",
			Help:      "Latency of insight endpoints",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	EndpointErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stocksight",
			Subsystem: "api",
			Name:      "errors_total",
			Help:      "Errors by insight endpoint",
		},
		[]string{"endpoint"},
	)

	AlertsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stocksight",
			Subsystem: "api",
			Name:      "alerts_published_total",
			Help:      "Crossover alerts published from signal reports",
		},
		[]string{"type", "outcome"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(EndpointLatency, EndpointErrors, AlertsPublished)
	})
}
