package risk

import "github.com/prometheus/client_golang/prometheus"

var (
	assessmentsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "returnguard",
		Subsystem: "risk",
		Name:      "assessments_total",
		Help:      "Assessments returned to the checkout core, by source and level.",
	}, []string{"source", "level"})

	fallbacksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "returnguard",
		Subsystem: "risk",
		Name:      "fallbacks_total",
		Help:      "Local fallback substitutions by upstream failure reason.",
	}, []string{"reason"})

	upstreamLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "returnguard",
		Subsystem: "risk",
		Name:      "upstream_duration_seconds",
		Help:      "Latency of get-risk-score calls, successful or not.",
		Buckets:   prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(assessmentsTotal, fallbacksTotal, upstreamLatency)
}
