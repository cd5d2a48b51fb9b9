package checkout

import "github.com/prometheus/client_golang/prometheus"

var (
	sessionsEnteredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "returnguard",
		Subsystem: "checkout",
		Name:      "sessions_entered_total",
		Help:      "Checkout entries that started an assessment.",
	})

	staleResultsDiscarded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "returnguard",
		Subsystem: "checkout",
		Name:      "stale_assessments_discarded_total",
		Help:      "Assessment results discarded because a newer request superseded them.",
	})

	selectionResetsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "returnguard",
		Subsystem: "checkout",
		Name:      "selection_resets_total",
		Help:      "Payment selections reset because the method became ineligible.",
	})

	ordersPlacedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "returnguard",
		Subsystem: "checkout",
		Name:      "orders_placed_total",
		Help:      "Orders placed by payment method.",
	}, []string{"method"})
)

func init() {
	prometheus.MustRegister(sessionsEnteredTotal, staleResultsDiscarded, selectionResetsTotal, ordersPlacedTotal)
}
