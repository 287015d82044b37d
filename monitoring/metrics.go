package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	connectionSwitches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_connection_switches_total",
			Help: "Connection manager transitions by target state",
		},
		[]string{"to"},
	)

	cartOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_operations_total",
			Help: "Cart operations by type and outcome",
		},
		[]string{"operation", "status"},
	)

	eventCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_cache_lookups_total",
			Help: "Event cache lookups by layer and result",
		},
		[]string{"layer", "result"},
	)

	checkoutsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "checkouts_completed_total",
			Help: "Successfully completed checkouts",
		},
	)
)

// TrackConnectionSwitch records a connection manager transition.
func TrackConnectionSwitch(to string) {
	connectionSwitches.WithLabelValues(to).Inc()
}

// TrackCartOperation records one cart operation outcome.
func TrackCartOperation(operation, status string) {
	cartOperations.WithLabelValues(operation, status).Inc()
}

// TrackCacheLookup records an event cache lookup. layer is "memory" or
// "durable"; result is "hit", "miss" or "expired".
func TrackCacheLookup(layer, result string) {
	eventCacheLookups.WithLabelValues(layer, result).Inc()
}

// TrackCheckout records a completed checkout.
func TrackCheckout() {
	checkoutsCompleted.Inc()
}
