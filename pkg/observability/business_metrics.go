package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Subscription lifecycle metrics
	subscriptionTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "subscription_transitions_total",
		Help: "Total number of subscription status transitions",
	}, []string{
		"from_status", // active, paused
		"to_status",   // active, paused, cancelled
	})

	subscriptionsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "subscriptions_created_total",
		Help: "Total number of subscriptions created",
	})

	renewalEventsProcessedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "renewal_events_processed_total",
		Help: "Total number of renewal events marked as processed",
	})
)

// RecordSubscriptionCreated increments the subscription creation counter.
func RecordSubscriptionCreated() {
	subscriptionsCreatedTotal.Inc()
}

// RecordSubscriptionTransition records a status transition.
func RecordSubscriptionTransition(from, to string) {
	subscriptionTransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordRenewalProcessed increments the processed renewal counter.
func RecordRenewalProcessed() {
	renewalEventsProcessedTotal.Inc()
}
