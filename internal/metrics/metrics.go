// Package metrics registers the Prometheus counters exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CheckoutsInitiated counts checkout sessions created with the
	// payment provider.
	CheckoutsInitiated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "saabal_checkouts_initiated_total",
		Help: "Number of payment checkout sessions initiated.",
	})

	// IPNEvents counts received IPN deliveries by outcome.
	IPNEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "saabal_ipn_events_total",
		Help: "Number of payment IPN events received, by outcome.",
	}, []string{"outcome"})

	// SubscriptionsGranted counts subscriptions created from confirmed
	// payments.
	SubscriptionsGranted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "saabal_subscriptions_granted_total",
		Help: "Number of subscriptions granted by confirmed payments.",
	})
)
