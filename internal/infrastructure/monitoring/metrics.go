// Package monitoring provides Prometheus metrics for the application.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Analysis and chat outcome labels.
const (
	OutcomeIdentified   = "identified"
	OutcomeUnidentified = "unidentified"
	OutcomeQuota        = "quota"
	OutcomeBilling      = "billing"
	OutcomeError        = "error"
	OutcomeReply        = "reply"
	OutcomeUpdated      = "recipe_updated"
)

// KitchenMetrics tracks the conversational core's request outcomes.
type KitchenMetrics struct {
	AnalysisRequests *prometheus.CounterVec
	ChatRequests     *prometheus.CounterVec
	RateLimited      prometheus.Counter
	LimiterActivated prometheus.Counter
}

// NewKitchenMetrics registers the kitchen metrics on the given
// registerer (nil uses the default registry).
func NewKitchenMetrics(reg prometheus.Registerer) *KitchenMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &KitchenMetrics{
		AnalysisRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kasalo",
			Subsystem: "kitchen",
			Name:      "analysis_requests_total",
			Help:      "Dish analysis requests by outcome.",
		}, []string{"outcome"}),
		ChatRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kasalo",
			Subsystem: "kitchen",
			Name:      "chat_requests_total",
			Help:      "Conversation turns by outcome.",
		}, []string{"outcome"}),
		RateLimited: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "kasalo",
			Subsystem: "kitchen",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the client-side rate limiter.",
		}),
		LimiterActivated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "kasalo",
			Subsystem: "kitchen",
			Name:      "limiter_activations_total",
			Help:      "Sessions whose rate limiter entered constrained mode.",
		}),
	}
}
