package businessflow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	visitorsRoutedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "distribution_visitors_routed_total",
		Help: "Visitors routed to a channel, labeled by channel slug and traffic source",
	}, []string{"channel", "source"})

	routingFallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "distribution_routing_fallbacks_total",
		Help: "Routing decisions served from the default channel list",
	})

	assignmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "distribution_assignments_total",
		Help: "Candidates assigned to channels, labeled by channel slug and mode (batch, auto)",
	}, []string{"channel", "mode"})

	quotaRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "distribution_quota_rejections_total",
		Help: "Batch assignments rejected by channel limits, labeled by limit kind",
	}, []string{"limit"})

	lifecycleTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "distribution_lifecycle_transitions_total",
		Help: "Candidate lifecycle transitions, labeled by transition and outcome",
	}, []string{"transition", "outcome"})

	assignmentsSweptTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "distribution_assignments_swept_total",
		Help: "Stale assignments released by the background sweeper",
	})
)
