package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Transition engine metrics
	TransitionsTotal  *prometheus.CounterVec
	TransitionLatency prometheus.Histogram

	// Consumer metrics
	EventsConsumed   *prometheus.CounterVec
	EventsRequeued   prometheus.Counter
	ConsumerRestarts prometheus.Counter

	// Publisher metrics
	EventsPublished      *prometheus.CounterVec
	PublishFailures      prometheus.Counter
	NotificationFailures prometheus.Counter

	// Database metrics
	DatabaseOperations *prometheus.CounterVec
	DatabaseLatency    *prometheus.HistogramVec
}

// New creates and registers all application metrics
func New(namespace string) *Metrics {
	return &Metrics{
		TransitionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_transitions_total",
			Help:      "Total number of status transition attempts",
		}, []string{"source", "result"}),
		TransitionLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "status_transition_duration_seconds",
			Help:      "Time spent applying status transitions",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}),
		EventsConsumed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_consumed_total",
			Help:      "Total number of broker events consumed",
		}, []string{"event_type", "disposition"}),
		EventsRequeued: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_requeued_total",
			Help:      "Total number of events re-queued for redelivery",
		}),
		ConsumerRestarts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "consumer_restarts_total",
			Help:      "Total number of consumer subscription restarts",
		}),
		EventsPublished: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Total number of events published to the broker",
		}, []string{"routing_key"}),
		PublishFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_failures_total",
			Help:      "Total number of failed broker publishes",
		}),
		NotificationFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_failures_total",
			Help:      "Total number of failed terminal-status notifications",
		}),
		DatabaseOperations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "database_operations_total",
			Help:      "Total number of database operations",
		}, []string{"operation", "status"}),
		DatabaseLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "database_operation_duration_seconds",
			Help:      "Duration of database operations",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
	}
}

// NewForTesting builds metrics on a private registry so parallel tests do
// not collide on the default registerer.
func NewForTesting() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		TransitionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "status_transitions_total",
		}, []string{"source", "result"}),
		TransitionLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name: "status_transition_duration_seconds",
		}),
		EventsConsumed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "events_consumed_total",
		}, []string{"event_type", "disposition"}),
		EventsRequeued: factory.NewCounter(prometheus.CounterOpts{
			Name: "events_requeued_total",
		}),
		ConsumerRestarts: factory.NewCounter(prometheus.CounterOpts{
			Name: "consumer_restarts_total",
		}),
		EventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "events_published_total",
		}, []string{"routing_key"}),
		PublishFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "publish_failures_total",
		}),
		NotificationFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "notification_failures_total",
		}),
		DatabaseOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "database_operations_total",
		}, []string{"operation", "status"}),
		DatabaseLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name: "database_operation_duration_seconds",
		}, []string{"operation"}),
	}
}
