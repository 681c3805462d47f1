package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the notification pipeline metrics.
type Metrics struct {
	NotificationsSent       *prometheus.CounterVec
	NotificationsSuppressed prometheus.Counter
	TokensMissing           prometheus.Counter
	DeliveryErrors          *prometheus.CounterVec
	HandlerDuration         *prometheus.HistogramVec
}

// New creates the metric set without registering it, so tests can build
// as many instances as they need. Callers register via Collectors().
func New(namespace string) *Metrics {
	return &Metrics{
		NotificationsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_sent_total",
			Help:      "Total number of notifications handed to the push platform",
		}, []string{"type", "mode"}),
		NotificationsSuppressed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_suppressed_total",
			Help:      "Notifications suppressed because the recipient was viewing the chat room",
		}),
		TokensMissing: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "device_tokens_missing_total",
			Help:      "Recipients skipped because no device token was registered",
		}),
		DeliveryErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivery_errors_total",
			Help:      "Fetch or send failures swallowed by the handlers",
		}, []string{"type"}),
		HandlerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "handler_duration_seconds",
			Help:      "Time spent inside one handler invocation",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"handler"}),
	}
}

// Collectors returns everything to register with a prometheus registry.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.NotificationsSent,
		m.NotificationsSuppressed,
		m.TokensMissing,
		m.DeliveryErrors,
		m.HandlerDuration,
	}
}
