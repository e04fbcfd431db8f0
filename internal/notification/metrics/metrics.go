package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for notification fan-out.
type Metrics struct {
	Created         *prometheus.CounterVec
	Skipped         *prometheus.CounterVec
	PublishFailures prometheus.Counter
}

// New creates a new Metrics instance with all notification metrics registered.
func New() *Metrics {
	return &Metrics{
		Created: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "slf_notifications_created_total",
			Help: "Notifications persisted, by type",
		}, []string{"type"}),
		Skipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "slf_notifications_skipped_total",
			Help: "Transitions that produced no notification, by reason",
		}, []string{"reason"}),
		PublishFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "slf_notifications_publish_failures_total",
			Help: "Persisted notifications that could not be handed to the broker",
		}),
	}
}

func (m *Metrics) IncrementCreated(kind string) {
	m.Created.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncrementSkipped(reason string) {
	m.Skipped.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncrementPublishFailure() {
	m.PublishFailures.Inc()
}
