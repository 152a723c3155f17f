package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors that report bot and sweep activity.
type Metrics struct {
	inbound       *prometheus.CounterVec
	transitions   *prometheus.CounterVec
	deliveryFails *prometheus.CounterVec
	deferred      prometheus.Counter
	sweepDuration prometheus.Histogram
}

// MustNew constructs a Metrics instance registered with reg.
// Registration errors panic, mirroring promauto.
func MustNew(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		inbound: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "nudge",
				Subsystem: "bot",
				Name:      "inbound_messages_total",
				Help:      "Inbound messages by the intent that handled them.",
			},
			[]string{"intent"},
		),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "nudge",
				Subsystem: "sweep",
				Name:      "transitions_total",
				Help:      "Reminder status transitions performed by the sweep.",
			},
			[]string{"pass"},
		),
		deliveryFails: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "nudge",
				Subsystem: "sweep",
				Name:      "delivery_failures_total",
				Help:      "Notifier calls that failed and were left for the next sweep.",
			},
			[]string{"pass", "channel"},
		),
		deferred: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "nudge",
				Subsystem: "sweep",
				Name:      "escalations_deferred_total",
				Help:      "Due escalations skipped because of quiet hours.",
			},
		),
		sweepDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "nudge",
				Subsystem: "sweep",
				Name:      "duration_seconds",
				Help:      "Wall time of one sweep.",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}
	reg.MustRegister(m.inbound, m.transitions, m.deliveryFails, m.deferred, m.sweepDuration)
	return m
}

// Nop returns metrics registered with a private registry.
func Nop() *Metrics {
	return MustNew(prometheus.NewRegistry())
}

// Inbound counts one handled message.
func (m *Metrics) Inbound(intent string) {
	m.inbound.WithLabelValues(intent).Inc()
}

// Transition counts one status change made by pass.
func (m *Metrics) Transition(pass string) {
	m.transitions.WithLabelValues(pass).Inc()
}

// DeliveryFailed counts one failed notifier call.
func (m *Metrics) DeliveryFailed(pass, channel string) {
	m.deliveryFails.WithLabelValues(pass, channel).Inc()
}

// EscalationDeferred counts one escalation skipped in quiet hours.
func (m *Metrics) EscalationDeferred() {
	m.deferred.Inc()
}

// ObserveSweep records how long a sweep took.
func (m *Metrics) ObserveSweep(seconds float64) {
	m.sweepDuration.Observe(seconds)
}
