package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "teatroqr"

// Registry holds every metric the service exposes on /metrics.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Registration and door metrics.
var (
	// RegistrationsTotal counts registration attempts by outcome (ok, duplicate, work_not_found, invalid, error).
	RegistrationsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Attendee registrations by outcome",
		},
		[]string{"outcome"},
	)

	// NotificationsTotal counts QR emails by result (sent, failed).
	NotificationsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "qr_notifications_total",
			Help:      "QR code emails by delivery result",
		},
		[]string{"result"},
	)

	// ValidationsTotal counts door validations by outcome.
	ValidationsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validations_total",
			Help:      "QR validations by outcome",
		},
		[]string{"outcome"},
	)
)
