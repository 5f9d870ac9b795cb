package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AppointmentsScheduled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "appointments_scheduled_total",
		Help: "Appointments successfully written to both owner records.",
	})
	SlotConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "appointment_slot_conflicts_total",
		Help: "Scheduling attempts rejected because the slot was taken.",
	})
	PartialWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "appointment_partial_write_failures_total",
		Help: "Dual-write sequences that failed after the first write.",
	})
	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "login_attempts_total",
		Help: "First-factor login attempts by outcome.",
	}, []string{"outcome"})
	CodesIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "second_factor_codes_issued_total",
		Help: "One-time codes generated and dispatched.",
	})
)

// Handler returns an http.Handler for Prometheus scraping
func Handler() http.Handler {
	return promhttp.Handler()
}
