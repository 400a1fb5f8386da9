package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// ReportGeneratedTotal counts report requests by outcome
	// (ok, empty, user_error, aggregate_error, render_error).
	ReportGeneratedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "haircarelog",
		Subsystem: "report",
		Name:      "generated_total",
		Help:      "Total number of 30-day report generations, labeled by result.",
	}, []string{"result"})

	ReportRenderDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "haircarelog",
		Subsystem: "report",
		Name:      "render_duration_seconds",
		Help:      "Time spent rendering a report document.",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	})

	ReportEmailTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "haircarelog",
		Subsystem: "report",
		Name:      "email_total",
		Help:      "Total number of report emails handed to the mail provider, labeled by result.",
	}, []string{"result"})

	ReminderSentTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "haircarelog",
		Subsystem: "reminder",
		Name:      "sent_total",
		Help:      "Total number of daily reminder emails, labeled by result (sent, skipped, error).",
	}, []string{"result"})
)

// Register registers the service metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			ReportGeneratedTotal,
			ReportRenderDurationSeconds,
			ReportEmailTotal,
			ReminderSentTotal,
		)
	})
}
