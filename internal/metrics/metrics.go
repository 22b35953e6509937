package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesHandled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alina_messages_handled_total",
			Help: "Inbound messages by resolved intent",
		},
		[]string{"intent", "source"},
	)

	NotesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "alina_notes_created_total",
			Help: "Notes stored",
		},
	)

	RemindersScheduled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "alina_reminders_scheduled_total",
			Help: "Reminders stored and armed",
		},
	)

	RemindersDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alina_reminders_delivered_total",
			Help: "Reminders marked sent, by delivery path",
		},
		[]string{"path"},
	)

	DeliveryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alina_delivery_failures_total",
			Help: "Failed side effects during delivery",
		},
		[]string{"stage"},
	)

	ParseFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "alina_time_parse_failures_total",
			Help: "Reminder requests whose time could not be determined",
		},
	)

	ClassifierOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alina_classifier_outcomes_total",
			Help: "Fallback classifier results",
		},
		[]string{"intent"},
	)

	SweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "alina_sweep_duration_seconds",
			Help: "Duration of one recovery sweep",
		},
	)

	ArmedTimers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "alina_armed_timers",
			Help: "Reminder timers currently armed in memory",
		},
	)
)
