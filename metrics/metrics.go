// Package metrics holds the prometheus collectors of the service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "courtsched"

type Metrics struct {
	bookingAttempts    *prometheus.CounterVec
	evaluationDuration prometheus.Histogram
	schedulerCalls     *prometheus.CounterVec
	schedulesApproved  prometheus.Counter
	postCommitFailures *prometheus.CounterVec
}

// New registers every collector on reg. Passing nil skips registration, which tests use.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		bookingAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_attempts_total",
			Help:      "Booking requests by outcome (created, overlap, invalid).",
		}, []string{"outcome"}),
		evaluationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "schedule_evaluation_seconds",
			Help:      "Time spent evaluating a proposed schedule.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		schedulerCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduler_calls_total",
			Help:      "Calls to the external scheduling service by outcome.",
		}, []string{"outcome"}),
		schedulesApproved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schedules_approved_total",
			Help:      "Schedules persisted after review.",
		}),
		postCommitFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "post_commit_failures_total",
			Help:      "Failed side effects after a schedule was saved, by step.",
		}, []string{"step"}),
	}
	if reg != nil {
		reg.MustRegister(m.bookingAttempts, m.evaluationDuration, m.schedulerCalls, m.schedulesApproved, m.postCommitFailures)
	}
	return m
}

func (m *Metrics) BookingAttempt(outcome string) {
	m.bookingAttempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveEvaluation(d time.Duration) {
	m.evaluationDuration.Observe(d.Seconds())
}

func (m *Metrics) SchedulerCall(outcome string) {
	m.schedulerCalls.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ScheduleApproved() {
	m.schedulesApproved.Inc()
}

func (m *Metrics) PostCommitFailure(step string) {
	m.postCommitFailures.WithLabelValues(step).Inc()
}
