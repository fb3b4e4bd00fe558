package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "claims_http_requests_total",
		Help: "HTTP requests processed, by method, route and status class.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "claims_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	EscalationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "claims_compliance_escalations_total",
		Help: "Escalation ladder steps applied by the consequence sweep, by tier.",
	}, []string{"tier"})

	RemindersSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "claims_compliance_reminders_sent_total",
		Help: "Deadline reminder notifications sent.",
	})

	SweepRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "claims_consequence_sweep_runs_total",
		Help: "Consequence sweep executions, by outcome.",
	}, []string{"outcome"})
)
