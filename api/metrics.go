package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	scheduleRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "payday",
		Subsystem: "api",
		Name:      "schedule_requests_total",
		Help:      "Schedule generations by outcome (ok, rejected, error).",
	}, []string{"outcome"})

	warmRuns = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "payday",
		Subsystem: "api",
		Name:      "calendar_warm_runs_total",
		Help:      "Completed calendar warm-up passes.",
	})
)
