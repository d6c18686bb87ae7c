package isdayoff

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "payday",
	Subsystem: "isdayoff",
	Name:      "request_duration_seconds",
	Help:      "isdayoff.ru request latency including retries, by endpoint and outcome.",
	Buckets:   prometheus.DefBuckets,
}, []string{"endpoint", "outcome"})
