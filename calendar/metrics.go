package calendar

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "payday",
		Subsystem: "calendar",
		Name:      "cache_lookups_total",
		Help:      "Working-day lookups by result (hit, miss).",
	}, []string{"result"})

	monthLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "payday",
		Subsystem: "calendar",
		Name:      "month_loads_total",
		Help:      "Months fanned out into the cache by source (provider, store, heuristic).",
	}, []string{"source"})

	heuristicFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "payday",
		Subsystem: "calendar",
		Name:      "heuristic_fallbacks_total",
		Help:      "Days classified by the weekend heuristic after a provider failure.",
	})
)
