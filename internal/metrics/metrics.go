package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for AcquisitionAttempts
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected" // 데이터 품질 게이트 탈락
	OutcomeFailed   = "failed"
	OutcomeCacheHit = "cache_hit"
)

var (
	AcquisitionAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "corrscan_acquisition_attempts_total",
		Help: "Series acquisition attempts by source, candidate kind and outcome",
	}, []string{"source", "kind", "outcome"})

	SymbolsAcquired = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "corrscan_symbols_acquired_total",
		Help: "Symbols resolved per run by the phase that produced them",
	}, []string{"phase"})

	SymbolsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "corrscan_symbols_failed_total",
		Help: "Symbols for which no source produced a series",
	})

	PairResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "corrscan_pair_results_total",
		Help: "Pair results by timeframe and kind",
	}, []string{"timeframe", "kind"})

	PhaseDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "corrscan_phase_duration_seconds",
		Help:    "Duration of pipeline phases",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 14),
	}, []string{"phase"})

	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "corrscan_runs_total",
		Help: "Pipeline runs by status",
	}, []string{"status"})

	LastRunTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "corrscan_last_run_timestamp_seconds",
		Help: "Unix time of the last completed run",
	})
)
