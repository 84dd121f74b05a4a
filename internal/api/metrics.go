package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	allocationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spendr_allocations_total",
			Help: "Total number of budget allocations computed",
		},
		[]string{"kind", "industry"},
	)

	allocationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spendr_allocation_failures_total",
			Help: "Total number of allocation requests rejected",
		},
		[]string{"kind", "reason"},
	)

	adScoresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spendr_ad_scores_total",
			Help: "Total number of ad texts scored",
		},
		[]string{"source", "band"},
	)

	computeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "spendr_compute_duration_seconds",
			Help:    "Duration of allocation and scoring computations in seconds",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
		},
		[]string{"operation"},
	)

	streamClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "spendr_stream_clients",
			Help: "Number of connected ad scoring websocket clients",
		},
	)

	historyWriteFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spendr_history_write_failures_total",
			Help: "Total number of run history rows that failed to persist",
		},
		[]string{"table"},
	)
)
