// Copyright 2025 NetApp, Inc. All Rights Reserved.

package mutation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jobloop/querycache/config"
)

const (
	outcomeCommitted      = "committed"
	outcomeRolledBack     = "rolled_back"
	outcomePrePatchFailed = "pre_patch_failed"
)

var (
	mutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.OrchestratorName,
			Name:      "mutations_total",
			Help:      "Finished mutations by outcome",
		},
		[]string{"outcome"},
	)
	mutationDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.OrchestratorName,
			Name:      "mutation_duration_seconds",
			Help:      "Time from the first optimistic patch to resolution, by outcome",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)
	mutationPatchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: config.OrchestratorName,
			Name:      "mutation_patches_total",
			Help:      "Optimistic patches applied to the cache",
		},
	)
	mutationsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: config.OrchestratorName,
			Name:      "mutations_in_flight",
			Help:      "Mutations waiting on their remote operation",
		},
	)
)
