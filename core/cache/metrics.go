// Copyright 2025 NetApp, Inc. All Rights Reserved.

package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jobloop/querycache/config"
)

const (
	opSet       = "set"
	opPatch     = "patch"
	opRestore   = "restore"
	opMarkStale = "mark_stale"
	opEvict     = "evict"
	opBegin     = "begin"
	opFail      = "fail"
)

var (
	entriesGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: config.OrchestratorName,
			Subsystem: "cache",
			Name:      "entries",
			Help:      "The number of query results held in the cache",
		},
	)
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.OrchestratorName,
			Subsystem: "cache",
			Name:      "operations_total",
			Help:      "Cache writes by operation",
		},
		[]string{"operation"},
	)
)
