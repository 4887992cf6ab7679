// Copyright 2025 NetApp, Inc. All Rights Reserved.

package core

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jobloop/querycache/config"
)

var buildInfo = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: config.OrchestratorName,
		Name:      "build_info",
		Help:      "Query layer build and release information",
	},
	[]string{"revision", "version", "build_type"},
)
