// Copyright 2025 NetApp, Inc. All Rights Reserved.

package invalidation

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jobloop/querycache/config"
	"github.com/jobloop/querycache/core/cache"
	. "github.com/jobloop/querycache/logging"
)

const (
	resultMarked = "marked"
	resultAbsent = "absent"
)

var invalidationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: config.OrchestratorName,
		Subsystem: "invalidation",
		Name:      "total",
		Help:      "Invalidation requests by outcome",
	},
	[]string{"result"},
)

// Cache is the part of the query cache the router needs.
type Cache interface {
	MarkStale(key cache.QueryKey) bool
	KeysForOperation(operation string) []cache.QueryKey
}

// Router marks query results stale after a committed mutation so the read path refetches them.
// It never fails: keys that are not cached are skipped.
type Router struct {
	cache Cache
}

func NewRouter(c Cache) *Router {
	return &Router{cache: c}
}

// Invalidate marks every cached key in keys stale and returns how many were marked.
func (r *Router) Invalidate(ctx context.Context, keys []cache.QueryKey) int {
	ctx = WithLogLayer(ctx, LogLayerInvalidation)

	marked := 0
	for _, key := range keys {
		if r.cache.MarkStale(key) {
			marked++
			invalidationsTotal.WithLabelValues(resultMarked).Inc()
			continue
		}
		invalidationsTotal.WithLabelValues(resultAbsent).Inc()
		Logc(ctx).WithField("key", key.String()).Trace("Invalidated key is not cached.")
	}

	if len(keys) > 0 {
		Logc(ctx).WithFields(LogFields{
			"requested": len(keys),
			"marked":    marked,
		}).Debug("Invalidated queries.")
	}
	return marked
}

// InvalidateOperation marks every cached key of an operation stale, whatever its arguments.
func (r *Router) InvalidateOperation(ctx context.Context, operation string) int {
	return r.Invalidate(ctx, r.cache.KeysForOperation(operation))
}
