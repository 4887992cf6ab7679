// Copyright 2025 NetApp, Inc. All Rights Reserved.

package invalidation

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobloop/querycache/core/cache"
)

func TestRouter_Invalidate(t *testing.T) {
	c := cache.NewQueryCache()
	jobs := cache.MustQueryKey("getJobs", map[string]any{"userId": "u1"})
	stats := cache.MustQueryKey("getPipelineStats", map[string]any{"userId": "u1"})
	missing := cache.MustQueryKey("getLoops", map[string]any{"userId": "u1"})
	c.Set(jobs, []string{"A"})
	c.Set(stats, map[string]any{"applied": 1.0})

	markedBefore := testutil.ToFloat64(invalidationsTotal.WithLabelValues(resultMarked))
	absentBefore := testutil.ToFloat64(invalidationsTotal.WithLabelValues(resultAbsent))

	r := NewRouter(c)
	assert.Equal(t, 2, r.Invalidate(context.Background(), []cache.QueryKey{jobs, stats, missing}))

	for _, key := range []cache.QueryKey{jobs, stats} {
		entry, ok := c.Get(key)
		require.True(t, ok)
		assert.True(t, entry.Stale)
		assert.Equal(t, uint64(1), entry.Version, "invalidation does not touch the value")
	}
	_, ok := c.Get(missing)
	assert.False(t, ok, "invalidating an absent key must not create it")

	assert.Equal(t, markedBefore+2, testutil.ToFloat64(invalidationsTotal.WithLabelValues(resultMarked)))
	assert.Equal(t, absentBefore+1, testutil.ToFloat64(invalidationsTotal.WithLabelValues(resultAbsent)))
}

func TestRouter_InvalidateEmpty(t *testing.T) {
	r := NewRouter(cache.NewQueryCache())

	assert.Equal(t, 0, r.Invalidate(context.Background(), nil))
	assert.Equal(t, 0, r.Invalidate(nil, []cache.QueryKey{cache.MustQueryKey("getJobs", nil)}))
}

func TestRouter_InvalidateOperation(t *testing.T) {
	c := cache.NewQueryCache()
	open := cache.MustQueryKey("getJobs", map[string]any{"userId": "u1", "status": "open"})
	all := cache.MustQueryKey("getJobs", map[string]any{"userId": "u1"})
	loops := cache.MustQueryKey("getLoops", map[string]any{"userId": "u1"})
	for _, k := range []cache.QueryKey{open, all, loops} {
		c.Set(k, nil)
	}

	r := NewRouter(c)
	assert.Equal(t, 2, r.InvalidateOperation(context.Background(), "getJobs"))

	entry, _ := c.Get(loops)
	assert.False(t, entry.Stale)
	entry, _ = c.Get(open)
	assert.True(t, entry.Stale)
}
