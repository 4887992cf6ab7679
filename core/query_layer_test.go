// Copyright 2025 NetApp, Inc. All Rights Reserved.

package core

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/jobloop/querycache/config"
	"github.com/jobloop/querycache/core/cache"
	"github.com/jobloop/querycache/core/mutation"
	mockmutation "github.com/jobloop/querycache/mocks/mock_core/mock_mutation"
	"github.com/jobloop/querycache/utils/errors"
)

var jobKey = cache.MustQueryKey("getJob", map[string]any{"id": "j1"})

func setStatus(status string) cache.PatchFunc {
	return cache.SetField([]string{"status"}, status)
}

func TestNewQueryLayer_RequiresRemote(t *testing.T) {
	_, err := NewQueryLayer(nil, nil)
	assert.True(t, errors.IsInvalidInputError(err))
}

func TestNewQueryLayer_InvalidLoaderConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Loader.RefreshWorkers = 0

	_, err := NewQueryLayer(cfg, mutation.RemoteOperationFunc(
		func(context.Context, string, any) (any, error) { return nil, nil }))
	assert.Error(t, err)
}

func TestQueryLayer_BootstrapAndStop(t *testing.T) {
	ctx := context.Background()
	mockCtrl := gomock.NewController(t)
	remote := mockmutation.NewMockRemoteOperation(mockCtrl)

	q, err := NewQueryLayer(nil, remote)
	require.NoError(t, err)

	require.NoError(t, q.Bootstrap(ctx))
	require.NoError(t, q.Bootstrap(ctx))
	assert.Equal(t, 1.0, testutil.ToFloat64(
		buildInfo.WithLabelValues(config.BuildHash, config.Version, config.BuildType)))

	q.Stop(ctx)
	q.Stop(ctx)
	assert.True(t, errors.IsInvalidStateError(q.Bootstrap(ctx)))
}

func TestQueryLayer_ReadMutateInvalidate(t *testing.T) {
	ctx := context.Background()
	mockCtrl := gomock.NewController(t)
	remote := mockmutation.NewMockRemoteOperation(mockCtrl)

	q, err := NewQueryLayer(nil, remote)
	require.NoError(t, err)
	defer q.Stop(ctx)

	statsKey := cache.MustQueryKey("getPipelineStats", map[string]any{"userId": "u1"})
	fetches := 0
	fetch := func(_ context.Context, key cache.QueryKey) (any, error) {
		fetches++
		if key == statsKey {
			return map[string]any{"applied": float64(fetches)}, nil
		}
		return map[string]any{"id": "j1", "status": "applied"}, nil
	}

	_, err = q.Read(ctx, jobKey, fetch)
	require.NoError(t, err)
	_, err = q.Read(ctx, statsKey, fetch)
	require.NoError(t, err)

	remote.EXPECT().Invoke(gomock.Any(), "updateJobStatus", "j1").Return("ok", nil)
	result, err := q.Mutate(ctx, mutation.Request{
		Operation:  "updateJobStatus",
		Args:       "j1",
		Patches:    []mutation.KeyPatch{{Key: jobKey, Patch: setStatus("interview")}},
		Invalidate: []cache.QueryKey{statsKey},
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", result)

	job, _ := q.Cache().Get(jobKey)
	assert.Equal(t, "interview", job.Value.(map[string]any)["status"])
	stats, _ := q.Cache().Get(statsKey)
	assert.True(t, stats.Stale)

	stats, err = q.Read(ctx, statsKey, fetch)
	require.NoError(t, err)
	assert.False(t, stats.Stale)
	assert.Equal(t, map[string]any{"applied": 3.0}, stats.Value)
}

func TestQueryLayer_WatchedKeysRefreshAndSurviveJanitor(t *testing.T) {
	ctx := context.Background()
	cfg := config.DefaultConfig()
	cfg.Cache.IdleEviction = time.Nanosecond
	cfg.Cache.EvictionInterval = time.Millisecond

	remote := mutation.RemoteOperationFunc(func(context.Context, string, any) (any, error) {
		return nil, fmt.Errorf("unused")
	})
	q, err := NewQueryLayer(cfg, remote)
	require.NoError(t, err)
	defer q.Stop(ctx)

	otherKey := cache.MustQueryKey("getLoops", map[string]any{"userId": "u1"})
	q.Cache().Set(jobKey, "v1")
	q.Cache().Set(otherKey, "v1")
	unwatch := q.Refresher().Watch(jobKey, func(context.Context, cache.QueryKey) (any, error) {
		return "v2", nil
	})
	defer unwatch()

	require.NoError(t, q.Bootstrap(ctx))
	assert.Eventually(t, func() bool {
		_, ok := q.Cache().Get(otherKey)
		return !ok
	}, 2*time.Second, time.Millisecond)

	q.Router().Invalidate(ctx, []cache.QueryKey{jobKey})
	assert.Eventually(t, func() bool {
		entry, ok := q.Cache().Get(jobKey)
		return ok && entry.Value == "v2"
	}, 2*time.Second, time.Millisecond)
	assert.True(t, q.Coordinator() != nil && q.Loader() != nil)
}
