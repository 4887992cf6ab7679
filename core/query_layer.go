// Copyright 2025 NetApp, Inc. All Rights Reserved.

package core

import (
	"context"
	"sync"

	"github.com/jobloop/querycache/config"
	"github.com/jobloop/querycache/core/cache"
	"github.com/jobloop/querycache/core/invalidation"
	"github.com/jobloop/querycache/core/loader"
	"github.com/jobloop/querycache/core/mutation"
	. "github.com/jobloop/querycache/logging"
	"github.com/jobloop/querycache/utils/errors"
)

// QueryLayer owns one query cache and every component that reads or writes it: the loader and its
// background refresher, the idle-entry janitor, the invalidation router and the mutation
// coordinator.
type QueryLayer struct {
	cache       *cache.QueryCache
	router      *invalidation.Router
	coordinator *mutation.Coordinator
	loader      *loader.Loader
	refresher   *loader.Refresher
	janitor     *loader.Janitor

	mutex        sync.Mutex
	bootstrapped bool
	stopped      bool
}

// NewQueryLayer wires a query layer around remote. Nothing runs in the background until
// Bootstrap is called.
func NewQueryLayer(cfg *config.Config, remote mutation.RemoteOperation, opts ...cache.Option) (*QueryLayer, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if remote == nil {
		return nil, errors.InvalidInputError("query layer requires a remote operation")
	}

	c := cache.NewQueryCache(opts...)
	l := loader.NewLoader(c)
	refresher, err := loader.NewRefresher(c, l, cfg.Loader)
	if err != nil {
		return nil, err
	}
	router := invalidation.NewRouter(c)

	q := &QueryLayer{
		cache:  c,
		router: router,
		coordinator: mutation.NewCoordinator(c, router, remote,
			mutation.WithSerializedKeys(cfg.Mutation.SerializeOverlapping)),
		loader:    l,
		refresher: refresher,
	}
	q.janitor = loader.NewJanitor(c, cfg.Cache, refresher.IsWatched)
	return q, nil
}

// Bootstrap starts the background janitor. It is safe to call more than once.
func (q *QueryLayer) Bootstrap(ctx context.Context) error {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if q.stopped {
		return errors.InvalidStateError("query layer is stopped")
	}
	if q.bootstrapped {
		return nil
	}

	q.janitor.Start()
	q.bootstrapped = true
	buildInfo.WithLabelValues(config.BuildHash, config.Version, config.BuildType).Set(1)

	Logc(WithLogLayer(ctx, LogLayerCore)).WithField("serialized", q.coordinator.Serialized()).Info(
		"Query layer bootstrapped.")
	return nil
}

// Stop halts background work. Cached entries stay readable.
func (q *QueryLayer) Stop(ctx context.Context) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if q.stopped {
		return
	}
	q.stopped = true
	q.janitor.Stop()
	q.refresher.Close()
	Logc(WithLogLayer(ctx, LogLayerCore)).Debug("Query layer stopped.")
}

func (q *QueryLayer) Cache() *cache.QueryCache {
	return q.cache
}

func (q *QueryLayer) Router() *invalidation.Router {
	return q.router
}

func (q *QueryLayer) Coordinator() *mutation.Coordinator {
	return q.coordinator
}

func (q *QueryLayer) Loader() *loader.Loader {
	return q.loader
}

func (q *QueryLayer) Refresher() *loader.Refresher {
	return q.refresher
}

// Read serves key from the cache, fetching it when it is absent, stale or failed.
func (q *QueryLayer) Read(ctx context.Context, key cache.QueryKey, fetch loader.FetchFunc) (*cache.Entry, error) {
	return q.loader.Read(ctx, key, fetch)
}

// Mutate runs an optimistic mutation and returns the remote result.
func (q *QueryLayer) Mutate(ctx context.Context, req mutation.Request) (any, error) {
	return q.coordinator.Run(ctx, req)
}
