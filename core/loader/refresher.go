// Copyright 2025 NetApp, Inc. All Rights Reserved.

package loader

import (
	"context"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"

	"github.com/jobloop/querycache/config"
	"github.com/jobloop/querycache/core/cache"
	. "github.com/jobloop/querycache/logging"
	workerpool "github.com/jobloop/querycache/pkg/workerpool/ants"
	"github.com/jobloop/querycache/utils/errors"
)

const (
	refreshSubmitted = "submitted"
	refreshDropped   = "dropped"

	releaseTimeout = 5 * time.Second
)

var refreshesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: config.OrchestratorName,
		Subsystem: "loader",
		Name:      "refreshes_total",
		Help:      "Background refetches of stale watched queries, by whether they were queued",
	},
	[]string{"result"},
)

type watch struct {
	key   cache.QueryKey
	fetch FetchFunc
	count int
}

// Refresher refetches watched queries in the background as soon as they are marked stale.
// Refetches run on a bounded worker pool and are rate limited. When the pool is saturated the
// refetch is dropped and the entry stays stale until the next Read.
type Refresher struct {
	loader  *Loader
	pool    *ants.Pool
	limiter *rate.Limiter

	mutex   sync.Mutex
	watched map[string]*watch // key ID -> watch

	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
}

func NewRefresher(c *cache.QueryCache, loader *Loader, cfg config.LoaderConfig) (*Refresher, error) {
	if cfg.RefreshWorkers <= 0 {
		return nil, errors.InvalidInputError("refresh workers must be positive, got %d", cfg.RefreshWorkers)
	}

	// A non-positive rate means unthrottled.
	limit := rate.Inf
	if cfg.RefreshRate > 0 {
		limit = rate.Limit(cfg.RefreshRate)
	}
	burst := max(cfg.RefreshBurst, 1)

	r := &Refresher{
		loader:  loader,
		limiter: rate.NewLimiter(limit, burst),
		watched: make(map[string]*watch),
	}

	pool, err := workerpool.NewPool(workerpool.NewConfig(
		workerpool.WithNumWorkers(cfg.RefreshWorkers),
		workerpool.WithNonBlocking(true),
		workerpool.WithPanicHandler(func(p any) {
			Logc(WithLogLayer(context.Background(), LogLayerLoader)).WithField("panic", p).Error(
				"Background refetch panicked.")
		}),
	))
	if err != nil {
		return nil, err
	}
	r.pool = pool

	r.ctx, r.cancel = context.WithCancel(GenerateRequestContext(
		WithLogLayer(context.Background(), LogLayerLoader), "", ContextSourcePeriodic))
	r.unsubscribe = c.Subscribe(r.onChange)
	return r, nil
}

// Watch registers interest in key. While at least one watch is held the key is refetched when it
// goes stale and is never evicted for idleness. The returned function releases this watch.
func (r *Refresher) Watch(key cache.QueryKey, fetch FetchFunc) (unwatch func()) {
	r.mutex.Lock()
	w, ok := r.watched[key.ID()]
	if !ok {
		w = &watch{key: key}
		r.watched[key.ID()] = w
	}
	w.fetch = fetch
	w.count++
	r.mutex.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { r.Unwatch(key) })
	}
}

// Unwatch releases one watch on key.
func (r *Refresher) Unwatch(key cache.QueryKey) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	w, ok := r.watched[key.ID()]
	if !ok {
		return
	}
	w.count--
	if w.count <= 0 {
		delete(r.watched, key.ID())
	}
}

// IsWatched reports whether anything holds a watch on key.
func (r *Refresher) IsWatched(key cache.QueryKey) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	_, ok := r.watched[key.ID()]
	return ok
}

func (r *Refresher) onChange(event cache.ChangeEvent) {
	if event.Cause != cache.CauseStale {
		return
	}

	r.mutex.Lock()
	w, ok := r.watched[event.Key.ID()]
	var fetch FetchFunc
	if ok {
		fetch = w.fetch
	}
	r.mutex.Unlock()
	if !ok {
		return
	}

	r.submit(event.Key, fetch)
}

func (r *Refresher) submit(key cache.QueryKey, fetch FetchFunc) {
	err := r.pool.Submit(func() {
		if err := r.limiter.Wait(r.ctx); err != nil {
			return
		}
		if _, err := r.loader.Fetch(r.ctx, key, fetch); err != nil {
			Logc(r.ctx).WithField("key", key.String()).WithError(err).Debug("Background refetch failed.")
		}
	})
	if err != nil {
		refreshesTotal.WithLabelValues(refreshDropped).Inc()
		Logc(r.ctx).WithField("key", key.String()).WithError(err).Warn("Background refetch dropped.")
		return
	}
	refreshesTotal.WithLabelValues(refreshSubmitted).Inc()
}

// Close stops reacting to cache changes, cancels queued refetches and waits briefly for running
// ones.
func (r *Refresher) Close() {
	r.unsubscribe()
	r.cancel()
	if err := r.pool.ReleaseTimeout(releaseTimeout); err != nil {
		Logc(r.ctx).WithError(err).Warn("Background refetches did not finish in time.")
	}
}
