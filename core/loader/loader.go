// Copyright 2025 NetApp, Inc. All Rights Reserved.

package loader

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/singleflight"

	"github.com/jobloop/querycache/config"
	"github.com/jobloop/querycache/core/cache"
	. "github.com/jobloop/querycache/logging"
)

const (
	resultSuccess = "success"
	resultError   = "error"
	resultShared  = "shared"
)

var fetchesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: config.OrchestratorName,
		Subsystem: "loader",
		Name:      "fetches_total",
		Help:      "Remote reads by result; shared reads joined a fetch already in flight",
	},
	[]string{"result"},
)

// FetchFunc reads the authoritative value for a query from the remote store.
type FetchFunc func(ctx context.Context, key cache.QueryKey) (any, error)

// Loader is the read path in front of the query cache. Fresh resolved entries are served from the
// cache; anything else is fetched, with concurrent fetches of the same key collapsed into one.
type Loader struct {
	cache *cache.QueryCache
	group singleflight.Group
}

func NewLoader(c *cache.QueryCache) *Loader {
	return &Loader{cache: c}
}

// Read returns the entry for key, fetching it when it is absent, stale, loading or failed.
func (l *Loader) Read(ctx context.Context, key cache.QueryKey, fetch FetchFunc) (*cache.Entry, error) {
	if entry, ok := l.cache.Get(key); ok && entry.IsResolved() && !entry.Stale {
		l.cache.Touch(key)
		return entry, nil
	}
	return l.Fetch(ctx, key, fetch)
}

// Fetch reads key from the remote store and publishes the result, whatever the cache holds.
func (l *Loader) Fetch(ctx context.Context, key cache.QueryKey, fetch FetchFunc) (*cache.Entry, error) {
	ctx = WithLogLayer(ctx, LogLayerLoader)

	result, err, shared := l.group.Do(key.ID(), func() (any, error) {
		l.cache.Begin(key)
		value, err := fetch(ctx, key)
		if err != nil {
			l.cache.Fail(key, err)
			fetchesTotal.WithLabelValues(resultError).Inc()
			Logc(ctx).WithField("key", key.String()).WithError(err).Debug("Fetch failed.")
			return nil, err
		}
		l.cache.Set(key, value)
		fetchesTotal.WithLabelValues(resultSuccess).Inc()

		entry, _ := l.cache.Get(key)
		return entry, nil
	})
	if shared {
		fetchesTotal.WithLabelValues(resultShared).Inc()
	}
	if err != nil {
		return nil, err
	}

	// Callers sharing one fetch each get their own copy.
	if entry, ok := l.cache.Get(key); ok {
		return entry, nil
	}
	return result.(*cache.Entry), nil
}
