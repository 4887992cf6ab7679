// Copyright 2025 NetApp, Inc. All Rights Reserved.

package loader

import (
	"context"
	"sync"
	"time"

	"github.com/jobloop/querycache/config"
	"github.com/jobloop/querycache/core/cache"
	. "github.com/jobloop/querycache/logging"
)

// Janitor periodically evicts cache entries that nobody has read for the configured idle time.
// Keys reported in use are kept regardless of age.
type Janitor struct {
	cache    *cache.QueryCache
	idle     time.Duration
	interval time.Duration
	inUse    func(cache.QueryKey) bool

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}
}

func NewJanitor(c *cache.QueryCache, cfg config.CacheConfig, inUse func(cache.QueryKey) bool) *Janitor {
	return &Janitor{
		cache:    c,
		idle:     cfg.IdleEviction,
		interval: cfg.EvictionInterval,
		inUse:    inUse,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Sweep evicts idle entries once and returns their keys.
func (j *Janitor) Sweep() []cache.QueryKey {
	return j.cache.EvictIdle(j.idle, j.inUse)
}

// Start runs Sweep every interval until Stop is called. A non-positive interval or idle time
// leaves the janitor idle.
func (j *Janitor) Start() {
	j.startOnce.Do(func() {
		if j.interval <= 0 || j.idle <= 0 {
			close(j.done)
			return
		}
		go j.run()
	})
}

func (j *Janitor) run() {
	defer close(j.done)

	ctx := GenerateRequestContext(WithLogLayer(context.Background(), LogLayerLoader), "",
		ContextSourcePeriodic)
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	Logc(ctx).WithFields(LogFields{
		"idle":     j.idle,
		"interval": j.interval,
	}).Debug("Cache janitor started.")

	for {
		select {
		case <-j.stop:
			Logc(ctx).Debug("Cache janitor stopped.")
			return
		case <-ticker.C:
			if evicted := j.Sweep(); len(evicted) > 0 {
				Logc(ctx).WithField("evicted", len(evicted)).Debug("Cache janitor evicted idle entries.")
			}
		}
	}
}

// Stop ends the sweep loop and waits for it to exit. It is safe to call more than once, and
// before Start.
func (j *Janitor) Stop() {
	j.stopOnce.Do(func() { close(j.stop) })
	j.startOnce.Do(func() { close(j.done) })
	<-j.done
}
