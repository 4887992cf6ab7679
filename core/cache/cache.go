// Copyright 2025 NetApp, Inc. All Rights Reserved.

package cache

import (
	"context"
	"sync"
	"time"

	. "github.com/jobloop/querycache/logging"
	"github.com/jobloop/querycache/utils/errors"
)

type ChangeCause string

const (
	CauseSet     ChangeCause = "set"
	CausePatch   ChangeCause = "patch"
	CauseRestore ChangeCause = "restore"
	CauseStale   ChangeCause = "stale"
	CauseEvict   ChangeCause = "evict"
	CauseLoading ChangeCause = "loading"
	CauseError   ChangeCause = "error"
)

// ChangeEvent describes one change to a cache entry. Events are delivered after the change is
// visible to Get.
type ChangeEvent struct {
	Key     QueryKey
	Version uint64
	Status  Status
	Stale   bool
	Cause   ChangeCause
}

// IsRollback reports whether the event restored a pre-mutation value rather than publishing a
// new one. Observers that track "latest truth" should not treat rollbacks as new data.
func (e ChangeEvent) IsRollback() bool {
	return e.Cause == CauseRestore
}

// Listener receives change events synchronously, in subscription order. Listeners may read from
// the cache but must not block for long.
type Listener func(ChangeEvent)

type subscription struct {
	id       uint64
	listener Listener
}

// QueryCache holds the last known result per QueryKey. It is safe for concurrent use; all
// mutations are serialized behind a single lock.
type QueryCache struct {
	mu      sync.RWMutex
	buckets map[uint64][]*Entry // key hash -> entries sharing that hash
	size    int
	byOp    *operationIndex
	now     func() time.Time

	subsMu sync.RWMutex
	subs   []subscription
	nextID uint64
}

type Option func(*QueryCache)

// WithClock replaces the time source used for UpdatedAt/LastAccess and idle eviction.
func WithClock(now func() time.Time) Option {
	return func(c *QueryCache) {
		c.now = now
	}
}

func NewQueryCache(opts ...Option) *QueryCache {
	c := &QueryCache{
		buckets: make(map[uint64][]*Entry),
		byOp:    newOperationIndex(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// lookup must be called with the lock held.
func (c *QueryCache) lookup(key QueryKey) *Entry {
	for _, e := range c.buckets[key.Hash()] {
		if e.Key.Equal(key) {
			return e
		}
	}
	return nil
}

// create must be called with the write lock held and only for keys that are not present.
func (c *QueryCache) create(key QueryKey, status Status) *Entry {
	now := c.now()
	e := &Entry{Key: key, Status: status, UpdatedAt: now, LastAccess: now}
	c.buckets[key.Hash()] = append(c.buckets[key.Hash()], e)
	c.byOp.add(key)
	c.size++
	entriesGauge.Inc()
	return e
}

// remove must be called with the write lock held.
func (c *QueryCache) remove(key QueryKey) bool {
	bucket := c.buckets[key.Hash()]
	for i, e := range bucket {
		if !e.Key.Equal(key) {
			continue
		}
		bucket[i] = bucket[len(bucket)-1]
		bucket = bucket[:len(bucket)-1]
		if len(bucket) == 0 {
			delete(c.buckets, key.Hash())
		} else {
			c.buckets[key.Hash()] = bucket
		}
		c.byOp.remove(key)
		c.size--
		entriesGauge.Dec()
		return true
	}
	return false
}

func eventFor(e *Entry, cause ChangeCause) ChangeEvent {
	return ChangeEvent{Key: e.Key, Version: e.Version, Status: e.Status, Stale: e.Stale, Cause: cause}
}

// Get returns a copy of the entry for key. It has no side effects.
func (c *QueryCache) Get(key QueryKey) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e := c.lookup(key)
	if e == nil {
		return nil, false
	}
	return e.copy(), true
}

// Set replaces the value for key wholesale, marks it resolved and fresh, and returns the new
// version. The entry is created if absent. The cache keeps its own copy of value.
func (c *QueryCache) Set(key QueryKey, value any) uint64 {
	c.mu.Lock()
	e := c.lookup(key)
	if e == nil {
		e = c.create(key, StatusUninitialized)
	}
	now := c.now()
	e.Value = isolate(value)
	e.Status = StatusResolved
	e.Stale = false
	e.Err = nil
	e.Version++
	e.UpdatedAt = now
	e.LastAccess = now
	event := eventFor(e, CauseSet)
	c.mu.Unlock()

	operationsTotal.WithLabelValues(opSet).Inc()
	c.notify(event)
	return event.Version
}

// Patch applies patch to the resolved value for key and returns the value it replaced.
//
// The patch function receives a deep copy of the current value, so it may modify its argument
// in place, and the cache keeps its own copy of the result. Values the copier cannot handle are
// shared as they are in Set. If the patch function returns an error the entry is left untouched
// and the error is returned as is.
// The patch function runs under the cache lock and must not call back into the cache.
func (c *QueryCache) Patch(key QueryKey, patch PatchFunc) (any, error) {
	if patch == nil {
		return nil, errors.InvalidInputError("patch for %s is nil", key)
	}

	c.mu.Lock()
	e := c.lookup(key)
	if e == nil {
		c.mu.Unlock()
		return nil, errors.NotFoundError("no cache entry for query %s", key)
	}
	if e.Status != StatusResolved {
		c.mu.Unlock()
		return nil, errors.InvalidStateError("cache entry for query %s is %s, not %s", key, e.Status,
			StatusResolved)
	}

	next, err := patch(isolate(e.Value))
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}

	previous := e.Value
	e.Value = isolate(next)
	e.Version++
	e.UpdatedAt = c.now()
	event := eventFor(e, CausePatch)
	c.mu.Unlock()

	operationsTotal.WithLabelValues(opPatch).Inc()
	c.notify(event)
	return previous, nil
}

// Restore writes a snapshot back after a failed mutation. It behaves like Set except that the
// staleness flag is preserved and listeners see CauseRestore. Restoring an entry that was evicted
// in the meantime returns a NotFoundError and leaves the cache unchanged. The snapshot wins over
// whatever status the entry has now, so a fetch failure recorded during the mutation is cleared.
func (c *QueryCache) Restore(key QueryKey, value any) error {
	c.mu.Lock()
	e := c.lookup(key)
	if e == nil {
		c.mu.Unlock()
		return errors.NotFoundError("no cache entry for query %s to restore", key)
	}
	e.Value = value
	e.Status = StatusResolved
	e.Err = nil
	e.Version++
	e.UpdatedAt = c.now()
	event := eventFor(e, CauseRestore)
	c.mu.Unlock()

	operationsTotal.WithLabelValues(opRestore).Inc()
	c.notify(event)
	return nil
}

// MarkStale flags the entry for key so the read path refetches it. Value and version are not
// changed. It returns false, doing nothing, when key is not cached.
func (c *QueryCache) MarkStale(key QueryKey) bool {
	c.mu.Lock()
	e := c.lookup(key)
	if e == nil {
		c.mu.Unlock()
		return false
	}
	wasStale := e.Stale
	e.Stale = true
	event := eventFor(e, CauseStale)
	c.mu.Unlock()

	if !wasStale {
		operationsTotal.WithLabelValues(opMarkStale).Inc()
		c.notify(event)
	}
	return true
}

// Evict removes the entry for key. Callers are responsible for knowing that nothing still reads
// the entry. It returns false when key is not cached.
func (c *QueryCache) Evict(key QueryKey) bool {
	c.mu.Lock()
	e := c.lookup(key)
	if e == nil {
		c.mu.Unlock()
		return false
	}
	event := eventFor(e, CauseEvict)
	c.remove(key)
	c.mu.Unlock()

	operationsTotal.WithLabelValues(opEvict).Inc()
	c.notify(event)
	return true
}

// Begin records the start of a fetch for key and returns a copy of the entry. Absent keys are
// created in StatusLoading and failed entries move back to StatusLoading. Resolved entries keep
// serving their value while the refetch runs.
func (c *QueryCache) Begin(key QueryKey) *Entry {
	c.mu.Lock()
	e := c.lookup(key)
	changed := false
	if e == nil {
		e = c.create(key, StatusLoading)
		changed = true
	} else if e.Status == StatusError || e.Status == StatusUninitialized {
		e.Status = StatusLoading
		e.Err = nil
		changed = true
	}
	e.LastAccess = c.now()
	event := eventFor(e, CauseLoading)
	result := e.copy()
	c.mu.Unlock()

	if changed {
		operationsTotal.WithLabelValues(opBegin).Inc()
		c.notify(event)
	}
	return result
}

// Fail records a failed fetch for key and bumps its version. The last known value, if any, is
// kept. It returns false when key was evicted while the fetch ran.
func (c *QueryCache) Fail(key QueryKey, err error) bool {
	c.mu.Lock()
	e := c.lookup(key)
	if e == nil {
		c.mu.Unlock()
		return false
	}
	e.Status = StatusError
	e.Err = err
	e.Version++
	e.UpdatedAt = c.now()
	event := eventFor(e, CauseError)
	c.mu.Unlock()

	operationsTotal.WithLabelValues(opFail).Inc()
	c.notify(event)
	return true
}

// Touch records a read of key for idle eviction. It returns false when key is not cached.
func (c *QueryCache) Touch(key QueryKey) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.lookup(key)
	if e == nil {
		return false
	}
	e.LastAccess = c.now()
	return true
}

// Keys returns every cached key, sorted by ID.
func (c *QueryCache) Keys() []QueryKey {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]QueryKey, 0, c.size)
	for _, bucket := range c.buckets {
		for _, e := range bucket {
			keys = append(keys, e.Key)
		}
	}
	sortKeys(keys)
	return keys
}

// KeysForOperation returns the cached keys of one operation, sorted by ID.
func (c *QueryCache) KeysForOperation(operation string) []QueryKey {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.byOp.get(operation)
}

// Len returns the number of cached entries.
func (c *QueryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.size
}

// EvictIdle removes entries not accessed within idle for which inUse returns false, and returns
// their keys. A non-positive idle disables eviction. inUse is called under the cache lock and
// must not call back into the cache.
func (c *QueryCache) EvictIdle(idle time.Duration, inUse func(QueryKey) bool) []QueryKey {
	if idle <= 0 {
		return nil
	}

	c.mu.Lock()
	cutoff := c.now().Add(-idle)
	var evicted []QueryKey
	var events []ChangeEvent
	for _, bucket := range c.buckets {
		for _, e := range bucket {
			if e.LastAccess.After(cutoff) {
				continue
			}
			if inUse != nil && inUse(e.Key) {
				continue
			}
			evicted = append(evicted, e.Key)
			events = append(events, eventFor(e, CauseEvict))
		}
	}
	for _, key := range evicted {
		c.remove(key)
	}
	c.mu.Unlock()

	if len(evicted) > 0 {
		operationsTotal.WithLabelValues(opEvict).Add(float64(len(evicted)))
		Logc(WithLogLayer(context.Background(), LogLayerCoreCache)).WithFields(LogFields{
			"evicted": len(evicted),
			"idle":    idle,
		}).Debug("Evicted idle cache entries.")
	}
	for _, event := range events {
		c.notify(event)
	}
	sortKeys(evicted)
	return evicted
}

// Subscribe registers a listener for change events and returns a function that removes it.
func (c *QueryCache) Subscribe(listener Listener) (unsubscribe func()) {
	c.subsMu.Lock()
	c.nextID++
	id := c.nextID
	c.subs = append(c.subs, subscription{id: id, listener: listener})
	c.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.subsMu.Lock()
			defer c.subsMu.Unlock()
			for i, s := range c.subs {
				if s.id == id {
					c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (c *QueryCache) notify(event ChangeEvent) {
	c.subsMu.RLock()
	subs := c.subs
	c.subsMu.RUnlock()

	for _, s := range subs {
		s.listener(event)
	}
}
