// Copyright 2025 NetApp, Inc. All Rights Reserved.

package locks

import (
	"sort"
	"sync"
)

// Guard holds one or more named locks. Unlock is idempotent.
type Guard struct {
	names  []string
	unlock func()
}

// Names returns the locked names in acquisition order.
func (g *Guard) Names() []string {
	return append([]string(nil), g.names...)
}

func (g *Guard) Unlock() {
	if g.unlock != nil {
		g.unlock()
		g.unlock = nil
	}
}

// GCNamedMutex provides named mutexes that are garbage-collected once nobody holds or waits on
// them.
type GCNamedMutex struct {
	m       sync.Mutex
	mutexes map[string]*gcMutex
}

type gcMutex struct {
	m sync.Mutex
	c int // holders plus waiters
}

func NewGCNamedMutex() *GCNamedMutex {
	return &GCNamedMutex{mutexes: make(map[string]*gcMutex)}
}

func (g *GCNamedMutex) acquire(name string) *gcMutex {
	g.m.Lock()
	defer g.m.Unlock()

	resourceMutex, ok := g.mutexes[name]
	if !ok {
		resourceMutex = &gcMutex{}
		g.mutexes[name] = resourceMutex
	}
	resourceMutex.c++
	return resourceMutex
}

func (g *GCNamedMutex) release(name string) *gcMutex {
	g.m.Lock()
	defer g.m.Unlock()

	resourceMutex, ok := g.mutexes[name]
	if !ok {
		return nil
	}
	resourceMutex.c--
	if resourceMutex.c == 0 {
		delete(g.mutexes, name)
	}
	return resourceMutex
}

func (g *GCNamedMutex) Lock(name string) {
	g.acquire(name).m.Lock()
}

// Unlock releases name. Unlocking a name that is not held is a no-op.
func (g *GCNamedMutex) Unlock(name string) {
	if resourceMutex := g.release(name); resourceMutex != nil {
		resourceMutex.m.Unlock()
	}
}

// LockAll locks every distinct name in sorted order, so two callers locking overlapping sets
// cannot deadlock. Usage:
//
//	guard := mutex.LockAll(names...)
//	defer guard.Unlock()
func (g *GCNamedMutex) LockAll(names ...string) *Guard {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	distinct := sorted[:0]
	for i, name := range sorted {
		if i == 0 || name != sorted[i-1] {
			distinct = append(distinct, name)
		}
	}

	for _, name := range distinct {
		g.Lock(name)
	}
	return &Guard{
		names: distinct,
		unlock: func() {
			for i := len(distinct) - 1; i >= 0; i-- {
				g.Unlock(distinct[i])
			}
		},
	}
}

// Len returns the number of names currently held or waited on.
func (g *GCNamedMutex) Len() int {
	g.m.Lock()
	defer g.m.Unlock()

	return len(g.mutexes)
}
