// Copyright 2025 NetApp, Inc. All Rights Reserved.

package cache

import (
	"time"

	"github.com/brunoga/deep"
)

type Status string

const (
	StatusUninitialized Status = "uninitialized"
	StatusLoading       Status = "loading"
	StatusResolved      Status = "resolved"
	StatusError         Status = "error"
)

func (s Status) String() string {
	return string(s)
}

// Entry is the state held for one QueryKey. Entries handed out by the cache are copies; changing
// them has no effect on the cache.
type Entry struct {
	Key     QueryKey
	Value   any
	Status  Status
	Version uint64
	// Stale asks the read path to refetch before trusting Value.
	Stale bool
	// Err is the last fetch failure while Status is StatusError.
	Err        error
	UpdatedAt  time.Time
	LastAccess time.Time
}

func (e *Entry) IsResolved() bool {
	return e != nil && e.Status == StatusResolved
}

// copy returns a detached copy of the entry. The value is deep-copied where possible; values the
// copier cannot handle (funcs, channels) are shared.
func (e *Entry) copy() *Entry {
	c := *e
	c.Value = isolate(e.Value)
	return &c
}

// copyValue deep-copies a cached value.
func copyValue(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	return deep.Copy(v)
}

// isolate is copyValue that falls back to sharing v when it cannot be copied.
func isolate(v any) any {
	c, err := copyValue(v)
	if err != nil {
		return v
	}
	return c
}
