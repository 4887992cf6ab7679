// Copyright 2025 NetApp, Inc. All Rights Reserved.

package mutation

//go:generate mockgen -destination=../../mocks/mock_core/mock_mutation/mock_mutation.go github.com/jobloop/querycache/core/mutation RemoteOperation,Invalidator

import (
	"context"
	"time"

	"github.com/jobloop/querycache/core/cache"
)

// RemoteOperation is the collaborator that performs the authoritative write, typically a
// document-store client. Any returned error is treated as a rejection.
type RemoteOperation interface {
	Invoke(ctx context.Context, operation string, args any) (any, error)
}

type RemoteOperationFunc func(ctx context.Context, operation string, args any) (any, error)

func (f RemoteOperationFunc) Invoke(ctx context.Context, operation string, args any) (any, error) {
	return f(ctx, operation, args)
}

// Cache is the part of the query cache the coordinator writes to.
type Cache interface {
	Patch(key cache.QueryKey, patch cache.PatchFunc) (any, error)
	Restore(key cache.QueryKey, value any) error
}

// Invalidator marks queries stale after a commit.
type Invalidator interface {
	Invalidate(ctx context.Context, keys []cache.QueryKey) int
}

type State string

const (
	StatePending    State = "pending"
	StateCommitted  State = "committed"
	StateRolledBack State = "rolled_back"
)

func (s State) String() string {
	return string(s)
}

// IsTerminal reports whether the mutation has resolved.
func (s State) IsTerminal() bool {
	return s == StateCommitted || s == StateRolledBack
}

// KeyPatch pairs a cached query with the optimistic change to apply to it.
type KeyPatch struct {
	Key   cache.QueryKey
	Patch cache.PatchFunc
}

// Request describes one mutation: the remote operation to invoke, the optimistic patches to
// apply first, and the queries to mark stale once the remote operation succeeds. The invalidate
// list may name queries that are never patched.
type Request struct {
	Operation  string
	Args       any
	Patches    []KeyPatch
	Invalidate []cache.QueryKey
}

// PatchedKeys returns the keys of every patch in request order, repeats included.
func (r *Request) PatchedKeys() []cache.QueryKey {
	keys := make([]cache.QueryKey, 0, len(r.Patches))
	for _, p := range r.Patches {
		keys = append(keys, p.Key)
	}
	return keys
}

// snapshot is the value a key held immediately before this mutation patched it.
type snapshot struct {
	key   cache.QueryKey
	value any
}

// Mutation is the record of one Execute call.
type Mutation struct {
	ID          string
	Request     Request
	State       State
	// Applied lists patched keys in application order.
	Applied []cache.QueryKey
	// Restored lists keys written back during rollback, in restore order.
	Restored []cache.QueryKey
	// Invalidated is the number of queries marked stale on commit.
	Invalidated int
	Result      any
	Err         error
	// RestoreErr collects rollback writes that failed because the entry was evicted meanwhile.
	// It never replaces Err.
	RestoreErr error
	StartedAt  time.Time
	FinishedAt time.Time

	snapshots []snapshot
}

func (m *Mutation) Duration() time.Duration {
	if m.FinishedAt.IsZero() {
		return 0
	}
	return m.FinishedAt.Sub(m.StartedAt)
}
