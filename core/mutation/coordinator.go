// Copyright 2025 NetApp, Inc. All Rights Reserved.

package mutation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jobloop/querycache/core/cache"
	. "github.com/jobloop/querycache/logging"
	"github.com/jobloop/querycache/pkg/locks"
	"github.com/jobloop/querycache/utils/errors"
)

// Coordinator runs mutations optimistically: it patches the affected cache entries, invokes the
// remote operation, and then either keeps the patches and invalidates dependent queries, or
// restores every patched entry in reverse order.
//
// The coordinator does not deduplicate, retry or cancel. Two mutations touching the same keys
// may interleave while their remote calls are in flight, and each rollback restores only its own
// snapshots, unless WithSerializedKeys is set.
type Coordinator struct {
	cache       Cache
	invalidator Invalidator
	remote      RemoteOperation

	serialize bool
	keyLocks  *locks.GCNamedMutex
	now       func() time.Time
}

type Option func(*Coordinator)

// WithSerializedKeys makes mutations that patch overlapping keys run one after another, in
// arrival order per key. Locks are taken on every patched key in sorted order and held until the
// mutation resolves.
func WithSerializedKeys(serialize bool) Option {
	return func(c *Coordinator) {
		c.serialize = serialize
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		c.now = now
	}
}

func NewCoordinator(c Cache, invalidator Invalidator, remote RemoteOperation, opts ...Option) *Coordinator {
	coordinator := &Coordinator{
		cache:       c,
		invalidator: invalidator,
		remote:      remote,
		keyLocks:    locks.NewGCNamedMutex(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(coordinator)
	}
	return coordinator
}

// Serialized reports whether overlapping mutations are queued per key.
func (c *Coordinator) Serialized() bool {
	return c.serialize
}

// Run executes req and returns the remote result. On a remote failure the returned error is a
// RemoteOperationError carrying the remote error's message; when a patch cannot be applied it is
// a PrePatchError and the remote operation was not invoked.
func (c *Coordinator) Run(ctx context.Context, req Request) (any, error) {
	m := c.Execute(ctx, req)
	return m.Result, m.Err
}

// Execute runs req and returns the full record of what happened. The returned mutation is always
// in a terminal state.
func (c *Coordinator) Execute(ctx context.Context, req Request) *Mutation {
	ctx = WithLogLayer(ctx, LogLayerMutation)

	m := &Mutation{
		ID:        uuid.NewString(),
		Request:   req,
		State:     StatePending,
		StartedAt: c.now(),
	}
	logFields := LogFields{
		"mutationID": m.ID,
		"operation":  req.Operation,
		"patches":    len(req.Patches),
	}

	if req.Operation == "" {
		m.Err = errors.WrapWithPrePatchError(errors.InvalidInputError("mutation has no remote operation"),
			"mutation rejected")
		c.finish(m, StateRolledBack, outcomePrePatchFailed)
		Logc(ctx).WithFields(logFields).WithError(m.Err).Warn("Mutation rejected.")
		return m
	}

	if c.serialize && len(req.Patches) > 0 {
		ids := make([]string, 0, len(req.Patches))
		for _, p := range req.Patches {
			ids = append(ids, p.Key.ID())
		}
		guard := c.keyLocks.LockAll(ids...)
		defer guard.Unlock()
	}

	if err := c.applyPatches(ctx, m); err != nil {
		m.Err = err
		c.rollback(ctx, m)
		c.finish(m, StateRolledBack, outcomePrePatchFailed)
		Logc(ctx).WithFields(logFields).WithError(err).Warn("Optimistic patch failed; remote operation not invoked.")
		return m
	}

	result, err := c.invoke(ctx, req)
	if err != nil {
		m.Err = errors.WrapWithRemoteOperationError(err, req.Operation)
		c.rollback(ctx, m)
		c.finish(m, StateRolledBack, outcomeRolledBack)
		Logc(ctx).WithFields(logFields).WithFields(LogFields{
			"restored": len(m.Restored),
			"duration": m.Duration(),
		}).WithError(err).Warn("Remote operation failed; optimistic patches rolled back.")
		return m
	}

	m.Result = result
	m.snapshots = nil
	m.Invalidated = c.invalidator.Invalidate(ctx, req.Invalidate)
	c.finish(m, StateCommitted, outcomeCommitted)
	Logc(ctx).WithFields(logFields).WithFields(LogFields{
		"invalidated": m.Invalidated,
		"duration":    m.Duration(),
	}).Debug("Mutation committed.")
	return m
}

// applyPatches patches every requested key in order, recording a snapshot per patch.
func (c *Coordinator) applyPatches(ctx context.Context, m *Mutation) error {
	for i, p := range m.Request.Patches {
		previous, err := c.cache.Patch(p.Key, p.Patch)
		if err != nil {
			return errors.WrapWithPrePatchError(err, "could not apply patch %d of %d to %s", i+1,
				len(m.Request.Patches), p.Key)
		}
		m.snapshots = append(m.snapshots, snapshot{key: p.Key, value: previous})
		m.Applied = append(m.Applied, p.Key)
		mutationPatchesTotal.Inc()
		Logc(ctx).WithFields(LogFields{
			"mutationID": m.ID,
			"key":        p.Key.String(),
		}).Trace("Applied optimistic patch.")
	}
	return nil
}

// invoke calls the remote operation. It is the only point at which a mutation waits.
func (c *Coordinator) invoke(ctx context.Context, req Request) (any, error) {
	mutationsInFlight.Inc()
	defer mutationsInFlight.Dec()

	return c.remote.Invoke(ctx, req.Operation, req.Args)
}

// rollback restores snapshots in reverse order of application. Entries evicted since they were
// patched cannot be restored; those failures are collected on the mutation and logged.
func (c *Coordinator) rollback(ctx context.Context, m *Mutation) {
	var restoreErr error
	for i := len(m.snapshots) - 1; i >= 0; i-- {
		s := m.snapshots[i]
		if err := c.cache.Restore(s.key, s.value); err != nil {
			restoreErr = errors.Append(restoreErr, fmt.Errorf("could not restore %s; %w", s.key, err))
			continue
		}
		m.Restored = append(m.Restored, s.key)
	}
	m.snapshots = nil

	if restoreErr != nil {
		m.RestoreErr = restoreErr
		Logc(ctx).WithFields(LogFields{
			"mutationID": m.ID,
			"operation":  m.Request.Operation,
			"failed":     len(errors.Errors(restoreErr)),
		}).WithError(restoreErr).Error("Could not restore every optimistic patch.")
	}
}

func (c *Coordinator) finish(m *Mutation, state State, outcome string) {
	m.State = state
	m.FinishedAt = c.now()
	mutationsTotal.WithLabelValues(outcome).Inc()
	mutationDurationSeconds.WithLabelValues(outcome).Observe(m.Duration().Seconds())
}

var _ Cache = (*cache.QueryCache)(nil)
