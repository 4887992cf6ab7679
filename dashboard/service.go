// Copyright 2025 NetApp, Inc. All Rights Reserved.

package dashboard

import (
	"context"

	"github.com/jobloop/querycache/core"
	"github.com/jobloop/querycache/core/cache"
	"github.com/jobloop/querycache/core/mutation"
	. "github.com/jobloop/querycache/logging"
	persistentstore "github.com/jobloop/querycache/persistent_store"
	"github.com/jobloop/querycache/utils/errors"
)

// Service is the dashboard's view of the query layer: typed reads served from the cache and
// optimistic writes against the store.
type Service struct {
	layer  *core.QueryLayer
	remote mutation.RemoteOperation
}

// NewService serves reads through layer and remote. The layer should have been built over the
// same remote so that mutations reach the store the reads come from.
func NewService(layer *core.QueryLayer, remote mutation.RemoteOperation) *Service {
	return &Service{layer: layer, remote: remote}
}

// NewStoreRemote returns a dispatcher over client with every dashboard operation registered.
func NewStoreRemote(client persistentstore.Client) *persistentstore.Dispatcher {
	d := persistentstore.NewDispatcher(client)
	RegisterHandlers(d)
	return d
}

func (s *Service) Layer() *core.QueryLayer {
	return s.layer
}

// Fetch loads a key built by this package from the store, bypassing the cache. Read operations
// are dispatched through the remote with the key itself as the argument.
func (s *Service) Fetch(ctx context.Context, key cache.QueryKey) (any, error) {
	return s.remote.Invoke(WithLogLayer(ctx, LogLayerDashboard), key.Operation(), key)
}

// Watch keeps key fresh in the background until the returned function is called.
func (s *Service) Watch(key cache.QueryKey) (unwatch func()) {
	return s.layer.Refresher().Watch(key, s.Fetch)
}

func read[T any](ctx context.Context, s *Service, key cache.QueryKey) (T, error) {
	var zero T
	entry, err := s.layer.Read(ctx, key, s.Fetch)
	if err != nil {
		return zero, err
	}
	value, ok := entry.Value.(T)
	if !ok {
		return zero, errors.TypeAssertionError(key.String())
	}
	return value, nil
}

func (s *Service) Jobs(ctx context.Context, userID string, filter JobFilter) ([]Job, error) {
	return read[[]Job](ctx, s, GetJobs(userID, filter))
}

func (s *Service) Job(ctx context.Context, jobID string) (Job, error) {
	return read[Job](ctx, s, GetJob(jobID))
}

func (s *Service) Loops(ctx context.Context, userID string) ([]Loop, error) {
	return read[[]Loop](ctx, s, GetLoops(userID))
}

func (s *Service) Settings(ctx context.Context, userID string) (Settings, error) {
	return read[Settings](ctx, s, GetSettings(userID))
}

func (s *Service) PipelineStats(ctx context.Context, userID string) (PipelineStats, error) {
	return read[PipelineStats](ctx, s, GetPipelineStats(userID))
}

func (s *Service) mutate(ctx context.Context, req mutation.Request, err error) (*mutation.Mutation, error) {
	if err != nil {
		return nil, err
	}
	m := s.layer.Coordinator().Execute(WithLogLayer(ctx, LogLayerDashboard), req)
	return m, m.Err
}

func (s *Service) UpdateJobStatus(ctx context.Context, userID, jobID string, status JobStatus) (*mutation.Mutation, error) {
	req, err := UpdateJobStatus(s.layer.Cache(), userID, jobID, status)
	return s.mutate(ctx, req, err)
}

func (s *Service) DeleteLoop(ctx context.Context, userID, loopID string) (*mutation.Mutation, error) {
	req, err := DeleteLoop(s.layer.Cache(), userID, loopID)
	return s.mutate(ctx, req, err)
}

func (s *Service) ToggleLoop(ctx context.Context, userID, loopID string, enabled bool) (*mutation.Mutation, error) {
	req, err := ToggleLoop(s.layer.Cache(), userID, loopID, enabled)
	return s.mutate(ctx, req, err)
}

func (s *Service) UpdateSettings(ctx context.Context, userID string, changes map[string]any) (*mutation.Mutation, error) {
	req, err := UpdateSettings(s.layer.Cache(), userID, changes)
	return s.mutate(ctx, req, err)
}
