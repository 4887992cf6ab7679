// Copyright 2025 NetApp, Inc. All Rights Reserved.

package dashboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jobloop/querycache/core"
	persistentstore "github.com/jobloop/querycache/persistent_store"
)

var ctx = context.Background

func fixtureJobs() []Job {
	return []Job{
		{ID: "j1", UserID: "u1", LoopID: "l1", Title: "Backend Engineer", Company: "Acme", Status: JobStatusApplied, Score: 82, PostedAt: "2025-03-02T10:00:00Z"},
		{ID: "j2", UserID: "u1", LoopID: "l1", Title: "Platform Engineer", Company: "Globex", Status: JobStatusSaved, Score: 64, PostedAt: "2025-03-05T09:00:00Z"},
		{ID: "j3", UserID: "u1", LoopID: "l2", Title: "Data Engineer", Company: "Initech", Status: JobStatusInterview, Score: 91, PostedAt: "2025-02-27T15:30:00Z"},
		{ID: "j4", UserID: "u1", LoopID: "l2", Title: "SRE", Company: "acme labs", Status: JobStatusApplied, Score: 70, PostedAt: "2025-03-01T08:00:00Z"},
		{ID: "j9", UserID: "u2", LoopID: "l9", Title: "Engineer", Company: "Hooli", Status: JobStatusOffer, Score: 99, PostedAt: "2025-03-03T12:00:00Z"},
	}
}

func fixtureLoops() []Loop {
	return []Loop{
		{ID: "l1", UserID: "u1", Name: "Backend", Query: "golang backend", Enabled: true},
		{ID: "l2", UserID: "u1", Name: "Data", Query: "data engineer", Enabled: false},
		{ID: "l9", UserID: "u2", Name: "Anything", Query: "engineer", Enabled: true},
	}
}

// seededStore returns an in-memory store holding the fixture jobs and loops.
func seededStore(t *testing.T) *persistentstore.InMemoryClient {
	t.Helper()
	client := persistentstore.NewInMemoryClient()
	for _, job := range fixtureJobs() {
		doc, err := toDocument(job)
		require.NoError(t, err)
		require.NoError(t, client.Put(ctx(), JobsCollection, job.ID, doc))
	}
	for _, loop := range fixtureLoops() {
		doc, err := toDocument(loop)
		require.NoError(t, err)
		require.NoError(t, client.Put(ctx(), LoopsCollection, loop.ID, doc))
	}
	return client
}

// newTestService wires a service over a seeded in-memory store.
func newTestService(t *testing.T) (*Service, *persistentstore.InMemoryClient) {
	t.Helper()
	client := seededStore(t)
	remote := NewStoreRemote(client)
	layer, err := core.NewQueryLayer(nil, remote)
	require.NoError(t, err)
	t.Cleanup(func() { layer.Stop(ctx()) })
	return NewService(layer, remote), client
}

func jobIDs(jobs []Job) []string {
	ids := make([]string, 0, len(jobs))
	for _, job := range jobs {
		ids = append(ids, job.ID)
	}
	return ids
}
