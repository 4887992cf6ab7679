// Copyright 2025 NetApp, Inc. All Rights Reserved.

package dashboard

import (
	"context"
	"encoding/json"

	jsonpatch "github.com/evanphx/json-patch/v5"

	"github.com/jobloop/querycache/core/cache"
	. "github.com/jobloop/querycache/logging"
	persistentstore "github.com/jobloop/querycache/persistent_store"
	"github.com/jobloop/querycache/utils/errors"
)

const (
	OpUpdateJobStatus = "updateJobStatus"
	OpDeleteLoop      = "deleteLoop"
	OpToggleLoop      = "toggleLoop"
	OpUpdateSettings  = "updateSettings"
)

type UpdateJobStatusArgs struct {
	UserID string    `json:"userId"`
	JobID  string    `json:"jobId"`
	Status JobStatus `json:"status"`
	// ExpectedStatus, when set, is the status the caller last saw. The update is refused with a
	// ConflictError if the stored job has moved on since.
	ExpectedStatus JobStatus `json:"expectedStatus,omitempty"`
}

type DeleteLoopArgs struct {
	UserID string `json:"userId"`
	LoopID string `json:"loopId"`
}

type ToggleLoopArgs struct {
	UserID  string `json:"userId"`
	LoopID  string `json:"loopId"`
	Enabled bool   `json:"enabled"`
}

type UpdateSettingsArgs struct {
	UserID  string         `json:"userId"`
	Changes map[string]any `json:"changes"`
}

// RegisterHandlers registers the dashboard's read and write operations on d. Read operations take
// the query key they serve as their argument.
func RegisterHandlers(d *persistentstore.Dispatcher) {
	d.Register(OpGetJobs, handleGetJobs)
	d.Register(OpGetJob, handleGetJob)
	d.Register(OpGetLoops, handleGetLoops)
	d.Register(OpGetSettings, handleGetSettings)
	d.Register(OpGetPipelineStats, handleGetPipelineStats)

	d.Register(OpUpdateJobStatus, handleUpdateJobStatus)
	d.Register(OpDeleteLoop, handleDeleteLoop)
	d.Register(OpToggleLoop, handleToggleLoop)
	d.Register(OpUpdateSettings, handleUpdateSettings)
}

// argsAs accepts T, *T or the decoded JSON form of T.
func argsAs[T any](args any) (T, error) {
	var zero T
	switch a := args.(type) {
	case T:
		return a, nil
	case *T:
		if a == nil {
			return zero, errors.InvalidInputError("missing arguments")
		}
		return *a, nil
	case map[string]any:
		return fromDocument[T](a)
	case cache.QueryKey:
		return decodeArgs[T](a)
	default:
		return zero, errors.InvalidInputError("unexpected arguments of type %T", args)
	}
}

// ///////////////////////////////////////////////////////////////////////////
// Reads
// ///////////////////////////////////////////////////////////////////////////

func listJobs(ctx context.Context, client persistentstore.Client, userID string) ([]Job, error) {
	docs, err := client.List(ctx, JobsCollection)
	if err != nil {
		return nil, err
	}
	jobs := make([]Job, 0, len(docs))
	for _, doc := range docs {
		job, err := fromDocument[Job](doc)
		if err != nil {
			return nil, err
		}
		if job.UserID == userID {
			jobs = append(jobs, job)
		}
	}
	return jobs, nil
}

func handleGetJobs(ctx context.Context, client persistentstore.Client, args any) (any, error) {
	a, err := argsAs[jobsArgs](args)
	if err != nil {
		return nil, err
	}
	jobs, err := listJobs(ctx, client, a.UserID)
	if err != nil {
		return nil, err
	}
	jobs = FilterJobs(jobs, a.JobFilter)
	SortJobs(jobs, a.SortBy, a.Desc)
	return Paginate(jobs, a.Page, a.PageSize), nil
}

func handleGetJob(ctx context.Context, client persistentstore.Client, args any) (any, error) {
	a, err := argsAs[jobArgs](args)
	if err != nil {
		return nil, err
	}
	doc, err := client.Get(ctx, JobsCollection, a.ID)
	if err != nil {
		return nil, err
	}
	return fromDocument[Job](doc)
}

func handleGetLoops(ctx context.Context, client persistentstore.Client, args any) (any, error) {
	a, err := argsAs[userArgs](args)
	if err != nil {
		return nil, err
	}
	docs, err := client.List(ctx, LoopsCollection)
	if err != nil {
		return nil, err
	}
	loops := make([]Loop, 0, len(docs))
	for _, doc := range docs {
		loop, err := fromDocument[Loop](doc)
		if err != nil {
			return nil, err
		}
		if loop.UserID == a.UserID {
			loops = append(loops, loop)
		}
	}
	return loops, nil
}

// loadSettings returns the user's stored settings document normalized against the defaults.
func loadSettings(ctx context.Context, client persistentstore.Client, userID string) (persistentstore.Document, error) {
	doc, err := client.Get(ctx, SettingsCollection, userID)
	if err != nil {
		if persistentstore.MatchKeyNotFoundErr(err) {
			return DefaultSettingsDocument(), nil
		}
		return nil, err
	}
	return NormalizeSettings(doc, DefaultSettingsDocument()), nil
}

func handleGetSettings(ctx context.Context, client persistentstore.Client, args any) (any, error) {
	a, err := argsAs[userArgs](args)
	if err != nil {
		return nil, err
	}
	doc, err := loadSettings(ctx, client, a.UserID)
	if err != nil {
		return nil, err
	}
	return fromDocument[Settings](doc)
}

func handleGetPipelineStats(ctx context.Context, client persistentstore.Client, args any) (any, error) {
	a, err := argsAs[userArgs](args)
	if err != nil {
		return nil, err
	}
	jobs, err := listJobs(ctx, client, a.UserID)
	if err != nil {
		return nil, err
	}
	return ComputeStats(jobs), nil
}

// ///////////////////////////////////////////////////////////////////////////
// Writes
// ///////////////////////////////////////////////////////////////////////////

// ownedDocument loads a document and checks that it belongs to userID.
func ownedDocument[T any](
	ctx context.Context, client persistentstore.Client, collection, id, userID string, owner func(T) string,
) (T, error) {
	var zero T
	doc, err := client.Get(ctx, collection, id)
	if err != nil {
		if persistentstore.MatchKeyNotFoundErr(err) {
			return zero, errors.WrapWithNotFoundError(err, "%s %s not found", collection, id)
		}
		return zero, err
	}
	model, err := fromDocument[T](doc)
	if err != nil {
		return zero, err
	}
	if owner(model) != userID {
		return zero, errors.PermissionDeniedError("permission denied")
	}
	return model, nil
}

func handleUpdateJobStatus(ctx context.Context, client persistentstore.Client, args any) (any, error) {
	a, err := argsAs[UpdateJobStatusArgs](args)
	if err != nil {
		return nil, err
	}
	if !a.Status.IsValid() {
		return nil, errors.InvalidInputError("invalid job status %q", a.Status)
	}

	job, err := ownedDocument(ctx, client, JobsCollection, a.JobID, a.UserID, func(j Job) string { return j.UserID })
	if err != nil {
		return nil, err
	}
	previous := job.Status
	if a.ExpectedStatus != "" && a.ExpectedStatus != previous {
		return nil, errors.ConflictError("job %s is %s, not %s", job.ID, previous, a.ExpectedStatus)
	}
	job.Status = a.Status

	doc, err := toDocument(job)
	if err != nil {
		return nil, err
	}
	if err := client.Put(ctx, JobsCollection, job.ID, doc); err != nil {
		return nil, err
	}

	Logc(ctx).WithFields(LogFields{
		"job":  job.ID,
		"from": previous,
		"to":   job.Status,
	}).Debug("Job status updated.")
	return job, nil
}

func handleDeleteLoop(ctx context.Context, client persistentstore.Client, args any) (any, error) {
	a, err := argsAs[DeleteLoopArgs](args)
	if err != nil {
		return nil, err
	}
	if _, err := ownedDocument(ctx, client, LoopsCollection, a.LoopID, a.UserID,
		func(l Loop) string { return l.UserID }); err != nil {
		return nil, err
	}
	if err := client.Delete(ctx, LoopsCollection, a.LoopID); err != nil {
		return nil, err
	}
	return nil, nil
}

func handleToggleLoop(ctx context.Context, client persistentstore.Client, args any) (any, error) {
	a, err := argsAs[ToggleLoopArgs](args)
	if err != nil {
		return nil, err
	}
	loop, err := ownedDocument(ctx, client, LoopsCollection, a.LoopID, a.UserID, func(l Loop) string { return l.UserID })
	if err != nil {
		return nil, err
	}
	loop.Enabled = a.Enabled

	doc, err := toDocument(loop)
	if err != nil {
		return nil, err
	}
	if err := client.Put(ctx, LoopsCollection, loop.ID, doc); err != nil {
		return nil, err
	}
	return loop, nil
}

func handleUpdateSettings(ctx context.Context, client persistentstore.Client, args any) (any, error) {
	a, err := argsAs[UpdateSettingsArgs](args)
	if err != nil {
		return nil, err
	}
	if a.UserID == "" {
		return nil, errors.InvalidInputError("settings update requires a user")
	}

	current, err := loadSettings(ctx, client, a.UserID)
	if err != nil {
		return nil, err
	}
	currentJSON, err := json.Marshal(current)
	if err != nil {
		return nil, errors.InvalidInputError("stored settings cannot be encoded; %v", err)
	}
	changesJSON, err := json.Marshal(a.Changes)
	if err != nil {
		return nil, errors.InvalidInputError("settings changes cannot be encoded; %v", err)
	}
	mergedJSON, err := jsonpatch.MergePatch(currentJSON, changesJSON)
	if err != nil {
		return nil, errors.InvalidInputError("settings changes cannot be merged; %v", err)
	}

	var merged persistentstore.Document
	if err := json.Unmarshal(mergedJSON, &merged); err != nil {
		return nil, errors.InvalidInputError("merged settings are not an object; %v", err)
	}
	merged = NormalizeSettings(merged, DefaultSettingsDocument())
	if err := client.Put(ctx, SettingsCollection, a.UserID, merged); err != nil {
		return nil, err
	}
	return fromDocument[Settings](merged)
}
