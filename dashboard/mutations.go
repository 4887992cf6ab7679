// Copyright 2025 NetApp, Inc. All Rights Reserved.

package dashboard

import (
	"encoding/json"

	"github.com/jobloop/querycache/core/cache"
	"github.com/jobloop/querycache/core/mutation"
	"github.com/jobloop/querycache/utils/errors"
)

// CacheView is the read side of the query cache the mutation builders inspect to decide which
// entries to patch.
type CacheView interface {
	Get(key cache.QueryKey) (*cache.Entry, bool)
	KeysForOperation(operation string) []cache.QueryKey
}

var _ CacheView = (*cache.QueryCache)(nil)

// resolved reports whether key is cached with a value that can be patched.
func resolved(view CacheView, key cache.QueryKey) bool {
	entry, ok := view.Get(key)
	return ok && entry.IsResolved()
}

type jobList struct {
	key    cache.QueryKey
	filter JobFilter
}

// jobLists returns the cached job lists belonging to userID with their filters, in key order.
func jobLists(view CacheView, userID string) []jobList {
	var lists []jobList
	for _, key := range view.KeysForOperation(OpGetJobs) {
		args, err := decodeArgs[jobsArgs](key)
		if err != nil || args.UserID != userID {
			continue
		}
		lists = append(lists, jobList{key: key, filter: args.JobFilter})
	}
	return lists
}

func isJob(jobID string) func(any) bool {
	return func(item any) bool {
		job, ok := item.(Job)
		return ok && job.ID == jobID
	}
}

func isLoop(loopID string) func(any) bool {
	return func(item any) bool {
		loop, ok := item.(Loop)
		return ok && loop.ID == loopID
	}
}

func withJobStatus(status JobStatus) func(any) (any, error) {
	return func(item any) (any, error) {
		job := item.(Job)
		job.Status = status
		return job, nil
	}
}

// UpdateJobStatus moves a job to another pipeline stage. Cached lists that keep showing the job
// get the new status in place, lists filtered to another status drop it, and the single-job entry
// is updated. Lists whose membership or order depends on the status are invalidated along with
// the pipeline stats. When the single job is cached its status is sent along as the expected
// one, so the store refuses the update if the job changed underneath the cache.
func UpdateJobStatus(view CacheView, userID, jobID string, status JobStatus) (mutation.Request, error) {
	if !status.IsValid() {
		return mutation.Request{}, errors.InvalidInputError("invalid job status %q", status)
	}
	if userID == "" || jobID == "" {
		return mutation.Request{}, errors.InvalidInputError("job status update requires a user and a job")
	}

	args := UpdateJobStatusArgs{UserID: userID, JobID: jobID, Status: status}
	single := GetJob(jobID)
	if entry, ok := view.Get(single); ok && entry.IsResolved() {
		if job, ok := entry.Value.(Job); ok {
			args.ExpectedStatus = job.Status
		}
	}
	req := mutation.Request{
		Operation: OpUpdateJobStatus,
		Args:      args,
	}

	for _, list := range jobLists(view, userID) {
		key, filter := list.key, list.filter
		affectsMembership := filter.Status != "" || filter.SortBy == SortByStatus || filter.PageSize > 0
		if affectsMembership {
			req.Invalidate = append(req.Invalidate, key)
		}
		if !resolved(view, key) {
			continue
		}
		if filter.Status != "" && filter.Status != status {
			req.Patches = append(req.Patches, mutation.KeyPatch{Key: key, Patch: cache.RemoveFromList(isJob(jobID))})
			continue
		}
		req.Patches = append(req.Patches, mutation.KeyPatch{
			Key:   key,
			Patch: cache.UpdateInList(isJob(jobID), withJobStatus(status)),
		})
	}

	if resolved(view, single) {
		req.Patches = append(req.Patches, mutation.KeyPatch{
			Key: single,
			Patch: cache.Typed(func(job Job) (Job, error) {
				job.Status = status
				return job, nil
			}),
		})
	}

	req.Invalidate = append(req.Invalidate, GetPipelineStats(userID))
	return req, nil
}

// DeleteLoop removes a loop from the cached loop list. Job lists filtered to the loop are
// invalidated.
func DeleteLoop(view CacheView, userID, loopID string) (mutation.Request, error) {
	if userID == "" || loopID == "" {
		return mutation.Request{}, errors.InvalidInputError("loop deletion requires a user and a loop")
	}

	req := mutation.Request{
		Operation: OpDeleteLoop,
		Args:      DeleteLoopArgs{UserID: userID, LoopID: loopID},
	}
	if loops := GetLoops(userID); resolved(view, loops) {
		req.Patches = append(req.Patches, mutation.KeyPatch{Key: loops, Patch: cache.RemoveFromList(isLoop(loopID))})
	}
	for _, list := range jobLists(view, userID) {
		if list.filter.LoopID == loopID {
			req.Invalidate = append(req.Invalidate, list.key)
		}
	}
	return req, nil
}

// ToggleLoop enables or disables a loop in the cached loop list.
func ToggleLoop(view CacheView, userID, loopID string, enabled bool) (mutation.Request, error) {
	if userID == "" || loopID == "" {
		return mutation.Request{}, errors.InvalidInputError("loop toggle requires a user and a loop")
	}

	req := mutation.Request{
		Operation: OpToggleLoop,
		Args:      ToggleLoopArgs{UserID: userID, LoopID: loopID, Enabled: enabled},
	}
	if loops := GetLoops(userID); resolved(view, loops) {
		req.Patches = append(req.Patches, mutation.KeyPatch{
			Key: loops,
			Patch: cache.UpdateInList(isLoop(loopID), func(item any) (any, error) {
				loop := item.(Loop)
				loop.Enabled = enabled
				return loop, nil
			}),
		})
	}
	return req, nil
}

// UpdateSettings merges changes into the user's settings. Changes follow JSON merge patch rules,
// so a null value resets a key to its default once the store normalizes the document. The cached
// settings are invalidated so the normalized document replaces the optimistic one.
func UpdateSettings(view CacheView, userID string, changes map[string]any) (mutation.Request, error) {
	if userID == "" {
		return mutation.Request{}, errors.InvalidInputError("settings update requires a user")
	}
	patch, err := json.Marshal(changes)
	if err != nil {
		return mutation.Request{}, errors.InvalidInputError("settings changes cannot be encoded; %v", err)
	}

	key := GetSettings(userID)
	req := mutation.Request{
		Operation:  OpUpdateSettings,
		Args:       UpdateSettingsArgs{UserID: userID, Changes: changes},
		Invalidate: []cache.QueryKey{key},
	}
	if resolved(view, key) {
		req.Patches = append(req.Patches, mutation.KeyPatch{Key: key, Patch: cache.MergePatch(patch)})
	}
	return req, nil
}
