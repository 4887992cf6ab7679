// Copyright 2025 NetApp, Inc. All Rights Reserved.

package dashboard

import (
	"github.com/jobloop/querycache/core/cache"
)

const (
	OpGetJobs          = "getJobs"
	OpGetJob           = "getJob"
	OpGetLoops         = "getLoops"
	OpGetSettings      = "getSettings"
	OpGetPipelineStats = "getPipelineStats"
)

// JobFilter narrows and orders a job list. Zero fields are left out of the query key, so an
// empty filter yields getJobs({userId}).
type JobFilter struct {
	Status   JobStatus `json:"status,omitempty"`
	LoopID   string    `json:"loopId,omitempty"`
	Search   string    `json:"search,omitempty"`
	MinScore float64   `json:"minScore,omitempty"`
	SortBy   string    `json:"sortBy,omitempty"`
	Desc     bool      `json:"desc,omitempty"`
	Page     int       `json:"page,omitempty"`
	PageSize int       `json:"pageSize,omitempty"`
}

type jobsArgs struct {
	UserID string `json:"userId"`
	JobFilter
}

type userArgs struct {
	UserID string `json:"userId"`
}

type jobArgs struct {
	ID string `json:"id"`
}

func GetJobs(userID string, filter JobFilter) cache.QueryKey {
	return cache.MustQueryKey(OpGetJobs, jobsArgs{UserID: userID, JobFilter: filter})
}

func GetJob(jobID string) cache.QueryKey {
	return cache.MustQueryKey(OpGetJob, jobArgs{ID: jobID})
}

func GetLoops(userID string) cache.QueryKey {
	return cache.MustQueryKey(OpGetLoops, userArgs{UserID: userID})
}

func GetSettings(userID string) cache.QueryKey {
	return cache.MustQueryKey(OpGetSettings, userArgs{UserID: userID})
}

func GetPipelineStats(userID string) cache.QueryKey {
	return cache.MustQueryKey(OpGetPipelineStats, userArgs{UserID: userID})
}

// decodeArgs recovers the typed arguments of a key built by this package.
func decodeArgs[T any](key cache.QueryKey) (T, error) {
	var args T
	doc, ok := key.Args().(map[string]any)
	if !ok {
		return args, nil
	}
	return fromDocument[T](doc)
}

// userOf returns the userId argument of a key, if it has one.
func userOf(key cache.QueryKey) string {
	args, err := decodeArgs[userArgs](key)
	if err != nil {
		return ""
	}
	return args.UserID
}
