// Copyright 2025 NetApp, Inc. All Rights Reserved.

package dashboard

import (
	"sort"
	"strings"
)

const (
	SortByPosted  = "postedAt"
	SortByScore   = "score"
	SortByCompany = "company"
	SortByTitle   = "title"
	SortByStatus  = "status"
)

// Matches reports whether a job passes every non-zero field of the filter.
func (f JobFilter) Matches(job Job) bool {
	if f.Status != "" && job.Status != f.Status {
		return false
	}
	if f.LoopID != "" && job.LoopID != f.LoopID {
		return false
	}
	if f.MinScore > 0 && job.Score < f.MinScore {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(job.Title), needle) &&
			!strings.Contains(strings.ToLower(job.Company), needle) {
			return false
		}
	}
	return true
}

// FilterJobs returns the jobs that pass filter, keeping their order.
func FilterJobs(jobs []Job, filter JobFilter) []Job {
	result := make([]Job, 0, len(jobs))
	for _, job := range jobs {
		if filter.Matches(job) {
			result = append(result, job)
		}
	}
	return result
}

func statusRank(s JobStatus) int {
	for i, status := range JobStatuses {
		if s == status {
			return i
		}
	}
	return len(JobStatuses)
}

// SortJobs sorts jobs in place by field, breaking ties by ID. Unknown fields sort by posting
// date.
func SortJobs(jobs []Job, field string, desc bool) {
	less := func(a, b Job) int {
		switch field {
		case SortByScore:
			switch {
			case a.Score < b.Score:
				return -1
			case a.Score > b.Score:
				return 1
			}
			return 0
		case SortByCompany:
			return strings.Compare(strings.ToLower(a.Company), strings.ToLower(b.Company))
		case SortByTitle:
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		case SortByStatus:
			return statusRank(a.Status) - statusRank(b.Status)
		default:
			return strings.Compare(a.PostedAt, b.PostedAt)
		}
	}

	sort.SliceStable(jobs, func(i, j int) bool {
		c := less(jobs[i], jobs[j])
		if c == 0 {
			return jobs[i].ID < jobs[j].ID
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
}

// Paginate returns the 1-based page of items. A non-positive size returns everything; pages past
// the end are empty.
func Paginate[T any](items []T, page, size int) []T {
	if size <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := min(start+size, len(items))
	return items[start:end]
}

// ComputeStats counts jobs per status. Every known status is present in the result.
func ComputeStats(jobs []Job) PipelineStats {
	stats := PipelineStats{Counts: make(map[JobStatus]int, len(JobStatuses))}
	for _, status := range JobStatuses {
		stats.Counts[status] = 0
	}
	for _, job := range jobs {
		stats.Counts[job.Status]++
		stats.Total++
	}
	return stats
}
