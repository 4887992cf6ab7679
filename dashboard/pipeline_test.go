// Copyright 2025 NetApp, Inc. All Rights Reserved.

package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterJobs(t *testing.T) {
	jobs := fixtureJobs()[:4]

	tests := []struct {
		name   string
		filter JobFilter
		want   []string
	}{
		{"empty filter keeps everything", JobFilter{}, []string{"j1", "j2", "j3", "j4"}},
		{"status", JobFilter{Status: JobStatusApplied}, []string{"j1", "j4"}},
		{"loop", JobFilter{LoopID: "l2"}, []string{"j3", "j4"}},
		{"min score", JobFilter{MinScore: 80}, []string{"j1", "j3"}},
		{"search is case insensitive over title and company", JobFilter{Search: "ACME"}, []string{"j1", "j4"}},
		{"combined", JobFilter{Status: JobStatusApplied, LoopID: "l1"}, []string{"j1"}},
		{"no match", JobFilter{Status: JobStatusOffer}, []string{}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, jobIDs(FilterJobs(jobs, test.filter)))
		})
	}
}

func TestSortJobs(t *testing.T) {
	tests := []struct {
		field string
		desc  bool
		want  []string
	}{
		{"", false, []string{"j3", "j4", "j1", "j2"}},
		{SortByPosted, true, []string{"j2", "j1", "j4", "j3"}},
		{SortByScore, true, []string{"j3", "j1", "j4", "j2"}},
		{SortByScore, false, []string{"j2", "j4", "j1", "j3"}},
		{SortByCompany, false, []string{"j1", "j4", "j2", "j3"}},
		{SortByTitle, false, []string{"j1", "j3", "j2", "j4"}},
		{SortByStatus, false, []string{"j2", "j1", "j4", "j3"}},
	}
	for _, test := range tests {
		t.Run(test.field, func(t *testing.T) {
			jobs := fixtureJobs()[:4]
			SortJobs(jobs, test.field, test.desc)
			assert.Equal(t, test.want, jobIDs(jobs))
		})
	}
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	assert.Equal(t, []int{1, 2}, Paginate(items, 1, 2))
	assert.Equal(t, []int{5}, Paginate(items, 3, 2))
	assert.Equal(t, []int{}, Paginate(items, 4, 2))
	assert.Equal(t, []int{1, 2}, Paginate(items, 0, 2), "pages start at 1")
	assert.Equal(t, items, Paginate(items, 2, 0), "no page size means no paging")
}

func TestComputeStats(t *testing.T) {
	stats := ComputeStats(fixtureJobs()[:4])

	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, map[JobStatus]int{
		JobStatusSaved:     1,
		JobStatusApplied:   2,
		JobStatusInterview: 1,
		JobStatusOffer:     0,
		JobStatusRejected:  0,
	}, stats.Counts)

	empty := ComputeStats(nil)
	assert.Equal(t, 0, empty.Total)
	assert.Len(t, empty.Counts, len(JobStatuses))
}

func TestJobStatus_IsValid(t *testing.T) {
	for _, status := range JobStatuses {
		assert.True(t, status.IsValid(), status)
	}
	assert.False(t, JobStatus("archived").IsValid())
	assert.False(t, JobStatus("").IsValid())
}
