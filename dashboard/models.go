// Copyright 2025 NetApp, Inc. All Rights Reserved.

package dashboard

import (
	"encoding/json"

	persistentstore "github.com/jobloop/querycache/persistent_store"
	"github.com/jobloop/querycache/utils/errors"
)

const (
	JobsCollection     = "jobs"
	LoopsCollection    = "loops"
	SettingsCollection = "settings"
)

// JobStatus is a job's position in the application pipeline.
type JobStatus string

const (
	JobStatusSaved     JobStatus = "saved"
	JobStatusApplied   JobStatus = "applied"
	JobStatusInterview JobStatus = "interview"
	JobStatusOffer     JobStatus = "offer"
	JobStatusRejected  JobStatus = "rejected"
)

// JobStatuses lists the pipeline stages in order.
var JobStatuses = []JobStatus{
	JobStatusSaved,
	JobStatusApplied,
	JobStatusInterview,
	JobStatusOffer,
	JobStatusRejected,
}

func (s JobStatus) IsValid() bool {
	for _, status := range JobStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Job is a posting matched by one of the user's loops.
type Job struct {
	ID      string    `json:"id"`
	UserID  string    `json:"userId"`
	LoopID  string    `json:"loopId,omitempty"`
	Title   string    `json:"title"`
	Company string    `json:"company"`
	Status  JobStatus `json:"status"`
	// Score is the match score assigned by the loop, 0 to 100.
	Score float64 `json:"score"`
	// PostedAt is an RFC 3339 timestamp, so it sorts lexically.
	PostedAt string `json:"postedAt,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// Loop is a saved search that keeps matching new postings while enabled.
type Loop struct {
	ID      string `json:"id"`
	UserID  string `json:"userId"`
	Name    string `json:"name"`
	Query   string `json:"query"`
	Enabled bool   `json:"enabled"`
}

type NotificationSettings struct {
	Email       bool   `json:"email"`
	Push        bool   `json:"push"`
	DigestHour  int    `json:"digestHour"`
	DigestEvery string `json:"digestEvery"`
}

type SearchSettings struct {
	Locations []string `json:"locations"`
	Remote    bool     `json:"remote"`
	MinScore  float64  `json:"minScore"`
}

// Settings is the per-user account settings document.
type Settings struct {
	DisplayName   string               `json:"displayName"`
	Theme         string               `json:"theme"`
	Notifications NotificationSettings `json:"notifications"`
	Search        SearchSettings       `json:"search"`
}

// PipelineStats counts a user's jobs per status.
type PipelineStats struct {
	Counts map[JobStatus]int `json:"counts"`
	Total  int               `json:"total"`
}

// fromDocument decodes a store document into a model.
func fromDocument[T any](doc persistentstore.Document) (T, error) {
	var model T
	raw, err := json.Marshal(doc)
	if err != nil {
		return model, errors.InvalidInputError("document cannot be encoded; %v", err)
	}
	if err := json.Unmarshal(raw, &model); err != nil {
		return model, errors.InvalidInputError("document is not a %T; %v", model, err)
	}
	return model, nil
}

// toDocument encodes a model as a store document.
func toDocument(model any) (persistentstore.Document, error) {
	raw, err := json.Marshal(model)
	if err != nil {
		return nil, errors.InvalidInputError("%T cannot be encoded; %v", model, err)
	}
	var doc persistentstore.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.InvalidInputError("%T is not an object; %v", model, err)
	}
	return doc, nil
}
