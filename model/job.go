package model

import "time"

// ContentType identifies the kind of media a job produces.
type ContentType string

const (
	ContentMusic ContentType = "music"
	ContentVideo ContentType = "video"
	ContentImage ContentType = "image"
)

// JobStatus represents the lifecycle state of a generation job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	StatusDownloaded JobStatus = "downloaded"
)

// IsTerminal returns true if no further transition is valid from s.
func (s JobStatus) IsTerminal() bool {
	return s == StatusFailed || s == StatusDownloaded
}

// validTransitions is the only set of real state changes a job may make.
var validTransitions = map[JobStatus][]JobStatus{
	StatusQueued:     {StatusProcessing, StatusCompleted, StatusFailed},
	StatusProcessing: {StatusCompleted, StatusFailed},
	StatusCompleted:  {StatusDownloaded},
}

// CanTransition reports whether a job may move from s to next. A status
// sync may revisit the non-terminal queued and processing states, so
// those two allow an idempotent self-transition.
func (s JobStatus) CanTransition(next JobStatus) bool {
	if s == next {
		return s == StatusQueued || s == StatusProcessing
	}
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ParseJobStatus validates a user-supplied status string.
func ParseJobStatus(s string) (JobStatus, bool) {
	switch JobStatus(s) {
	case StatusQueued, StatusProcessing, StatusCompleted, StatusFailed, StatusDownloaded:
		return JobStatus(s), true
	}
	return "", false
}

// Job is one tracked generation request. The ID is the vendor-assigned
// generation identifier; it is never invented locally. A job is
// append-only except for Status, OutputPath and UpdatedAt.
type Job struct {
	ID           string         `gorm:"primaryKey;size:191" json:"id"`
	Provider     string         `gorm:"index;size:64" json:"provider"`
	ContentType  ContentType    `gorm:"size:16" json:"content_type"`
	Prompt       string         `json:"prompt"`
	Fingerprint  string         `gorm:"index;size:64" json:"fingerprint"`
	Status       JobStatus      `gorm:"index;size:16" json:"status"`
	OutputPath   string         `json:"output_path"`
	Command      string         `json:"command"`
	Metadata     map[string]any `gorm:"serializer:json" json:"metadata,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// JobStats is the aggregate view over the job store, recomputed per call.
type JobStats struct {
	Total      int64                 `json:"total"`
	ByStatus   map[JobStatus]int64   `json:"by_status"`
	ByProvider map[string]int64      `json:"by_provider"`
	ByType     map[ContentType]int64 `json:"by_type"`
	Recent24h  int64                 `json:"recent_24h"`
}
