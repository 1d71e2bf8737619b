package model

import "time"

// RunStatus is the lifecycle state of a scrape run.
type RunStatus string

// Run statuses.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// ScrapeStats summarizes the outcome of one successful scrape run.
type ScrapeStats struct {
	Records    int   `json:"records"`
	Rejected   int   `json:"rejected"`
	Duplicates int   `json:"duplicates"`
	Pages      int   `json:"pages"`
	DurationMS int64 `json:"duration_ms"`
}

// Run is one recorded scrape invocation in the run-history store.
type Run struct {
	ID        string       `json:"id"`
	Family    string       `json:"family,omitempty"`
	Status    RunStatus    `json:"status"`
	Stats     *ScrapeStats `json:"stats,omitempty"`
	Error     string       `json:"error,omitempty"`
	StartedAt time.Time    `json:"started_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}
