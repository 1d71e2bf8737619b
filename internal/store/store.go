// Package store persists the run ledger: one row per scrape invocation with
// its outcome stats. History is advisory — the published artifact is the
// JSON file, and a store failure must never fail a scrape.
package store

import (
	"context"
	"time"

	"github.com/sells-group/modelscan/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status       model.RunStatus `json:"status,omitempty"`
	StartedAfter time.Time       `json:"started_after,omitempty"`
	Limit        int             `json:"limit,omitempty"`
	Offset       int             `json:"offset,omitempty"`
}

// Store defines the run-history persistence interface.
type Store interface {
	// CreateRun inserts a running ledger row and returns it.
	CreateRun(ctx context.Context, family string) (*model.Run, error)

	// CompleteRun marks a run succeeded and records its stats.
	CompleteRun(ctx context.Context, runID string, stats model.ScrapeStats) error

	// FailRun marks a run failed with the fatal error's message.
	FailRun(ctx context.Context, runID string, cause string) error

	// GetRun returns one run by id.
	GetRun(ctx context.Context, runID string) (*model.Run, error)

	// ListRuns returns runs matching the filter, most recent first.
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
