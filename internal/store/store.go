// Package store persists workflow run history and removal audits.
package store

import (
	"context"

	"github.com/cars24/connector-cli/internal/model"
)

// Store records workflow executions for the runs command and the
// status server.
type Store interface {
	Migrate(ctx context.Context) error
	CreateRun(ctx context.Context, workflow, targetDate string) (*model.Run, error)
	CompleteRun(ctx context.Context, run *model.Run) error
	FailRun(ctx context.Context, runID string, runErr error) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, limit int) ([]model.Run, error)
	SaveRemovals(ctx context.Context, runID string, removals []model.Removal) error
	ListRemovals(ctx context.Context, runID string) ([]model.Removal, error)
	Close() error
}
