// Package store persists rotated Concur refresh tokens and scheduler
// bookkeeping in PostgreSQL.
package store

import (
	"context"
	"errors"
	"time"

	domain "github.com/donaldgifford/concur-accruals/pkg/types"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// Store defines the persistence interface.
type Store interface {
	// Refresh tokens
	SaveRefreshToken(ctx context.Context, token, source string) error
	LatestRefreshToken(ctx context.Context) (string, error)
	ListRefreshTokenRotations(ctx context.Context, limit int) ([]domain.RefreshTokenRotation, error)

	// Job runs
	InsertJobRun(ctx context.Context, jobName string) (string, error)
	CompleteJobRun(ctx context.Context, id, status, errText string) error
	ListJobRuns(ctx context.Context, jobName string, limit int) ([]domain.JobRun, error)
	ListLatestJobRuns(ctx context.Context) ([]domain.JobRun, error)
	RecoverStaleJobRuns(ctx context.Context, olderThan time.Duration) (int, error)

	// Scheduler locks
	AcquireSchedulerLock(ctx context.Context, jobName, holder string, ttl time.Duration) (bool, error)
	ReleaseSchedulerLock(ctx context.Context, jobName, holder string) error

	// Lifecycle
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
}
