package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/donaldgifford/concur-accruals/internal/metrics"
	domain "github.com/donaldgifford/concur-accruals/pkg/types"
)

// JobTokenRefresh names the proactive refresh job in job history.
const JobTokenRefresh = "token_refresh"

const (
	// staleJobThreshold marks running job rows older than this as crashed.
	staleJobThreshold = 2 * time.Hour
	jobTimeout        = 2 * time.Minute
)

// JobStore persists job history and the cross-replica scheduler lock.
type JobStore interface {
	InsertJobRun(ctx context.Context, jobName string) (string, error)
	CompleteJobRun(ctx context.Context, id, status, errText string) error
	RecoverStaleJobRuns(ctx context.Context, olderThan time.Duration) (int, error)
	AcquireSchedulerLock(ctx context.Context, jobName, holder string, ttl time.Duration) (bool, error)
	ReleaseSchedulerLock(ctx context.Context, jobName, holder string) error
}

// Scheduler runs engine jobs on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	engine *Engine
	store  JobStore // nil without a database
	holder string
	log    *slog.Logger

	refreshEntryID cron.EntryID
	refreshEvery   time.Duration
}

// NewScheduler creates a Scheduler that refreshes the token every
// refreshInterval. store may be nil, in which case jobs run unlocked and
// unrecorded.
func NewScheduler(
	eng *Engine,
	store JobStore,
	refreshInterval time.Duration,
	log *slog.Logger,
) (*Scheduler, error) {
	if refreshInterval <= 0 {
		return nil, fmt.Errorf("refresh interval must be positive, got %s", refreshInterval)
	}

	host, _ := os.Hostname()
	s := &Scheduler{
		cron:         cron.New(),
		engine:       eng,
		store:        store,
		holder:       host + "/" + uuid.NewString(),
		log:          log,
		refreshEvery: refreshInterval,
	}

	id, err := s.cron.AddFunc("@every "+refreshInterval.String(), s.runTokenRefresh)
	if err != nil {
		return nil, fmt.Errorf("scheduling token refresh: %w", err)
	}
	s.refreshEntryID = id

	return s, nil
}

// Start begins running scheduled tasks.
func (s *Scheduler) Start() {
	s.log.Info("scheduler started", "token_refresh_every", s.refreshEvery, "holder", s.holder)
	s.cron.Start()
	s.SyncNextRunTimestamps()
}

// Stop gracefully stops the scheduler, waiting for running jobs to finish.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("scheduler stopping")
	return s.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

// SyncNextRunTimestamps publishes the next refresh time as a gauge.
func (s *Scheduler) SyncNextRunTimestamps() {
	next := s.cron.Entry(s.refreshEntryID).Next
	if !next.IsZero() {
		metrics.SchedulerNextRefreshTimestamp.Set(float64(next.Unix()))
	}
}

// RecoverStaleJobRuns marks job rows left running by a crashed process.
func (s *Scheduler) RecoverStaleJobRuns(ctx context.Context) {
	if s.store == nil {
		return
	}
	n, err := s.store.RecoverStaleJobRuns(ctx, staleJobThreshold)
	if err != nil {
		s.log.Error("recovering stale job runs", "error", err)
		return
	}
	if n > 0 {
		s.log.Warn("marked stale job runs as crashed", "count", n)
	}
}

// RunTokenRefreshNow runs the refresh job immediately under the same lock
// and bookkeeping as the scheduled run.
func (s *Scheduler) RunTokenRefreshNow(ctx context.Context) error {
	return s.runJob(ctx, JobTokenRefresh, jobTimeout, s.engine.RunTokenRefresh)
}

func (s *Scheduler) runTokenRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	defer s.SyncNextRunTimestamps()

	if err := s.RunTokenRefreshNow(ctx); err != nil {
		s.log.Error("scheduled token refresh failed", "error", err)
	}
}

// runJob takes the scheduler lock, records a job run and executes fn. A
// lock held by another replica skips the run without error.
func (s *Scheduler) runJob(
	ctx context.Context,
	name string,
	lockTTL time.Duration,
	fn func(context.Context) error,
) error {
	if s.store == nil {
		err := fn(ctx)
		recordJobMetric(name, err)
		return err
	}

	ok, err := s.store.AcquireSchedulerLock(ctx, name, s.holder, lockTTL)
	if err != nil {
		return fmt.Errorf("acquiring %s lock: %w", name, err)
	}
	if !ok {
		s.log.Debug("job lock held elsewhere, skipping", "job", name)
		return nil
	}
	defer func() {
		if err := s.store.ReleaseSchedulerLock(context.WithoutCancel(ctx), name, s.holder); err != nil {
			s.log.Warn("releasing job lock", "job", name, "error", err)
		}
	}()

	runID, err := s.store.InsertJobRun(ctx, name)
	if err != nil {
		return fmt.Errorf("recording %s start: %w", name, err)
	}

	jobErr := fn(ctx)
	recordJobMetric(name, jobErr)

	status, errText := domain.JobSucceeded, ""
	if jobErr != nil {
		status, errText = domain.JobFailed, jobErr.Error()
	}
	if err := s.store.CompleteJobRun(context.WithoutCancel(ctx), runID, status, errText); err != nil {
		s.log.Error("recording job completion", "job", name, "run_id", runID, "error", err)
	}

	return jobErr
}

func recordJobMetric(name string, err error) {
	status := domain.JobSucceeded
	if err != nil {
		status = domain.JobFailed
	}
	metrics.SchedulerJobRunsTotal.WithLabelValues(name, status).Inc()
}
