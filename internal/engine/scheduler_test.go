package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	ptestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	accrualsMocks "github.com/donaldgifford/concur-accruals/internal/accruals/mocks"
	"github.com/donaldgifford/concur-accruals/internal/metrics"
	notifyMocks "github.com/donaldgifford/concur-accruals/internal/notify/mocks"
	storeMocks "github.com/donaldgifford/concur-accruals/internal/store/mocks"
	domain "github.com/donaldgifford/concur-accruals/pkg/types"
)

// newSchedulerTestEngine returns an engine whose dependencies expect no calls.
func newSchedulerTestEngine(t *testing.T) *Engine {
	t.Helper()
	return newTestEngine(accrualsMocks.NewMockTokenRefresher(t), notifyMocks.NewMockNotifier(t))
}

func TestNewScheduler_RegistersCronEntry(t *testing.T) {
	t.Parallel()

	sched, err := NewScheduler(newSchedulerTestEngine(t), nil, 15*time.Minute, quietLogger())
	require.NoError(t, err)

	assert.Len(t, sched.Entries(), 1)
	assert.NotZero(t, sched.refreshEntryID)
	assert.Contains(t, sched.holder, "/")
}

func TestNewScheduler_RejectsNonPositiveInterval(t *testing.T) {
	t.Parallel()

	_, err := NewScheduler(newSchedulerTestEngine(t), nil, 0, quietLogger())
	require.Error(t, err)
}

func TestScheduler_StartStop(t *testing.T) {
	t.Parallel()

	sched, err := NewScheduler(newSchedulerTestEngine(t), nil, time.Hour, quietLogger())
	require.NoError(t, err)

	sched.Start()
	ctx := sched.Stop()
	<-ctx.Done()
}

func TestScheduler_SyncNextRunTimestamps(t *testing.T) {
	t.Parallel()

	sched, err := NewScheduler(newSchedulerTestEngine(t), nil, 15*time.Minute, quietLogger())
	require.NoError(t, err)

	sched.Start()
	defer sched.Stop()

	sched.SyncNextRunTimestamps()

	next := ptestutil.ToFloat64(metrics.SchedulerNextRefreshTimestamp)
	assert.Greater(t, next, float64(0), "next refresh timestamp should be set")
}

func TestScheduler_RunJob_Success(t *testing.T) {
	t.Parallel()

	ms := storeMocks.NewMockStore(t)
	sched, err := NewScheduler(newSchedulerTestEngine(t), ms, time.Hour, quietLogger())
	require.NoError(t, err)

	ms.EXPECT().
		AcquireSchedulerLock(mock.Anything, "test-job", sched.holder, 5*time.Minute).
		Return(true, nil).Once()
	ms.EXPECT().InsertJobRun(mock.Anything, "test-job").Return("run-id-1", nil).Once()
	ms.EXPECT().
		CompleteJobRun(mock.Anything, "run-id-1", domain.JobSucceeded, "").
		Return(nil).Once()
	ms.EXPECT().
		ReleaseSchedulerLock(mock.Anything, "test-job", sched.holder).
		Return(nil).Once()

	called := false
	err = sched.runJob(context.Background(), "test-job", 5*time.Minute, func(_ context.Context) error {
		called = true
		return nil
	})

	require.NoError(t, err)
	assert.True(t, called)
}

func TestScheduler_RunJob_Failure(t *testing.T) {
	t.Parallel()

	ms := storeMocks.NewMockStore(t)
	sched, err := NewScheduler(newSchedulerTestEngine(t), ms, time.Hour, quietLogger())
	require.NoError(t, err)

	jobErr := errors.New("something went wrong")

	ms.EXPECT().
		AcquireSchedulerLock(mock.Anything, "fail-job", mock.Anything, mock.Anything).
		Return(true, nil).Once()
	ms.EXPECT().InsertJobRun(mock.Anything, "fail-job").Return("run-id-2", nil).Once()
	ms.EXPECT().
		CompleteJobRun(mock.Anything, "run-id-2", domain.JobFailed, jobErr.Error()).
		Return(nil).Once()
	ms.EXPECT().
		ReleaseSchedulerLock(mock.Anything, "fail-job", mock.Anything).
		Return(nil).Once()

	err = sched.runJob(context.Background(), "fail-job", 5*time.Minute, func(_ context.Context) error {
		return jobErr
	})

	require.ErrorIs(t, err, jobErr)
}

func TestScheduler_RunJob_LockHeldElsewhere(t *testing.T) {
	t.Parallel()

	ms := storeMocks.NewMockStore(t)
	sched, err := NewScheduler(newSchedulerTestEngine(t), ms, time.Hour, quietLogger())
	require.NoError(t, err)

	ms.EXPECT().
		AcquireSchedulerLock(mock.Anything, "busy-job", mock.Anything, mock.Anything).
		Return(false, nil).Once()

	err = sched.runJob(context.Background(), "busy-job", time.Minute, func(_ context.Context) error {
		t.Fatal("job must not run without the lock")
		return nil
	})
	require.NoError(t, err)
}

func TestScheduler_RunJob_LockError(t *testing.T) {
	t.Parallel()

	ms := storeMocks.NewMockStore(t)
	sched, err := NewScheduler(newSchedulerTestEngine(t), ms, time.Hour, quietLogger())
	require.NoError(t, err)

	ms.EXPECT().
		AcquireSchedulerLock(mock.Anything, "job", mock.Anything, mock.Anything).
		Return(false, errors.New("db down")).Once()

	err = sched.runJob(context.Background(), "job", time.Minute, func(_ context.Context) error {
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "acquiring job lock")
}

func TestScheduler_RunTokenRefreshNow_WithoutStore(t *testing.T) {
	t.Parallel()

	tokens := accrualsMocks.NewMockTokenRefresher(t)
	tokens.EXPECT().Refresh(mock.Anything).
		Return(&oauth2.Token{AccessToken: "at", Expiry: testNow.Add(time.Hour)}, nil).Once()
	eng := newTestEngine(tokens, notifyMocks.NewMockNotifier(t))

	sched, err := NewScheduler(eng, nil, time.Hour, quietLogger())
	require.NoError(t, err)

	before := ptestutil.ToFloat64(metrics.SchedulerJobRunsTotal.WithLabelValues(JobTokenRefresh, domain.JobSucceeded))
	require.NoError(t, sched.RunTokenRefreshNow(context.Background()))
	after := ptestutil.ToFloat64(metrics.SchedulerJobRunsTotal.WithLabelValues(JobTokenRefresh, domain.JobSucceeded))
	assert.Greater(t, after, before)
}

func TestScheduler_RecoverStaleJobs(t *testing.T) {
	t.Parallel()

	ms := storeMocks.NewMockStore(t)
	sched, err := NewScheduler(newSchedulerTestEngine(t), ms, time.Hour, quietLogger())
	require.NoError(t, err)

	ms.EXPECT().
		RecoverStaleJobRuns(mock.Anything, 2*time.Hour).
		Return(3, nil).Once()

	sched.RecoverStaleJobRuns(context.Background())

	// Without a store it is a no-op.
	noStore, err := NewScheduler(newSchedulerTestEngine(t), nil, time.Hour, quietLogger())
	require.NoError(t, err)
	noStore.RecoverStaleJobRuns(context.Background())
}
