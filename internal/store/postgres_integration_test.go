//go:build integration

package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/donaldgifford/concur-accruals/internal/store"
	domain "github.com/donaldgifford/concur-accruals/pkg/types"
)

func setupPostgres(t *testing.T) *store.PostgresStore {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("accruals_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := store.NewPostgresStore(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(s.Close)

	require.NoError(t, s.Migrate(ctx))

	return s
}

func TestPostgresStore_Migrate_Idempotent(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	require.NoError(t, s.Ping(ctx))
	require.NoError(t, s.Migrate(ctx))
}

func TestPostgresStore_RefreshTokens(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	_, err := s.LatestRefreshToken(ctx)
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.SaveRefreshToken(ctx, "rt-1", store.SourceSeed))
	require.NoError(t, s.SaveRefreshToken(ctx, "rt-2", store.SourceRotation))

	got, err := s.LatestRefreshToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "rt-2", got)

	rotations, err := s.ListRefreshTokenRotations(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rotations, 2)
	assert.Equal(t, store.SourceRotation, rotations[0].Source)
	assert.Equal(t, store.SourceSeed, rotations[1].Source)

	require.Error(t, s.SaveRefreshToken(ctx, "  ", store.SourceRotation))
}

func TestPostgresStore_RefreshTokens_Pruned(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	for i := range 25 {
		require.NoError(t, s.SaveRefreshToken(ctx, fmt.Sprintf("rt-%d", i), store.SourceRotation))
	}

	rotations, err := s.ListRefreshTokenRotations(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, rotations, 20)
}

func TestPostgresStore_JobRuns(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	id, err := s.InsertJobRun(ctx, "token_refresh")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.NoError(t, s.CompleteJobRun(ctx, id, domain.JobFailed, "AuthRejected"))

	runs, err := s.ListJobRuns(ctx, "token_refresh", 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, domain.JobFailed, runs[0].Status)
	assert.Equal(t, "AuthRejected", runs[0].ErrorText)
	assert.NotNil(t, runs[0].CompletedAt)

	_, err = s.InsertJobRun(ctx, "token_refresh")
	require.NoError(t, err)
	latest, err := s.ListLatestJobRuns(ctx)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, domain.JobRunning, latest[0].Status)

	crashed, err := s.RecoverStaleJobRuns(ctx, -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, crashed)
}

func TestPostgresStore_SchedulerLock(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	ok, err := s.AcquireSchedulerLock(ctx, "token_refresh", "pod-a", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.AcquireSchedulerLock(ctx, "token_refresh", "pod-b", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "held by pod-a")

	ok, err = s.AcquireSchedulerLock(ctx, "token_refresh", "pod-a", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "holder may renew")

	require.NoError(t, s.ReleaseSchedulerLock(ctx, "token_refresh", "pod-a"))

	ok, err = s.AcquireSchedulerLock(ctx, "token_refresh", "pod-b", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}
