package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/donaldgifford/concur-accruals/pkg/types"
)

const (
	defaultPoolSize = 4

	// keepRefreshTokens bounds the rotation history kept in the table.
	keepRefreshTokens = 20
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to connString and verifies the connection. The
// pool size comes from pool_max_conns when the connection string sets it.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	if !strings.Contains(connString, "pool_max_conns") {
		cfg.MaxConns = defaultPoolSize
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close shuts down the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping verifies the database connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies pending SQL schema migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return RunMigrations(ctx, s.pool)
}

// SaveRefreshToken appends a refresh token and prunes old history in the
// same transaction.
func (s *PostgresStore) SaveRefreshToken(ctx context.Context, token, source string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("refresh token is empty")
	}
	if source == "" {
		source = "rotation"
	}

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, queryInsertRefreshToken, token, source); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, queryPruneRefreshTokens, keepRefreshTokens)
		return err
	})
	if err != nil {
		return fmt.Errorf("saving refresh token: %w", err)
	}
	return nil
}

// LatestRefreshToken returns the most recently saved refresh token.
func (s *PostgresStore) LatestRefreshToken(ctx context.Context) (string, error) {
	var token string
	err := s.pool.QueryRow(ctx, queryLatestRefreshToken).Scan(&token)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("querying refresh token: %w", err)
	}
	return token, nil
}

// ListRefreshTokenRotations returns rotation metadata, newest first.
func (s *PostgresStore) ListRefreshTokenRotations(
	ctx context.Context,
	limit int,
) ([]domain.RefreshTokenRotation, error) {
	rows, err := s.pool.Query(ctx, queryListRefreshTokenRotations, limit)
	if err != nil {
		return nil, fmt.Errorf("querying refresh token rotations: %w", err)
	}
	defer rows.Close()

	rotations, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.RefreshTokenRotation])
	if err != nil {
		return nil, fmt.Errorf("scanning refresh token rotation: %w", err)
	}
	return rotations, nil
}

// InsertJobRun records the start of a scheduled job and returns its UUID.
func (s *PostgresStore) InsertJobRun(ctx context.Context, jobName string) (string, error) {
	var id string
	if err := s.pool.QueryRow(ctx, queryInsertJobRun, jobName).Scan(&id); err != nil {
		return "", fmt.Errorf("inserting job run: %w", err)
	}
	return id, nil
}

// CompleteJobRun marks a job run as finished.
func (s *PostgresStore) CompleteJobRun(ctx context.Context, id, status, errText string) error {
	if _, err := s.pool.Exec(ctx, queryCompleteJobRun, id, status, errText); err != nil {
		return fmt.Errorf("completing job run: %w", err)
	}
	return nil
}

// ListJobRuns returns the most recent runs for a job, newest first.
func (s *PostgresStore) ListJobRuns(ctx context.Context, jobName string, limit int) ([]domain.JobRun, error) {
	rows, err := s.pool.Query(ctx, queryListJobRuns, jobName, limit)
	if err != nil {
		return nil, fmt.Errorf("querying job runs: %w", err)
	}
	defer rows.Close()

	return scanJobRuns(rows)
}

// ListLatestJobRuns returns the most recent run of each job.
func (s *PostgresStore) ListLatestJobRuns(ctx context.Context) ([]domain.JobRun, error) {
	rows, err := s.pool.Query(ctx, queryListLatestJobRuns)
	if err != nil {
		return nil, fmt.Errorf("querying latest job runs: %w", err)
	}
	defer rows.Close()

	return scanJobRuns(rows)
}

// RecoverStaleJobRuns marks running rows older than olderThan as crashed and
// deletes rows older than 30 days. It returns the number marked crashed.
func (s *PostgresStore) RecoverStaleJobRuns(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)

	tag, err := s.pool.Exec(ctx, queryMarkStaleJobRunsCrashed, cutoff)
	if err != nil {
		return 0, fmt.Errorf("marking stale job runs crashed: %w", err)
	}
	affected := int(tag.RowsAffected())

	if _, err := s.pool.Exec(ctx, queryDeleteOldJobRuns); err != nil {
		return affected, fmt.Errorf("deleting old job runs: %w", err)
	}

	return affected, nil
}

// AcquireSchedulerLock takes the named lock for holder until ttl elapses.
// It returns false when another holder owns an unexpired lock.
func (s *PostgresStore) AcquireSchedulerLock(
	ctx context.Context,
	jobName, holder string,
	ttl time.Duration,
) (bool, error) {
	var got string
	err := s.pool.QueryRow(ctx, queryAcquireSchedulerLock, jobName, holder, time.Now().Add(ttl)).Scan(&got)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("acquiring scheduler lock: %w", err)
	}
	return true, nil
}

// ReleaseSchedulerLock deletes the lock row owned by holder.
func (s *PostgresStore) ReleaseSchedulerLock(ctx context.Context, jobName, holder string) error {
	if _, err := s.pool.Exec(ctx, queryReleaseSchedulerLock, jobName, holder); err != nil {
		return fmt.Errorf("releasing scheduler lock: %w", err)
	}
	return nil
}

func scanJobRuns(rows pgx.Rows) ([]domain.JobRun, error) {
	var runs []domain.JobRun
	for rows.Next() {
		var r domain.JobRun
		if err := rows.Scan(
			&r.ID, &r.JobName, &r.StartedAt, &r.CompletedAt, &r.Status, &r.ErrorText,
		); err != nil {
			return nil, fmt.Errorf("scanning job run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
