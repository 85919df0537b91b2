package store

// Refresh token queries.
const (
	queryInsertRefreshToken = `
		INSERT INTO refresh_tokens (token, source)
		VALUES ($1, $2)`

	queryLatestRefreshToken = `
		SELECT token FROM refresh_tokens
		ORDER BY rotated_at DESC, id DESC
		LIMIT 1`

	queryListRefreshTokenRotations = `
		SELECT id::text AS id, source, rotated_at FROM refresh_tokens
		ORDER BY rotated_at DESC, id DESC
		LIMIT $1`

	queryPruneRefreshTokens = `
		DELETE FROM refresh_tokens
		WHERE id NOT IN (
			SELECT id FROM refresh_tokens
			ORDER BY rotated_at DESC, id DESC
			LIMIT $1
		)`
)

// Job run queries.
const (
	queryInsertJobRun = `
		INSERT INTO job_runs (job_name)
		VALUES ($1)
		RETURNING id`

	queryCompleteJobRun = `
		UPDATE job_runs SET
			completed_at = now(),
			status       = $2,
			error_text   = NULLIF($3, '')
		WHERE id = $1`

	queryListJobRuns = `
		SELECT id, job_name, started_at, completed_at, status,
			COALESCE(error_text, '')
		FROM job_runs
		WHERE job_name = $1
		ORDER BY started_at DESC
		LIMIT $2`

	queryListLatestJobRuns = `
		SELECT DISTINCT ON (job_name)
			id, job_name, started_at, completed_at, status,
			COALESCE(error_text, '')
		FROM job_runs
		ORDER BY job_name, started_at DESC`

	queryMarkStaleJobRunsCrashed = `
		UPDATE job_runs SET
			status       = 'crashed',
			completed_at = now()
		WHERE status = 'running' AND started_at < $1`

	queryDeleteOldJobRuns = `
		DELETE FROM job_runs WHERE started_at < now() - interval '30 days'`
)

// Scheduler lock queries.
const (
	queryAcquireSchedulerLock = `
		INSERT INTO scheduler_locks (job_name, lock_holder, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (job_name) DO UPDATE
			SET locked_at   = now(),
				lock_holder = EXCLUDED.lock_holder,
				expires_at  = EXCLUDED.expires_at
			WHERE scheduler_locks.expires_at < now()
				OR scheduler_locks.lock_holder = EXCLUDED.lock_holder
		RETURNING job_name`

	queryReleaseSchedulerLock = `
		DELETE FROM scheduler_locks WHERE job_name = $1 AND lock_holder = $2`
)
