package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/concur-accruals/internal/api/handlers"
	domain "github.com/donaldgifford/concur-accruals/pkg/types"
)

const jobTokenRefresh = "token_refresh"

// fakeJobHistory records the arguments of the last history query.
type fakeJobHistory struct {
	runs []domain.JobRun
	err  error

	gotJob   string
	gotLimit int
}

func (f *fakeJobHistory) ListLatestJobRuns(context.Context) ([]domain.JobRun, error) {
	return f.runs, f.err
}

func (f *fakeJobHistory) ListJobRuns(_ context.Context, jobName string, limit int) ([]domain.JobRun, error) {
	f.gotJob, f.gotLimit = jobName, limit
	return f.runs, f.err
}

func refreshRuns() []domain.JobRun {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	done := started.Add(800 * time.Millisecond)
	return []domain.JobRun{
		{ID: "run-2", JobName: jobTokenRefresh, StartedAt: started.Add(20 * time.Minute), Status: domain.JobRunning},
		{
			ID: "run-1", JobName: jobTokenRefresh, StartedAt: started, CompletedAt: &done,
			Status: domain.JobFailed, ErrorText: "refreshing concur token: concur: token endpoint rejected credentials",
		},
	}
}

func jobsAPI(t *testing.T, h *handlers.JobsHandler) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	handlers.RegisterJobRoutes(api, h)
	return api
}

func TestListJobs(t *testing.T) {
	t.Parallel()

	api := jobsAPI(t, handlers.NewJobsHandler(&fakeJobHistory{runs: refreshRuns()[:1]}, jobTokenRefresh))

	resp := api.Get("/api/v1/jobs")
	require.Equal(t, http.StatusOK, resp.Code)

	var got []domain.JobRun
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, jobTokenRefresh, got[0].JobName)
	assert.Equal(t, domain.JobRunning, got[0].Status)
	assert.Nil(t, got[0].CompletedAt)
}

func TestListJobs_NeverRun(t *testing.T) {
	t.Parallel()

	api := jobsAPI(t, handlers.NewJobsHandler(&fakeJobHistory{}, jobTokenRefresh))

	resp := api.Get("/api/v1/jobs")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `[]`, resp.Body.String())
}

func TestGetJobHistory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		path      string
		wantLimit int
	}{
		{name: "default limit", path: "/api/v1/jobs/token_refresh", wantLimit: 20},
		{name: "explicit limit", path: "/api/v1/jobs/token_refresh?limit=5", wantLimit: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := &fakeJobHistory{runs: refreshRuns()}
			api := jobsAPI(t, handlers.NewJobsHandler(store, jobTokenRefresh))

			resp := api.Get(tt.path)
			require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
			assert.Equal(t, jobTokenRefresh, store.gotJob)
			assert.Equal(t, tt.wantLimit, store.gotLimit)

			var got []domain.JobRun
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
			require.Len(t, got, 2)
			assert.Equal(t, domain.JobFailed, got[1].Status)
			assert.Contains(t, got[1].ErrorText, "rejected credentials")
		})
	}
}

func TestGetJobHistory_LimitOutOfRange(t *testing.T) {
	t.Parallel()

	store := &fakeJobHistory{}
	api := jobsAPI(t, handlers.NewJobsHandler(store, jobTokenRefresh))

	resp := api.Get("/api/v1/jobs/token_refresh?limit=500")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	assert.Empty(t, store.gotJob)
}

func TestGetJobHistory_UnknownJob(t *testing.T) {
	t.Parallel()

	store := &fakeJobHistory{}
	api := jobsAPI(t, handlers.NewJobsHandler(store, jobTokenRefresh))

	resp := api.Get("/api/v1/jobs/nightly_sync")
	require.Equal(t, http.StatusNotFound, resp.Code)
	assert.Contains(t, resp.Body.String(), `unknown job \"nightly_sync\" (known: token_refresh)`)
	assert.Empty(t, store.gotJob)
}

func TestJobs_NoDatabase(t *testing.T) {
	t.Parallel()

	api := jobsAPI(t, handlers.NewJobsHandler(nil, jobTokenRefresh))

	for _, path := range []string{"/api/v1/jobs", "/api/v1/jobs/token_refresh"} {
		resp := api.Get(path)
		assert.Equal(t, http.StatusServiceUnavailable, resp.Code, path)
		assert.Contains(t, resp.Body.String(), "database.host", path)
	}
}

func TestJobs_StoreError(t *testing.T) {
	t.Parallel()

	api := jobsAPI(t, handlers.NewJobsHandler(&fakeJobHistory{err: errors.New("conn refused")}, jobTokenRefresh))

	resp := api.Get("/api/v1/jobs")
	require.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Contains(t, resp.Body.String(), "listing job runs failed")

	resp = api.Get("/api/v1/jobs/token_refresh")
	require.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Contains(t, resp.Body.String(), "reading token_refresh history failed")
}
