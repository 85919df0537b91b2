package handlers

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	domain "github.com/donaldgifford/concur-accruals/pkg/types"
)

// JobsProvider reads scheduler run history.
type JobsProvider interface {
	ListLatestJobRuns(ctx context.Context) ([]domain.JobRun, error)
	ListJobRuns(ctx context.Context, jobName string, limit int) ([]domain.JobRun, error)
}

// JobsHandler serves the run history of the scheduled jobs. Without a
// database every request answers 503.
type JobsHandler struct {
	store JobsProvider
	known []string
}

// NewJobsHandler creates a JobsHandler. s may be nil. known lists the job
// names history may be requested for; empty accepts any name.
func NewJobsHandler(s JobsProvider, known ...string) *JobsHandler {
	return &JobsHandler{store: s, known: known}
}

// ListJobsOutput is the latest run of each job.
type ListJobsOutput struct {
	Body []domain.JobRun
}

// GetJobHistoryInput selects one job's history.
type GetJobHistoryInput struct {
	JobName string `path:"job_name" doc:"Scheduled job name" example:"token_refresh"`
	Limit   int    `query:"limit"   doc:"Maximum runs returned, newest first" default:"20" minimum:"1" maximum:"100"`
}

// GetJobHistoryOutput is one job's run history.
type GetJobHistoryOutput struct {
	Body []domain.JobRun
}

func (h *JobsHandler) requireStore() error {
	if h.store == nil {
		return huma.Error503ServiceUnavailable("job history requires database.host to be configured")
	}
	return nil
}

// ListJobs returns the most recent run for each job.
func (h *JobsHandler) ListJobs(ctx context.Context, _ *struct{}) (*ListJobsOutput, error) {
	if err := h.requireStore(); err != nil {
		return nil, err
	}

	runs, err := h.store.ListLatestJobRuns(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("listing job runs failed", err)
	}
	if runs == nil {
		runs = []domain.JobRun{}
	}
	return &ListJobsOutput{Body: runs}, nil
}

// GetJobHistory returns up to limit runs of one job, newest first.
func (h *JobsHandler) GetJobHistory(ctx context.Context, input *GetJobHistoryInput) (*GetJobHistoryOutput, error) {
	if len(h.known) > 0 && !slices.Contains(h.known, input.JobName) {
		return nil, huma.Error404NotFound(fmt.Sprintf("unknown job %q (known: %s)",
			input.JobName, strings.Join(h.known, ", ")))
	}
	if err := h.requireStore(); err != nil {
		return nil, err
	}

	runs, err := h.store.ListJobRuns(ctx, input.JobName, input.Limit)
	if err != nil {
		return nil, huma.Error500InternalServerError("reading "+input.JobName+" history failed", err)
	}
	if runs == nil {
		runs = []domain.JobRun{}
	}
	return &GetJobHistoryOutput{Body: runs}, nil
}

// RegisterJobRoutes registers the job history endpoints.
func RegisterJobRoutes(api huma.API, h *JobsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-jobs",
		Method:      http.MethodGet,
		Path:        "/api/v1/jobs",
		Summary:     "List latest job runs",
		Description: "Returns the most recent run of each scheduled job, such as the proactive token refresh.",
		Tags:        []string{"scheduler"},
		Errors:      []int{http.StatusInternalServerError, http.StatusServiceUnavailable},
	}, h.ListJobs)

	huma.Register(api, huma.Operation{
		OperationID: "get-job-history",
		Method:      http.MethodGet,
		Path:        "/api/v1/jobs/{job_name}",
		Summary:     "Get job history",
		Description: "Returns the runs of one scheduled job, newest first, including the error text of failed runs.",
		Tags:        []string{"scheduler"},
		Errors:      []int{http.StatusNotFound, http.StatusInternalServerError, http.StatusServiceUnavailable},
	}, h.GetJobHistory)
}
