package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/concur-accruals/internal/accruals"
	domain "github.com/donaldgifford/concur-accruals/pkg/types"
)

// OrgSearcher defines the aggregator method used by the org search handler.
type OrgSearcher interface {
	SearchOrg(ctx context.Context, f domain.OrgFilter) (*accruals.OrgSearchResult, error)
}

// OrgHandler serves org-wide accrual searches.
type OrgHandler struct {
	svc OrgSearcher
}

// NewOrgHandler creates a new OrgHandler.
func NewOrgHandler(svc OrgSearcher) *OrgHandler {
	return &OrgHandler{svc: svc}
}

// OrgSearchInput is the request for an org-wide search.
type OrgSearchInput struct {
	Body domain.OrgFilter
}

// OrgSearchOutput is the response body for an org-wide search.
type OrgSearchOutput struct {
	Body struct {
		Filter   domain.OrgFilter      `json:"filter"`
		Scanned  int                   `json:"scanned"  doc:"Directory users read"`
		Matched  int                   `json:"matched"  doc:"Users matching the filter"`
		Failures int                   `json:"failures" doc:"Users whose records could not be fetched"`
		DateFrom string                `json:"dateFrom"`
		DateTo   string                `json:"dateTo"`
		Users    []domain.UserAccruals `json:"users"`
	}
}

// Search filters the directory by org unit and gathers each matching
// user's expense reports and card transactions.
func (h *OrgHandler) Search(ctx context.Context, input *OrgSearchInput) (*OrgSearchOutput, error) {
	res, err := h.svc.SearchOrg(ctx, input.Body)
	if err != nil {
		return nil, problem(err)
	}

	out := &OrgSearchOutput{}
	out.Body.Filter = res.Filter
	out.Body.Scanned = res.Scanned
	out.Body.Matched = len(res.Users)
	out.Body.Failures = res.Failures
	out.Body.DateFrom = res.DateFrom
	out.Body.DateTo = res.DateTo
	out.Body.Users = res.Users
	return out, nil
}

// RegisterOrgRoutes registers the org search endpoint with the Huma API.
func RegisterOrgRoutes(api huma.API, h *OrgHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "search-accruals",
		Method:      http.MethodPost,
		Path:        "/api/v1/accruals/search",
		Summary:     "Search accruals by org unit",
		Description: "Filters users locally on orgUnit1-6 and custom21, then fetches each match's reports and card transactions. Slow on large tenants.",
		Tags:        []string{"accruals"},
		Errors:      upstreamErrors,
	}, h.Search)
}
