package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/concur-accruals/internal/accruals"
	domain "github.com/donaldgifford/concur-accruals/pkg/types"
)

// AuthTester defines the aggregator method used by the auth test handler.
type AuthTester interface {
	AuthTest(ctx context.Context) (*accruals.AuthTestResult, error)
}

// AuthTestHandler serves the Concur credential smoke test.
type AuthTestHandler struct {
	svc AuthTester
}

// NewAuthTestHandler creates a new AuthTestHandler.
func NewAuthTestHandler(svc AuthTester) *AuthTestHandler {
	return &AuthTestHandler{svc: svc}
}

// AuthTestOutput is the response body for the auth test.
type AuthTestOutput struct {
	Body struct {
		OK          bool            `json:"ok"`
		TokenExpiry time.Time       `json:"token_expiry" doc:"Expiry of the freshly issued access token"`
		Sample      []domain.Record `json:"sample"       doc:"At most one directory user"`
	}
}

// AuthTest forces a token exchange and lists one user.
func (h *AuthTestHandler) AuthTest(ctx context.Context, _ *struct{}) (*AuthTestOutput, error) {
	res, err := h.svc.AuthTest(ctx)
	if err != nil {
		return nil, problem(err)
	}

	out := &AuthTestOutput{}
	out.Body.OK = res.OK
	out.Body.TokenExpiry = res.TokenExpiry
	out.Body.Sample = res.Sample
	return out, nil
}

// RegisterAuthTestRoutes registers the auth test endpoint with the Huma API.
func RegisterAuthTestRoutes(api huma.API, h *AuthTestHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "concur-auth-test",
		Method:      http.MethodGet,
		Path:        "/api/v1/concur/auth-test",
		Summary:     "Test Concur credentials",
		Description: "Forces a refresh-token exchange and lists a single directory user.",
		Tags:        []string{"concur"},
		Errors:      upstreamErrors,
	}, h.AuthTest)
}
