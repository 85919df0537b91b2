package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/concur-accruals/internal/secrets"
	domain "github.com/donaldgifford/concur-accruals/pkg/types"
)

// RotationLister lists persisted refresh token rotations.
type RotationLister interface {
	ListRefreshTokenRotations(ctx context.Context, limit int) ([]domain.RefreshTokenRotation, error)
}

// SecretsHandler reports secret store configuration. It never returns
// secret values.
type SecretsHandler struct {
	sources   secrets.Sources
	rotations RotationLister
}

// NewSecretsHandler creates a new SecretsHandler. rotations may be nil when
// no database is configured.
func NewSecretsHandler(sources secrets.Sources, rotations RotationLister) *SecretsHandler {
	return &SecretsHandler{sources: sources, rotations: rotations}
}

// SecretsStatusOutput is the response body for the secret store status.
type SecretsStatusOutput struct {
	Body secrets.Status
}

// RotationsInput bounds the rotation history.
type RotationsInput struct {
	Limit int `query:"limit" default:"10" minimum:"1" maximum:"20" doc:"Rotations to return"`
}

// RotationsOutput is the response body for the rotation history.
type RotationsOutput struct {
	Body []domain.RefreshTokenRotation
}

// Status returns which secret sources are configured.
func (h *SecretsHandler) Status(_ context.Context, _ *struct{}) (*SecretsStatusOutput, error) {
	return &SecretsStatusOutput{Body: h.sources.Status()}, nil
}

// Rotations returns refresh token rotation metadata, newest first.
func (h *SecretsHandler) Rotations(ctx context.Context, input *RotationsInput) (*RotationsOutput, error) {
	if h.rotations == nil {
		return &RotationsOutput{Body: []domain.RefreshTokenRotation{}}, nil
	}
	rotations, err := h.rotations.ListRefreshTokenRotations(ctx, input.Limit)
	if err != nil {
		return nil, huma.Error500InternalServerError("listing rotations failed: " + err.Error())
	}
	if rotations == nil {
		rotations = []domain.RefreshTokenRotation{}
	}
	return &RotationsOutput{Body: rotations}, nil
}

// RegisterSecretsRoutes registers secret store endpoints with the Huma API.
func RegisterSecretsRoutes(api huma.API, h *SecretsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "secrets-status",
		Method:      http.MethodGet,
		Path:        "/api/v1/secrets/status",
		Summary:     "Get secret store status",
		Description: "Reports the configured secret sources and lookup order without reading any values.",
		Tags:        []string{"secrets"},
	}, h.Status)

	huma.Register(api, huma.Operation{
		OperationID: "list-token-rotations",
		Method:      http.MethodGet,
		Path:        "/api/v1/secrets/rotations",
		Summary:     "List refresh token rotations",
		Description: "Returns when and how the persisted refresh token last changed. Token values are never returned.",
		Tags:        []string{"secrets"},
		Errors:      []int{http.StatusInternalServerError},
	}, h.Rotations)
}
