package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/concur-accruals/internal/concur"
)

// QuotaHandler reports upstream call budget usage.
type QuotaHandler struct {
	rl *concur.RateLimiter
}

// NewQuotaHandler creates a new QuotaHandler.
func NewQuotaHandler(rl *concur.RateLimiter) *QuotaHandler {
	return &QuotaHandler{rl: rl}
}

// QuotaOutput is the response body for the quota endpoint.
type QuotaOutput struct {
	Body struct {
		DailyLimit       int64     `json:"daily_limit"        example:"10000"                doc:"Configured daily call limit (0 = unlimited)"`
		DailyUsed        int64     `json:"daily_used"         example:"142"                  doc:"Calls made in the current 24-hour window"`
		Remaining        int64     `json:"remaining"          example:"9858"                 doc:"Calls remaining in the current window"`
		ResetAt          time.Time `json:"reset_at"           example:"2026-06-16T14:30:00Z" doc:"When the current 24-hour window expires"`
		BackoffRemaining float64   `json:"backoff_remaining"  example:"0"                    doc:"Seconds left on a Retry-After pause"`
	}
}

// GetQuota returns the current call budget.
func (h *QuotaHandler) GetQuota(_ context.Context, _ *struct{}) (*QuotaOutput, error) {
	resp := &QuotaOutput{}
	if h.rl == nil {
		return resp, nil
	}

	resp.Body.DailyLimit = h.rl.MaxDaily()
	resp.Body.DailyUsed = h.rl.DailyCount()
	resp.Body.Remaining = h.rl.Remaining()
	resp.Body.ResetAt = h.rl.ResetAt()
	resp.Body.BackoffRemaining = h.rl.BackoffRemaining().Seconds()

	return resp, nil
}

// RegisterQuotaRoutes registers the quota endpoint with the Huma API.
func RegisterQuotaRoutes(api huma.API, h *QuotaHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-quota",
		Method:      http.MethodGet,
		Path:        "/api/v1/quota",
		Summary:     "Get Concur call budget",
		Description: "Returns daily upstream call usage, the window reset time and any active throttle backoff.",
		Tags:        []string{"concur"},
	}, h.GetQuota)
}
