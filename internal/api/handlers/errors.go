package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/concur-accruals/internal/accruals"
	"github.com/donaldgifford/concur-accruals/internal/concur"
)

// UpstreamError is the response body for failures of the Concur access
// layer. It implements huma.StatusError.
type UpstreamError struct {
	status int
	concur.ErrorBody
	Code string `json:"code" example:"CONCUR_UPSTREAMREJECTED" doc:"Stable error code"`
}

// Error implements error.
func (e *UpstreamError) Error() string {
	return string(e.ErrorBody.Error) + " at " + e.Where
}

// GetStatus implements huma.StatusError.
func (e *UpstreamError) GetStatus() int { return e.status }

// problem maps an aggregator or upstream failure onto an HTTP error.
func problem(err error) error {
	switch {
	case errors.Is(err, concur.ErrDailyLimitReached):
		return huma.Error429TooManyRequests("concur daily call budget exhausted", err)
	case errors.Is(err, concur.ErrInvalidQuery):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, accruals.ErrUserNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, accruals.ErrOrgFieldsUnavailable):
		return huma.Error422UnprocessableEntity(err.Error())
	}

	if ce, ok := concur.AsError(err); ok {
		se := ce.ToServiceError()
		return &UpstreamError{status: se.Code, ErrorBody: ce.Body(), Code: se.TextCode}
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return huma.Error504GatewayTimeout("request timed out", err)
	case errors.Is(err, context.Canceled):
		return huma.NewError(499, "request canceled")
	case errors.Is(err, concur.ErrInvalidCredential):
		return huma.Error500InternalServerError("concur credentials are not configured", err)
	}
	return huma.Error500InternalServerError(err.Error())
}

var upstreamErrors = []int{
	http.StatusBadRequest,
	http.StatusNotFound,
	http.StatusTooManyRequests,
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
}
