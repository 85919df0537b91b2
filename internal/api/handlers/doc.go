// Package handlers implements the HTTP operations of the concur-accruals API.
package handlers

// StatusResponse is a generic status response body.
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}
