package client

import (
	"context"
	"time"
)

// Quota is the server's upstream call budget.
type Quota struct {
	DailyLimit       int64     `json:"daily_limit"`
	DailyUsed        int64     `json:"daily_used"`
	Remaining        int64     `json:"remaining"`
	ResetAt          time.Time `json:"reset_at"`
	BackoffRemaining float64   `json:"backoff_remaining"`
}

// GetQuota returns the current upstream call budget of the serving process.
func (c *Client) GetQuota(ctx context.Context) (*Quota, error) {
	var q Quota
	if err := c.get(ctx, "/api/v1/quota", &q); err != nil {
		return nil, err
	}
	return &q, nil
}
