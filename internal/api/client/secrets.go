package client

import (
	"context"
	"fmt"

	"github.com/donaldgifford/concur-accruals/internal/secrets"
	domain "github.com/donaldgifford/concur-accruals/pkg/types"
)

// SecretsStatus returns the server's secret source configuration.
func (c *Client) SecretsStatus(ctx context.Context) (*secrets.Status, error) {
	var st secrets.Status
	if err := c.get(ctx, "/api/v1/secrets/status", &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// ListRotations returns refresh token rotation metadata, newest first.
func (c *Client) ListRotations(ctx context.Context, limit int) ([]domain.RefreshTokenRotation, error) {
	var rotations []domain.RefreshTokenRotation
	if err := c.get(ctx, fmt.Sprintf("/api/v1/secrets/rotations?limit=%d", limit), &rotations); err != nil {
		return nil, err
	}
	return rotations, nil
}
