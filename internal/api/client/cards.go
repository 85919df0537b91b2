package client

import (
	"context"
	"errors"

	domain "github.com/donaldgifford/concur-accruals/pkg/types"
)

// TotalsRequest is the request body for card totals.
type TotalsRequest struct {
	TransactionDateFrom string `json:"transactionDateFrom"`
	TransactionDateTo   string `json:"transactionDateTo"`
	DateType            string `json:"dateType,omitempty"`
	Status              string `json:"status,omitempty"`
	PageSize            int    `json:"pageSize,omitempty"`
}

// CardTotals sums the caller's card transactions by program and by user.
// The client must be built WithPrincipal.
func (c *Client) CardTotals(ctx context.Context, req TotalsRequest) (*domain.CardTotals, error) {
	if c.principal == "" {
		return nil, errors.New("card totals require a caller principal")
	}
	var totals domain.CardTotals
	if err := c.post(ctx, "/api/v1/cards/totals", req, &totals); err != nil {
		return nil, err
	}
	return &totals, nil
}
