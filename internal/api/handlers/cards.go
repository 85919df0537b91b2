package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/concur-accruals/internal/accruals"
	domain "github.com/donaldgifford/concur-accruals/pkg/types"
)

// CardService defines the aggregator methods used by the cards handler.
type CardService interface {
	SearchCards(ctx context.Context, principal string, q accruals.CardSearch) (*accruals.CardSearchResult, error)
	CardTotals(ctx context.Context, principal string, req accruals.TotalsRequest) (*domain.CardTotals, error)
}

// CardsHandler serves the caller's card transactions.
type CardsHandler struct {
	svc CardService
}

// NewCardsHandler creates a new CardsHandler.
func NewCardsHandler(svc CardService) *CardsHandler {
	return &CardsHandler{svc: svc}
}

// CardSearchInput is the request for the caller's card transactions.
type CardSearchInput struct {
	PrincipalInput
	Body struct {
		TransactionDateFrom string `json:"transactionDateFrom"  example:"2026-01-01" doc:"Window start (YYYY-MM-DD)"`
		TransactionDateTo   string `json:"transactionDateTo"    example:"2026-01-31" doc:"Window end (YYYY-MM-DD)"`
		Status              string `json:"status,omitempty"     example:"UN"         doc:"Upstream status code (default UN)"`
		PageSize            int    `json:"pageSize,omitempty"   example:"200"        doc:"Page size, clamped to 1..500"`
	}
}

// CardSearchOutput is the response body for a card search.
type CardSearchOutput struct {
	Body struct {
		Principal    string                `json:"upn"`
		ConcurUserID string                `json:"concurUserId"`
		DateFrom     string                `json:"dateFrom"`
		DateTo       string                `json:"dateTo"`
		Count        int                   `json:"count"`
		Collection   domain.CollectionMeta `json:"collection"`
		Transactions []domain.Record       `json:"transactions" doc:"Raw card transaction records"`
	}
}

// CardTotalsInput is the request for card totals.
type CardTotalsInput struct {
	PrincipalInput
	Body struct {
		TransactionDateFrom string `json:"transactionDateFrom" example:"2026-01-01"`
		TransactionDateTo   string `json:"transactionDateTo"   example:"2026-01-31"`
		DateType            string `json:"dateType,omitempty"  enum:"TRANSACTION,POSTED,BILLING" doc:"Date that places a transaction in the window"`
		Status              string `json:"status,omitempty"`
		PageSize            int    `json:"pageSize,omitempty"`
	}
}

// CardTotalsOutput is the response body for card totals.
type CardTotalsOutput struct {
	Body *domain.CardTotals
}

// Search returns the caller's card transactions in a date window.
func (h *CardsHandler) Search(ctx context.Context, input *CardSearchInput) (*CardSearchOutput, error) {
	upn, err := input.principal()
	if err != nil {
		return nil, err
	}

	res, err := h.svc.SearchCards(ctx, upn, accruals.CardSearch{
		DateFrom: input.Body.TransactionDateFrom,
		DateTo:   input.Body.TransactionDateTo,
		Status:   input.Body.Status,
		PageSize: input.Body.PageSize,
	})
	if err != nil {
		return nil, problem(err)
	}

	out := &CardSearchOutput{}
	out.Body.Principal = res.Principal
	out.Body.ConcurUserID = res.ConcurUserID
	out.Body.DateFrom = res.DateFrom
	out.Body.DateTo = res.DateTo
	out.Body.Count = len(res.Transactions)
	out.Body.Collection = res.Meta
	out.Body.Transactions = res.Transactions
	return out, nil
}

// Totals sums the caller's card transactions by program and by user.
func (h *CardsHandler) Totals(ctx context.Context, input *CardTotalsInput) (*CardTotalsOutput, error) {
	upn, err := input.principal()
	if err != nil {
		return nil, err
	}

	totals, err := h.svc.CardTotals(ctx, upn, accruals.TotalsRequest{
		DateFrom: input.Body.TransactionDateFrom,
		DateTo:   input.Body.TransactionDateTo,
		DateType: input.Body.DateType,
		Status:   input.Body.Status,
		PageSize: input.Body.PageSize,
	})
	if err != nil {
		return nil, problem(err)
	}
	return &CardTotalsOutput{Body: totals}, nil
}

// RegisterCardRoutes registers card endpoints with the Huma API.
func RegisterCardRoutes(api huma.API, h *CardsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "search-cards",
		Method:      http.MethodPost,
		Path:        "/api/v1/cards/search",
		Summary:     "Search the caller's card transactions",
		Description: "Resolves the caller to a Concur user and collects their card transactions in the window.",
		Tags:        []string{"cards"},
		Errors:      append([]int{http.StatusUnauthorized}, upstreamErrors...),
	}, h.Search)

	huma.Register(api, huma.Operation{
		OperationID: "card-totals",
		Method:      http.MethodPost,
		Path:        "/api/v1/cards/totals",
		Summary:     "Total the caller's card transactions",
		Description: "Totals posted amounts by card program and by employee for a window over the selected date type.",
		Tags:        []string{"cards"},
		Errors:      append([]int{http.StatusUnauthorized}, upstreamErrors...),
	}, h.Totals)
}
