package accruals

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/donaldgifford/concur-accruals/internal/concur"
	"github.com/donaldgifford/concur-accruals/internal/metrics"
	domain "github.com/donaldgifford/concur-accruals/pkg/types"
)

// CardSearch selects the caller's card transactions.
type CardSearch struct {
	DateFrom string
	DateTo   string
	Status   string // defaults to "UN"
	PageSize int
}

// CardSearchResult holds the caller's transactions in the window.
type CardSearchResult struct {
	Principal    string
	ConcurUserID string
	DateFrom     string
	DateTo       string
	Transactions []domain.Record
	Meta         domain.CollectionMeta
}

// SearchCards resolves principal to a Concur user and collects that user's
// card transactions.
func (s *Service) SearchCards(ctx context.Context, principal string, q CardSearch) (*CardSearchResult, error) {
	start := time.Now()
	defer func() {
		metrics.AggregationDuration.WithLabelValues("search_cards").Observe(time.Since(start).Seconds())
	}()

	status := strings.TrimSpace(q.Status)
	if status == "" {
		status = defaultCardStatus
	}
	cq := concur.CardQuery{DateFrom: q.DateFrom, DateTo: q.DateTo, Status: status, PageSize: q.PageSize}
	if err := cq.Validate(); err != nil {
		return nil, err
	}

	userID, err := s.ResolveUserID(ctx, principal)
	if err != nil {
		return nil, err
	}

	res, err := s.concur.ListCardTransactions(ctx, userID, cq)
	if err != nil {
		return nil, fmt.Errorf("listing card transactions for %s: %w", userID, err)
	}

	return &CardSearchResult{
		Principal:    principal,
		ConcurUserID: userID,
		DateFrom:     strings.TrimSpace(q.DateFrom),
		DateTo:       strings.TrimSpace(q.DateTo),
		Transactions: records(res.Items),
		Meta:         collectionMeta(res),
	}, nil
}

// TotalsRequest selects the window for CardTotals.
type TotalsRequest struct {
	DateFrom string
	DateTo   string
	DateType string
	Status   string // optional; empty means every status
	PageSize int
}

// CardTotals totals the caller's card transactions by program and by user.
func (s *Service) CardTotals(ctx context.Context, principal string, req TotalsRequest) (*domain.CardTotals, error) {
	dt, err := domain.ParseDateType(req.DateType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", concur.ErrInvalidQuery, err)
	}
	cq := concur.CardQuery{DateFrom: req.DateFrom, DateTo: req.DateTo, Status: req.Status, PageSize: req.PageSize}
	if err := cq.Validate(); err != nil {
		return nil, err
	}

	userID, err := s.ResolveUserID(ctx, principal)
	if err != nil {
		return nil, err
	}

	res, err := s.concur.ListCardTransactions(ctx, userID, cq)
	if err != nil {
		return nil, fmt.Errorf("listing card transactions for %s: %w", userID, err)
	}

	from, _ := time.Parse(concur.DateLayout, strings.TrimSpace(req.DateFrom))
	to, _ := time.Parse(concur.DateLayout, strings.TrimSpace(req.DateTo))
	totals := ComputeTotals(res.Items, from, to, dt)
	if totals.Skipped > 0 {
		s.log.Warn("card transactions skipped while totalling",
			"user_id", userID,
			"skipped", totals.Skipped,
			"date_type", dt,
		)
	}
	return &totals, nil
}

// UserReports collects one user's expense reports.
func (s *Service) UserReports(ctx context.Context, userID string) ([]domain.Record, domain.CollectionMeta, error) {
	res, err := s.concur.ListExpenseReports(ctx, userID)
	if err != nil {
		return nil, domain.CollectionMeta{}, fmt.Errorf("listing expense reports for %s: %w", userID, err)
	}
	return records(res.Items), collectionMeta(res), nil
}
