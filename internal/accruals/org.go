package accruals

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/donaldgifford/concur-accruals/internal/concur"
	"github.com/donaldgifford/concur-accruals/internal/metrics"
	domain "github.com/donaldgifford/concur-accruals/pkg/types"
)

// OrgSearchResult holds the per-user records of every matching user.
type OrgSearchResult struct {
	Filter   domain.OrgFilter
	Scanned  int
	Users    []domain.UserAccruals
	Failures int
	DateFrom string
	DateTo   string
}

// MatchesOrg reports whether user's Concur extension matches every
// non-empty field of f. Filtering is local because the tenant rejects SCIM
// filter expressions.
func MatchesOrg(user concur.Item, f domain.OrgFilter) bool {
	ext := user.Object(concur.ConcurUserSchema)
	for k, want := range f.Fields() {
		if strings.TrimSpace(ext.String(k)) != want {
			return false
		}
	}
	return true
}

// SearchOrg lists the directory, keeps the users matching f and fetches each
// one's expense reports and card transactions with bounded concurrency. A
// failure for one user is recorded on that user and does not fail the
// search; cancellation of ctx does.
func (s *Service) SearchOrg(ctx context.Context, f domain.OrgFilter) (*OrgSearchResult, error) {
	start := time.Now()
	defer func() {
		metrics.AggregationDuration.WithLabelValues("search_org").Observe(time.Since(start).Seconds())
	}()

	res, err := s.concur.ListUsers(ctx, concur.UserListOptions{Attributes: concur.DefaultUserAttributes})
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	if len(f.Fields()) > 0 && !res.Attributes.Contains(concur.ConcurUserSchema) {
		return nil, fmt.Errorf("%w: negotiated attributes %q", ErrOrgFieldsUnavailable, res.Attributes.String())
	}

	var matched []concur.Item
	for _, u := range res.Items {
		if u.ID("id") != "" && MatchesOrg(u, f) {
			matched = append(matched, u)
		}
	}

	out := &OrgSearchResult{
		Filter:   f,
		Scanned:  len(res.Items),
		Users:    make([]domain.UserAccruals, len(matched)),
		DateFrom: legacyWindowStart,
		DateTo:   s.nowFunc().Format(concur.DateLayout),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, u := range matched {
		g.Go(func() error {
			out.Users[i] = s.userAccruals(gctx, u, out.DateFrom, out.DateTo)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("org search: %w", err)
	}

	for _, ua := range out.Users {
		if ua.Error != "" {
			out.Failures++
		}
	}
	metrics.OrgSearchUsersTotal.Add(float64(len(matched)))

	s.log.Info("org search complete",
		"scanned", out.Scanned,
		"matched", len(matched),
		"failures", out.Failures,
		"duration", time.Since(start),
	)
	return out, nil
}

func (s *Service) userAccruals(ctx context.Context, u concur.Item, from, to string) domain.UserAccruals {
	ua := domain.UserAccruals{
		UserID:       u.ID("id"),
		UserName:     u.String("userName"),
		DisplayName:  u.String("displayName"),
		Reports:      []domain.Record{},
		Transactions: []domain.Record{},
	}

	reports, err := s.concur.ListExpenseReports(ctx, ua.UserID)
	if err != nil {
		s.log.Warn("expense reports failed", "user_id", ua.UserID, "error", err)
		ua.Error = err.Error()
		return ua
	}
	ua.Reports = records(reports.Items)

	txns, err := s.concur.ListCardTransactions(ctx, ua.UserID, concur.CardQuery{DateFrom: from, DateTo: to})
	if err != nil {
		s.log.Warn("card transactions failed", "user_id", ua.UserID, "error", err)
		ua.Error = err.Error()
		return ua
	}
	ua.Transactions = records(txns.Items)
	return ua
}
