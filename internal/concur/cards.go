package concur

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// DateLayout is the calendar date format Concur expects in query windows.
const DateLayout = "2006-01-02"

// CardQuery selects a user's card transactions.
type CardQuery struct {
	DateFrom string // YYYY-MM-DD, inclusive
	DateTo   string // YYYY-MM-DD, inclusive
	Status   string // optional upstream status code, e.g. "UN"
	PageSize int    // clamped to [1, 500]; 0 means 200
}

// Validate checks the date window.
func (q CardQuery) Validate() error {
	var errs []error
	from, err := time.Parse(DateLayout, strings.TrimSpace(q.DateFrom))
	if err != nil {
		errs = append(errs, fmt.Errorf("transactionDateFrom %q must be YYYY-MM-DD", q.DateFrom))
	}
	to, err2 := time.Parse(DateLayout, strings.TrimSpace(q.DateTo))
	if err2 != nil {
		errs = append(errs, fmt.Errorf("transactionDateTo %q must be YYYY-MM-DD", q.DateTo))
	}
	if err == nil && err2 == nil && to.Before(from) {
		errs = append(errs, errors.New("transactionDateTo is before transactionDateFrom"))
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidQuery}, errs...)...)
	}
	return nil
}

// ListCardTransactions collects one user's card transactions in a date
// window using page/pageSize paging.
func (c *Client) ListCardTransactions(ctx context.Context, userID string, q CardQuery) (*CollectResult, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user ID is required", ErrInvalidQuery)
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	params := url.Values{
		"transactionDateFrom": {strings.TrimSpace(q.DateFrom)},
		"transactionDateTo":   {strings.TrimSpace(q.DateTo)},
	}
	if s := strings.TrimSpace(q.Status); s != "" {
		params.Set("status", s)
	}

	return c.collector.CollectAll(ctx, ListRequest{
		Where:    "cards.list_transactions",
		URL:      c.baseURL + "/cards/v4/users/" + url.PathEscape(userID) + "/transactions",
		Style:    StyleOffset,
		Params:   params,
		PageSize: ClampPageSize(q.PageSize),
	})
}
