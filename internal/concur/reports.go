package concur

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

var expenseReportItemKeys = []string{"Items", "items", "Reports", "reports"}

// ListExpenseReports collects one user's expense reports. Records are passed
// through untouched; which reports matter is decided by the caller.
func (c *Client) ListExpenseReports(ctx context.Context, userID string) (*CollectResult, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user ID is required", ErrInvalidQuery)
	}

	return c.collector.CollectAll(ctx, ListRequest{
		Where:    "expensereports.list_reports",
		URL:      c.baseURL + "/expensereports/v4/users/" + url.PathEscape(userID) + "/reports",
		Style:    StyleOffset,
		PageSize: c.reportPageSize,
		ItemKeys: expenseReportItemKeys,
		IDKeys:   []string{"reportId", "id"},
	})
}
