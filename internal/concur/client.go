package concur

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "https://www.concursolutions.com"

// ErrInvalidQuery is returned for caller input rejected before any upstream call.
var ErrInvalidQuery = errors.New("invalid query")

// ConcurClient defines the Concur resources consumed by the aggregator.
type ConcurClient interface {
	ListUsers(ctx context.Context, opts UserListOptions) (*CollectResult, error)
	GetUser(ctx context.Context, id string) (Item, AttributeSet, error)
	ListCardTransactions(ctx context.Context, userID string, q CardQuery) (*CollectResult, error)
	ListExpenseReports(ctx context.Context, userID string) (*CollectResult, error)
}

// Client implements ConcurClient on top of a Collector.
type Client struct {
	baseURL        string
	collector      *Collector
	userAttrs      AttributeSet
	detailAttrs    AttributeSet
	usersPageSize  int
	usersMaxPages  int
	reportPageSize int
	logger         *slog.Logger
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithUserAttributes sets the attribute set requested when listing users.
func WithUserAttributes(a AttributeSet) ClientOption {
	return func(c *Client) {
		if len(a) > 0 {
			c.userAttrs = a
		}
	}
}

// WithDetailAttributes sets the attribute set requested for a single user.
// An empty set requests the full record.
func WithDetailAttributes(a AttributeSet) ClientOption {
	return func(c *Client) {
		c.detailAttrs = a
	}
}

// WithUsersPaging overrides the identity page size and page cap.
func WithUsersPaging(pageSize, maxPages int) ClientOption {
	return func(c *Client) {
		c.usersPageSize = pageSize
		c.usersMaxPages = maxPages
	}
}

// WithReportPageSize overrides the expense report page size.
func WithReportPageSize(n int) ClientOption {
	return func(c *Client) {
		c.reportPageSize = n
	}
}

// WithClientLogger sets the logger.
func WithClientLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a Client for the tenant at baseURL.
func NewClient(baseURL string, collector *Collector, opts ...ClientOption) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:        baseURL,
		collector:      collector,
		userAttrs:      DefaultUserAttributes,
		detailAttrs:    DefaultUserAttributes,
		usersPageSize:  defaultPageSize,
		usersMaxPages:  maxCursorPages,
		reportPageSize: 100,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the tenant base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}
