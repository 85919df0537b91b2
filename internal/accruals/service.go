// Package accruals merges per-user Concur directory, card and expense
// report data into the views served by the API.
package accruals

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/oauth2"

	"github.com/donaldgifford/concur-accruals/internal/concur"
	domain "github.com/donaldgifford/concur-accruals/pkg/types"
)

const (
	defaultConcurrency = 4
	defaultTake        = 500
	maxTake            = 5000

	// legacyWindowStart opens the card window used by org-wide searches.
	legacyWindowStart = "2000-01-01"

	defaultCardStatus = "UN"
)

var (
	// ErrUserNotFound is returned when a UPN or email matches no Concur user.
	ErrUserNotFound = errors.New("concur user not found")
	// ErrOrgFieldsUnavailable is returned when an org filter is given but the
	// tenant did not return the Concur user extension carrying org fields.
	ErrOrgFieldsUnavailable = errors.New("concur user extension unavailable for org filtering")
)

// TokenRefresher forces a token exchange.
type TokenRefresher interface {
	Refresh(ctx context.Context) (*oauth2.Token, error)
}

// Service is the aggregator in front of the Concur client.
type Service struct {
	concur      concur.ConcurClient
	tokens      TokenRefresher
	log         *slog.Logger
	concurrency int
	nowFunc     func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.log = l
	}
}

// WithConcurrency bounds how many users an org-wide search fetches at once.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithTokenRefresher enables AuthTest to force a token exchange.
func WithTokenRefresher(t TokenRefresher) Option {
	return func(s *Service) {
		s.tokens = t
	}
}

// WithNowFunc overrides the time function for testing.
func WithNowFunc(f func() time.Time) Option {
	return func(s *Service) {
		s.nowFunc = f
	}
}

// NewService creates a Service over c.
func NewService(c concur.ConcurClient, opts ...Option) *Service {
	s := &Service{
		concur:      c,
		log:         slog.Default(),
		concurrency: defaultConcurrency,
		nowFunc:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func records(items []concur.Item) []domain.Record {
	out := make([]domain.Record, len(items))
	for i, it := range items {
		out[i] = domain.Record(it)
	}
	return out
}

func collectionMeta(r *concur.CollectResult) domain.CollectionMeta {
	return domain.CollectionMeta{
		Pages:      r.Pages,
		StoppedAt:  r.StoppedAt,
		Attributes: []string(r.Attributes),
	}
}
