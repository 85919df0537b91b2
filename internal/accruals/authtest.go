package accruals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/donaldgifford/concur-accruals/internal/concur"
	domain "github.com/donaldgifford/concur-accruals/pkg/types"
)

// AuthTestResult reports an end-to-end credential check.
type AuthTestResult struct {
	OK          bool
	TokenExpiry time.Time
	Sample      []domain.Record
}

// AuthTest forces a token exchange and lists a single directory user.
func (s *Service) AuthTest(ctx context.Context) (*AuthTestResult, error) {
	if s.tokens == nil {
		return nil, errors.New("auth test: no token refresher configured")
	}

	tok, err := s.tokens.Refresh(ctx)
	if err != nil {
		return nil, fmt.Errorf("auth test: %w", err)
	}

	res, err := s.concur.ListUsers(ctx, concur.UserListOptions{
		Attributes: concur.LookupUserAttributes,
		PageSize:   1,
		MaxPages:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("auth test: %w", err)
	}

	sample := res.Items
	if len(sample) > 1 {
		sample = sample[:1]
	}
	return &AuthTestResult{
		OK:          true,
		TokenExpiry: tok.Expiry,
		Sample:      records(sample),
	}, nil
}
