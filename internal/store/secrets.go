package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/donaldgifford/concur-accruals/internal/secrets"
)

// Refresh token sources recorded with each saved token.
const (
	SourceRotation = "rotation"
	SourceSeed     = "seed"
)

// RefreshTokenSecrets exposes the latest persisted refresh token as a
// secrets.Provider so a rotated token outranks the one provisioned in the
// vault or environment. It also implements secrets.Writer for the rotation
// hook. Only secrets.NameRefreshToken is served.
type RefreshTokenSecrets struct {
	store Store
}

// NewRefreshTokenSecrets wraps s.
func NewRefreshTokenSecrets(s Store) *RefreshTokenSecrets {
	return &RefreshTokenSecrets{store: s}
}

// Name implements secrets.Provider.
func (*RefreshTokenSecrets) Name() string { return "postgres" }

// Secret implements secrets.Provider.
func (r *RefreshTokenSecrets) Secret(ctx context.Context, name string) (string, error) {
	if name != secrets.NameRefreshToken {
		return "", fmt.Errorf("%w: %s", secrets.ErrSecretNotFound, name)
	}
	token, err := r.store.LatestRefreshToken(ctx)
	if errors.Is(err, ErrNotFound) {
		return "", fmt.Errorf("%w: %s", secrets.ErrSecretNotFound, name)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", secrets.ErrStoreUnavailable, err)
	}
	return token, nil
}

// SetSecret implements secrets.Writer.
func (r *RefreshTokenSecrets) SetSecret(ctx context.Context, name, value string) error {
	if name != secrets.NameRefreshToken {
		return fmt.Errorf("postgres secret store only holds %s, not %s", secrets.NameRefreshToken, name)
	}
	return r.store.SaveRefreshToken(ctx, value, SourceRotation)
}
