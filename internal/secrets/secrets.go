// Package secrets resolves Concur credentials and settings from an ordered
// chain of secret stores: the rotation overlay in Postgres, Azure Key Vault,
// a local YAML file, and process environment variables.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/donaldgifford/concur-accruals/internal/concur"
	"github.com/donaldgifford/concur-accruals/internal/metrics"
)

var (
	// ErrSecretNotFound is returned when a store has no value for a name.
	ErrSecretNotFound = errors.New("secret not found")
	// ErrStoreUnavailable is returned when a store cannot be reached.
	ErrStoreUnavailable = errors.New("secret store unavailable")
)

// Key Vault style secret names.
const (
	NameBaseURL      = "concur-api-base-url"
	NameTokenURL     = "concur-token-url"
	NameClientID     = "concur-client-id"
	NameClientSecret = "concur-client-secret"
	NameRefreshToken = "concur-refresh-token"
)

// DefaultEnvNames maps each secret name to the environment variables
// consulted for it, in order.
var DefaultEnvNames = map[string][]string{
	NameBaseURL:      {"CONCUR_API_BASE_URL", "CONCUR_BASE_URL"},
	NameTokenURL:     {"CONCUR_TOKEN_URL"},
	NameClientID:     {"CONCUR_CLIENT_ID"},
	NameClientSecret: {"CONCUR_CLIENT_SECRET"},
	NameRefreshToken: {"CONCUR_REFRESH_TOKEN"},
}

// Provider reads one named secret.
type Provider interface {
	Secret(ctx context.Context, name string) (string, error)
	Name() string
}

// Writer persists a secret value.
type Writer interface {
	SetSecret(ctx context.Context, name, value string) error
}

// Chain consults providers in order and returns the first non-blank value.
// Any provider failure is treated as absent.
type Chain struct {
	providers []Provider
	logger    *slog.Logger
}

// NewChain creates a Chain. Nil providers are skipped.
func NewChain(logger *slog.Logger, providers ...Provider) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Chain{logger: logger}
	for _, p := range providers {
		if p != nil {
			c.providers = append(c.providers, p)
		}
	}
	return c
}

// Name implements Provider.
func (c *Chain) Name() string {
	names := make([]string, 0, len(c.providers))
	for _, p := range c.providers {
		names = append(names, p.Name())
	}
	return "chain(" + strings.Join(names, ",") + ")"
}

// Providers returns the names of the chained providers in lookup order.
func (c *Chain) Providers() []string {
	names := make([]string, 0, len(c.providers))
	for _, p := range c.providers {
		names = append(names, p.Name())
	}
	return names
}

// Secret implements Provider.
func (c *Chain) Secret(ctx context.Context, name string) (string, error) {
	for _, p := range c.providers {
		v, err := p.Secret(ctx, name)
		switch {
		case err == nil && strings.TrimSpace(v) != "":
			metrics.SecretLookupsTotal.WithLabelValues(p.Name(), "hit").Inc()
			return v, nil
		case err == nil, errors.Is(err, ErrSecretNotFound):
			metrics.SecretLookupsTotal.WithLabelValues(p.Name(), "miss").Inc()
		default:
			metrics.SecretLookupsTotal.WithLabelValues(p.Name(), "error").Inc()
			c.logger.WarnContext(ctx, "secret store lookup failed; falling back",
				"provider", p.Name(), "secret", name, "error", err)
		}
	}
	return "", fmt.Errorf("%w: %s", ErrSecretNotFound, name)
}

// LoadCredentials resolves the four OAuth inputs. Every missing name is
// reported in a single joined error.
func LoadCredentials(ctx context.Context, p Provider) (concur.Credentials, error) {
	var (
		creds   concur.Credentials
		missing []error
	)
	fields := []struct {
		name string
		dst  *string
	}{
		{NameTokenURL, &creds.TokenURL},
		{NameClientID, &creds.ClientID},
		{NameClientSecret, &creds.ClientSecret},
		{NameRefreshToken, &creds.RefreshToken},
	}
	for _, f := range fields {
		v, err := p.Secret(ctx, f.name)
		if err != nil || strings.TrimSpace(v) == "" {
			missing = append(missing, fmt.Errorf("missing %s", describe(f.name)))
			continue
		}
		*f.dst = strings.TrimSpace(v)
	}
	if len(missing) > 0 {
		return concur.Credentials{}, errors.Join(append([]error{concur.ErrInvalidCredential}, missing...)...)
	}
	return creds, nil
}

// BaseURL resolves the tenant base URL, falling back to the public default.
func BaseURL(ctx context.Context, p Provider) string {
	v, err := p.Secret(ctx, NameBaseURL)
	if err != nil || strings.TrimSpace(v) == "" {
		return concur.DefaultBaseURL
	}
	return strings.TrimRight(strings.TrimSpace(v), "/")
}

// RotationWriter returns a rotation hook that stores each new refresh token
// under NameRefreshToken in every writer, invalidating cache entries first.
func RotationWriter(logger *slog.Logger, cache *CachedProvider, writers ...Writer) concur.RotationFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, refreshToken string) error {
		var errs []error
		if cache != nil {
			if err := cache.Invalidate(ctx, NameRefreshToken); err != nil {
				errs = append(errs, err)
			}
		}
		for _, w := range writers {
			if w == nil {
				continue
			}
			if err := w.SetSecret(ctx, NameRefreshToken, refreshToken); err != nil {
				errs = append(errs, err)
			}
		}
		if err := errors.Join(errs...); err != nil {
			return fmt.Errorf("persisting rotated refresh token: %w", err)
		}
		logger.InfoContext(ctx, "rotated refresh token persisted", "stores", len(writers))
		return nil
	}
}

func describe(name string) string {
	envs := DefaultEnvNames[name]
	if len(envs) == 0 {
		return name
	}
	return name + " / " + strings.Join(envs, " / ")
}
