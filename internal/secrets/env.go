package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// EnvProvider reads secrets from environment variables.
type EnvProvider struct {
	names  map[string][]string
	lookup func(string) (string, bool)
}

// EnvOption configures the EnvProvider.
type EnvOption func(*EnvProvider)

// WithEnvNames replaces the secret-name to variable mapping.
func WithEnvNames(names map[string][]string) EnvOption {
	return func(p *EnvProvider) {
		p.names = names
	}
}

// WithEnvLookup overrides os.LookupEnv for testing.
func WithEnvLookup(f func(string) (string, bool)) EnvOption {
	return func(p *EnvProvider) {
		p.lookup = f
	}
}

// NewEnvProvider creates an EnvProvider using DefaultEnvNames.
func NewEnvProvider(opts ...EnvOption) *EnvProvider {
	p := &EnvProvider{
		names:  DefaultEnvNames,
		lookup: os.LookupEnv,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements Provider.
func (*EnvProvider) Name() string { return "env" }

// Secret returns the first non-blank variable mapped to name. Names without
// a mapping are read as upper-case variables with dashes turned into
// underscores.
func (p *EnvProvider) Secret(_ context.Context, name string) (string, error) {
	vars, ok := p.names[name]
	if !ok {
		vars = []string{strings.ToUpper(strings.ReplaceAll(name, "-", "_"))}
	}
	for _, v := range vars {
		if val, ok := p.lookup(v); ok && strings.TrimSpace(val) != "" {
			return val, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrSecretNotFound, name)
}
