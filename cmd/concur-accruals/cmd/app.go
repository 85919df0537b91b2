package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/oauth2"

	"github.com/donaldgifford/concur-accruals/internal/accruals"
	"github.com/donaldgifford/concur-accruals/internal/concur"
	"github.com/donaldgifford/concur-accruals/internal/config"
	"github.com/donaldgifford/concur-accruals/internal/secrets"
	"github.com/donaldgifford/concur-accruals/internal/store"
)

// sessionTokens is what the executor, aggregator and refresh engine need
// from the OAuth session.
type sessionTokens interface {
	concur.TokenProvider
	Refresh(ctx context.Context) (*oauth2.Token, error)
}

// missingCredentials stands in for the token manager when the secrets chain
// cannot supply a complete credential set. Every Concur call reports err.
type missingCredentials struct {
	err error
}

func (m missingCredentials) Token(context.Context) (string, error) { return "", m.err }

func (m missingCredentials) Refresh(context.Context) (*oauth2.Token, error) { return nil, m.err }

// app holds the wired components shared by serve and the client commands.
type app struct {
	cfg      *config.Config
	log      *slog.Logger
	store    *store.PostgresStore // nil without a database
	sources  secrets.Sources
	tokenURL string
	tokens   sessionTokens
	limiter  *concur.RateLimiter
	service  *accruals.Service
}

func newApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log}

	if cfg.Database.Enabled() {
		st, err := store.NewPostgresStore(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		a.store = st
	}

	sources, writers, err := buildSecrets(cfg.Secrets, a.store, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.sources = sources

	tokens, tokenURL, err := buildTokens(ctx, cfg.Concur, sources, writers, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.tokens = tokens
	a.tokenURL = tokenURL

	baseURL := cfg.Concur.BaseURL
	if baseURL == "" {
		baseURL = secrets.BaseURL(ctx, sources.Chain)
	}

	rl := cfg.Concur.RateLimit
	a.limiter = concur.NewRateLimiter(rl.PerSecond, rl.Burst, rl.DailyLimit)

	client := buildClient(cfg.Concur, baseURL, tokens, a.limiter, log)
	a.service = accruals.NewService(client,
		accruals.WithLogger(log),
		accruals.WithConcurrency(cfg.Concur.OrgConcurrency),
		accruals.WithTokenRefresher(tokens),
	)

	log.Info("concur client configured",
		"base_url", baseURL,
		"secret_providers", strings.Join(sources.Chain.Providers(), ","),
		"database", a.store != nil,
	)
	return a, nil
}

// Close releases the database pool.
func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
}

// buildSecrets assembles the lookup chain: database overlay, cached Key
// Vault, local file, then the environment. Writable stores receive rotated
// refresh tokens.
func buildSecrets(
	cfg config.SecretsConfig,
	st *store.PostgresStore,
	log *slog.Logger,
) (secrets.Sources, []secrets.Writer, error) {
	var (
		sources   secrets.Sources
		providers []secrets.Provider
		writers   []secrets.Writer
	)

	if st != nil {
		overlay := store.NewRefreshTokenSecrets(st)
		providers = append(providers, overlay)
		writers = append(writers, overlay)
	}

	vaultURL := cfg.KeyVaultURL
	if vaultURL == "" {
		vaultURL = secrets.VaultURL(cfg.KeyVaultName)
	}
	if vaultURL != "" {
		kv, err := secrets.NewKeyVaultProvider(vaultURL)
		if err != nil {
			return secrets.Sources{}, nil, fmt.Errorf("configuring key vault: %w", err)
		}
		sources.KeyVault = kv
		cache, err := secrets.NewCachedProvider(kv, cfg.CacheTTL)
		if err != nil {
			return secrets.Sources{}, nil, err
		}
		sources.Cache = cache
		providers = append(providers, sources.Cache)
		writers = append(writers, kv)
	}

	if cfg.FilePath != "" {
		sources.File = secrets.NewFileProvider(cfg.FilePath)
		providers = append(providers, sources.File)
		writers = append(writers, sources.File)
	}

	providers = append(providers, secrets.NewEnvProvider())
	sources.Chain = secrets.NewChain(log, providers...)

	return sources, writers, nil
}

func buildTokens(
	ctx context.Context,
	cfg config.ConcurConfig,
	sources secrets.Sources,
	writers []secrets.Writer,
	log *slog.Logger,
) (sessionTokens, string, error) {
	creds, err := secrets.LoadCredentials(ctx, sources.Chain)
	if err != nil {
		log.Warn("concur credentials incomplete; concur calls will fail until configured", "error", err)
		return missingCredentials{err: err}, "", nil
	}

	tm, err := concur.NewTokenManager(creds,
		concur.WithAuthStyle(authStyle(cfg.AuthStyle)),
		concur.WithTokenTimeout(cfg.TokenTimeout),
		concur.WithExpirySkew(cfg.ExpirySkew),
		concur.WithRotationFunc(secrets.RotationWriter(log, sources.Cache, writers...)),
		concur.WithTokenLogger(log),
	)
	if err != nil {
		return nil, "", fmt.Errorf("creating token manager: %w", err)
	}
	return tm, creds.TokenURL, nil
}

func buildClient(
	cfg config.ConcurConfig,
	baseURL string,
	tokens concur.TokenProvider,
	limiter *concur.RateLimiter,
	log *slog.Logger,
) *concur.Client {
	exec := concur.NewExecutor(tokens,
		concur.WithRateLimiter(limiter),
		concur.WithRequestTimeout(cfg.RequestTimeout),
		concur.WithExecutorLogger(log),
	)

	negOpts := []concur.NegotiatorOption{
		concur.WithMaxFixes(cfg.MaxAttributeFix),
		concur.WithRejectionMarkers(cfg.RejectionMarkers...),
		concur.WithNegotiatorLogger(log),
	}
	if len(cfg.SafeAttributes) > 0 {
		negOpts = append(negOpts, concur.WithSafeAttributes(concur.NewAttributeSet(cfg.SafeAttributes...)))
	}
	collector := concur.NewCollector(exec,
		concur.WithNegotiator(concur.NewNegotiator(negOpts...)),
		concur.WithCollectorLogger(log),
	)

	clientOpts := []concur.ClientOption{
		concur.WithUserAttributes(concur.NewAttributeSet(cfg.UserAttributes...)),
		concur.WithUsersPaging(cfg.UsersPageSize, cfg.UsersMaxPages),
		concur.WithReportPageSize(cfg.ReportPageSize),
		concur.WithClientLogger(log),
	}
	if len(cfg.DetailAttributes) > 0 {
		clientOpts = append(clientOpts, concur.WithDetailAttributes(concur.NewAttributeSet(cfg.DetailAttributes...)))
	}
	return concur.NewClient(baseURL, collector, clientOpts...)
}

func authStyle(s string) oauth2.AuthStyle {
	if s == "header" {
		return oauth2.AuthStyleInHeader
	}
	return oauth2.AuthStyleInParams
}
