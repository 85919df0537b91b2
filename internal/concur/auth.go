package concur

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/donaldgifford/concur-accruals/internal/metrics"
)

const (
	defaultExpirySkew   = 60 * time.Second
	defaultTokenExpiry  = 1800 * time.Second
	defaultTokenTimeout = 30 * time.Second
	maxTokenLifetime    = 7 * 24 * time.Hour
	tokenWhere          = "token_refresh"
)

// RotationFunc receives a newly issued refresh token so the caller can
// persist it. An error is logged; the fresh access token is still used.
type RotationFunc func(ctx context.Context, refreshToken string) error

type cachedToken struct {
	token    *oauth2.Token
	issuedAt time.Time
}

// TokenManager implements TokenProvider using the Concur OAuth2 refresh-token
// grant. Cached tokens are read without locking; at most one exchange runs at
// a time and it is never cancelled on behalf of a single waiting caller.
type TokenManager struct {
	tokenURL     string
	clientID     string
	clientSecret string
	authStyle    oauth2.AuthStyle
	client       *http.Client
	timeout      time.Duration
	skew         time.Duration
	onRotate     RotationFunc
	logger       *slog.Logger
	nowFunc      func() time.Time // for testing

	cache        atomic.Pointer[cachedToken]
	refreshToken atomic.Pointer[string]
	mu           sync.Mutex // serializes exchanges
	group        singleflight.Group
}

// TokenOption configures the TokenManager.
type TokenOption func(*TokenManager)

// WithTokenHTTPClient overrides the default HTTP client.
func WithTokenHTTPClient(c *http.Client) TokenOption {
	return func(m *TokenManager) {
		m.client = c
	}
}

// WithAuthStyle selects how client credentials are presented.
// oauth2.AuthStyleInHeader sends HTTP basic auth; anything else uses the form body.
func WithAuthStyle(s oauth2.AuthStyle) TokenOption {
	return func(m *TokenManager) {
		m.authStyle = s
	}
}

// WithTokenTimeout bounds each token exchange.
func WithTokenTimeout(d time.Duration) TokenOption {
	return func(m *TokenManager) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// WithExpirySkew sets how long before expiry a token is considered stale.
func WithExpirySkew(d time.Duration) TokenOption {
	return func(m *TokenManager) {
		if d >= 0 {
			m.skew = d
		}
	}
}

// WithRotationFunc registers a hook for rotated refresh tokens.
func WithRotationFunc(f RotationFunc) TokenOption {
	return func(m *TokenManager) {
		m.onRotate = f
	}
}

// WithTokenLogger sets the logger.
func WithTokenLogger(l *slog.Logger) TokenOption {
	return func(m *TokenManager) {
		m.logger = l
	}
}

// WithTokenNowFunc overrides the time function for testing.
func WithTokenNowFunc(f func() time.Time) TokenOption {
	return func(m *TokenManager) {
		m.nowFunc = f
	}
}

// NewTokenManager creates a token manager for one credential set.
func NewTokenManager(creds Credentials, opts ...TokenOption) (*TokenManager, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	m := &TokenManager{
		tokenURL:     strings.TrimRight(strings.TrimSpace(creds.TokenURL), "/"),
		clientID:     creds.ClientID,
		clientSecret: creds.ClientSecret,
		authStyle:    oauth2.AuthStyleInParams,
		client:       &http.Client{},
		timeout:      defaultTokenTimeout,
		skew:         defaultExpirySkew,
		logger:       slog.Default(),
		nowFunc:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	rt := creds.RefreshToken
	m.refreshToken.Store(&rt)
	return m, nil
}

// Token returns a valid access token, refreshing if necessary.
func (m *TokenManager) Token(ctx context.Context) (string, error) {
	if tok, ok := m.cached(); ok {
		return tok.AccessToken, nil
	}
	tok, err := m.refresh(ctx, false)
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

// Refresh performs an exchange even when the cached token is still valid.
func (m *TokenManager) Refresh(ctx context.Context) (*oauth2.Token, error) {
	return m.refresh(ctx, true)
}

// Current returns the cached token snapshot, or nil before the first exchange.
func (m *TokenManager) Current() *oauth2.Token {
	if c := m.cache.Load(); c != nil {
		return c.token
	}
	return nil
}

// RefreshToken returns the refresh token the next exchange will use.
func (m *TokenManager) RefreshToken() string {
	return *m.refreshToken.Load()
}

func (m *TokenManager) cached() (*oauth2.Token, bool) {
	c := m.cache.Load()
	if c == nil || c.token.AccessToken == "" {
		return nil, false
	}
	// Short-lived tokens would otherwise never be served from cache.
	skew := m.skew
	if half := c.token.Expiry.Sub(c.issuedAt) / 2; half < skew {
		skew = half
	}
	if m.nowFunc().Before(c.token.Expiry.Add(-skew)) {
		return c.token, true
	}
	return nil, false
}

func (m *TokenManager) refresh(ctx context.Context, force bool) (*oauth2.Token, error) {
	ch := m.group.DoChan("refresh", func() (any, error) {
		m.mu.Lock()
		defer m.mu.Unlock()

		if !force {
			if tok, ok := m.cached(); ok {
				return tok, nil
			}
		}

		exCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.timeout)
		defer cancel()
		return m.exchangeLocked(exCtx)
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for token refresh: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*oauth2.Token), nil
	}
}

type tokenResponse struct {
	AccessToken  string    `json:"access_token"`
	ExpiresIn    expiresIn `json:"expires_in"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	Scope        string    `json:"scope"`
}

type tokenErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// expiresIn accepts a JSON number or a numeric string. Values outside
// [0, maxTokenLifetime] are clamped.
type expiresIn int64

func (e *expiresIn) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*e = 0
		return nil
	}
	s := strings.Trim(string(b), `"`)
	if s == "" {
		*e = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parsing expires_in %q: %w", s, err)
	}
	switch maxSeconds := maxTokenLifetime.Seconds(); {
	case math.IsNaN(f), f < 0:
		f = 0
	case f > maxSeconds:
		f = maxSeconds
	}
	*e = expiresIn(f)
	return nil
}

// refreshTokenOnly salvages a rotated refresh token from a response that
// otherwise fails to parse.
type refreshTokenOnly struct {
	RefreshToken string `json:"refresh_token"`
}

func (m *TokenManager) exchangeLocked(ctx context.Context) (tok *oauth2.Token, err error) {
	start := time.Now()
	defer func() {
		metrics.TokenRefreshDuration.Observe(time.Since(start).Seconds())
		outcome := "success"
		if ce, ok := AsError(err); ok {
			outcome = string(ce.Kind)
		} else if err != nil {
			outcome = "error"
		}
		metrics.TokenRefreshesTotal.WithLabelValues(outcome).Inc()
	}()

	held := m.RefreshToken()
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {held},
	}
	if m.authStyle != oauth2.AuthStyleInHeader {
		form.Set("client_id", m.clientID)
		form.Set("client_secret", m.clientSecret)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		m.tokenURL,
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return nil, m.tokenError(KindAuthProtocolError, 0, "", fmt.Errorf("creating token request: %w", err))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	if m.authStyle == oauth2.AuthStyleInHeader {
		req.SetBasicAuth(url.QueryEscape(m.clientID), url.QueryEscape(m.clientSecret))
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, m.tokenError(KindAuthUnavailable, 0, "", fmt.Errorf("executing token request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, m.tokenError(KindAuthUnavailable, resp.StatusCode, "", fmt.Errorf("reading token response: %w", err))
	}

	switch {
	case resp.StatusCode == http.StatusBadRequest,
		resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden:
		var errResp tokenErrorResponse
		_ = json.Unmarshal(body, &errResp) //nolint:errcheck // best-effort error parsing
		e := m.tokenError(KindAuthRejected, resp.StatusCode, string(body), nil)
		e.Message = strings.TrimSpace(errResp.Error + " " + errResp.ErrorDescription)
		m.logger.Error("concur token endpoint rejected credentials",
			"status", resp.StatusCode, "error", errResp.Error)
		return nil, e
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, m.tokenError(KindAuthUnavailable, resp.StatusCode, string(body), nil)
	}

	// A rotated refresh token is kept even when the rest of the response is
	// unusable; the previous one may already be spent.
	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		var salvage refreshTokenOnly
		if json.Unmarshal(body, &salvage) == nil {
			m.rotate(ctx, held, salvage.RefreshToken)
		}
		return nil, m.tokenError(KindAuthProtocolError, resp.StatusCode, string(body),
			fmt.Errorf("parsing token response: %w", err))
	}
	m.rotate(ctx, held, tr.RefreshToken)

	if strings.TrimSpace(tr.AccessToken) == "" {
		e := m.tokenError(KindAuthProtocolError, resp.StatusCode, string(body), nil)
		e.Message = "token response missing access_token"
		return nil, e
	}

	lifetime := time.Duration(tr.ExpiresIn) * time.Second
	if lifetime <= 0 {
		lifetime = defaultTokenExpiry
	}
	now := m.nowFunc()
	tok = &oauth2.Token{
		AccessToken:  tr.AccessToken,
		TokenType:    tr.TokenType,
		RefreshToken: m.RefreshToken(),
		Expiry:       now.Add(lifetime),
	}
	if tr.Scope != "" {
		tok = tok.WithExtra(map[string]any{"scope": tr.Scope})
	}

	m.cache.Store(&cachedToken{token: tok, issuedAt: now})
	metrics.TokenExpiryTimestamp.Set(float64(tok.Expiry.Unix()))
	m.logger.Debug("concur access token refreshed", "expires_at", tok.Expiry)

	return tok, nil
}

func (m *TokenManager) rotate(ctx context.Context, held, issued string) {
	issued = strings.TrimSpace(issued)
	if issued == "" || issued == held {
		return
	}
	m.refreshToken.Store(&issued)
	metrics.RefreshTokenRotationsTotal.Inc()
	m.logger.Info("concur refresh token rotated")
	if m.onRotate != nil {
		if err := m.onRotate(ctx, issued); err != nil {
			m.logger.Error("persisting rotated refresh token", "error", err)
		}
	}
}

func (m *TokenManager) tokenError(kind Kind, status int, body string, err error) *Error {
	return &Error{
		Where:    tokenWhere,
		Kind:     kind,
		Status:   status,
		URL:      m.tokenURL,
		Params:   url.Values{"grant_type": {"refresh_token"}},
		Response: truncate(body, maxResponseSnippet),
		Err:      err,
	}
}

// IsAuthFailure reports whether err came from the token endpoint.
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrAuthRejected) ||
		errors.Is(err, ErrAuthUnavailable) ||
		errors.Is(err, ErrAuthProtocol)
}
