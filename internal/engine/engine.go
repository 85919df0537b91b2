// Package engine runs the background jobs of the accruals service: today a
// proactive Concur token refresh that alerts when the stored credentials stop
// working.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/donaldgifford/concur-accruals/internal/concur"
	"github.com/donaldgifford/concur-accruals/internal/notify"
	domain "github.com/donaldgifford/concur-accruals/pkg/types"
)

const defaultFailureThreshold = 3

// TokenRefresher forces an access token exchange.
type TokenRefresher interface {
	Refresh(ctx context.Context) (*oauth2.Token, error)
}

// Engine runs the proactive token refresh and decides when to alert.
type Engine struct {
	tokens           TokenRefresher
	notifier         notify.Notifier
	log              *slog.Logger
	tokenURL         string
	failureThreshold int
	nowFunc          func() time.Time

	mu       sync.Mutex
	failures int  // consecutive refresh failures
	alerted  bool // an alert is outstanding until the next success
}

// EngineOption configures optional Engine parameters.
type EngineOption func(*Engine)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.log = l
	}
}

// WithTokenURL sets the token endpoint named in alerts.
func WithTokenURL(u string) EngineOption {
	return func(e *Engine) {
		e.tokenURL = u
	}
}

// WithFailureThreshold sets how many consecutive transient failures are
// tolerated before alerting. Rejections always alert immediately.
func WithFailureThreshold(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.failureThreshold = n
		}
	}
}

// WithNowFunc overrides the clock.
func WithNowFunc(f func() time.Time) EngineOption {
	return func(e *Engine) {
		e.nowFunc = f
	}
}

// NewEngine creates an Engine. A nil notifier discards alerts.
func NewEngine(tokens TokenRefresher, n notify.Notifier, opts ...EngineOption) *Engine {
	e := &Engine{
		tokens:           tokens,
		notifier:         n,
		log:              slog.Default(),
		failureThreshold: defaultFailureThreshold,
		nowFunc:          time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.notifier == nil {
		e.notifier = notify.NewNoOpNotifier(e.log)
	}
	return e
}

// RunTokenRefresh exchanges the refresh token for a new access token. A
// rejection alerts at once; transient failures alert once the threshold is
// reached. The first success after an alert sends a recovery notice.
func (e *Engine) RunTokenRefresh(ctx context.Context) error {
	tok, err := e.tokens.Refresh(ctx)
	if err != nil {
		if !concur.IsAuthFailure(err) {
			// Cancelled or timed out before the exchange finished.
			e.log.Warn("proactive token refresh interrupted", "error", err)
			return fmt.Errorf("refreshing concur token: %w", err)
		}
		e.onFailure(ctx, err)
		return fmt.Errorf("refreshing concur token: %w", err)
	}

	e.log.Info("proactive token refresh succeeded", "expires_at", tok.Expiry)
	e.onSuccess(ctx)
	return nil
}

func (e *Engine) onFailure(ctx context.Context, err error) {
	e.mu.Lock()
	e.failures++
	failures := e.failures
	rejected := errors.Is(err, concur.ErrAuthRejected)
	send := !e.alerted && (rejected || failures >= e.failureThreshold)
	if send {
		e.alerted = true
	}
	e.mu.Unlock()

	e.log.Error("proactive token refresh failed",
		"error", err,
		"consecutive_failures", failures,
		"rejected", rejected,
	)
	if !send {
		return
	}

	kind, msg := notify.KindRefreshFailed, fmt.Sprintf("%d consecutive refresh failures: %v", failures, err)
	if rejected {
		kind, msg = notify.KindAuthRejected,
			fmt.Sprintf("the token endpoint rejected the stored credentials; re-provision the refresh token: %v", err)
	}
	e.notify(ctx, kind, msg)
}

func (e *Engine) onSuccess(ctx context.Context) {
	e.mu.Lock()
	recovered := e.alerted
	failures := e.failures
	e.failures, e.alerted = 0, false
	e.mu.Unlock()

	if recovered {
		e.notify(ctx, notify.KindRecovered,
			fmt.Sprintf("token refresh succeeded after %d failed attempts", failures))
	}
}

func (e *Engine) notify(ctx context.Context, kind, msg string) {
	alert := &domain.CredentialAlert{
		Kind:       kind,
		Message:    msg,
		TokenURL:   e.tokenURL,
		OccurredAt: e.nowFunc(),
	}
	// Alert delivery must not depend on the job's deadline.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
	defer cancel()
	if err := e.notifier.SendCredentialAlert(ctx, alert); err != nil {
		e.log.Error("sending credential alert", "kind", kind, "error", err)
	}
}
