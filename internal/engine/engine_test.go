package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	accrualsMocks "github.com/donaldgifford/concur-accruals/internal/accruals/mocks"
	"github.com/donaldgifford/concur-accruals/internal/concur"
	"github.com/donaldgifford/concur-accruals/internal/notify"
	notifyMocks "github.com/donaldgifford/concur-accruals/internal/notify/mocks"
	domain "github.com/donaldgifford/concur-accruals/pkg/types"
)

const testTokenURL = "https://us.api.example.test/oauth2/v0/token"

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestEngine(
	tokens TokenRefresher,
	n notify.Notifier,
	opts ...EngineOption,
) *Engine {
	opts = append([]EngineOption{
		WithLogger(quietLogger()),
		WithTokenURL(testTokenURL),
		WithNowFunc(func() time.Time { return testNow }),
	}, opts...)
	return NewEngine(tokens, n, opts...)
}

func rejected() error {
	return &concur.Error{
		Where:    "token",
		Kind:     concur.KindAuthRejected,
		Status:   http.StatusBadRequest,
		Response: `{"error":"invalid_grant"}`,
	}
}

func unavailable() error {
	return &concur.Error{Where: "token", Kind: concur.KindAuthUnavailable, Status: http.StatusServiceUnavailable}
}

func alertOfKind(kind string) any {
	return mock.MatchedBy(func(a *domain.CredentialAlert) bool {
		return a.Kind == kind && a.TokenURL == testTokenURL && a.OccurredAt.Equal(testNow)
	})
}

func TestRunTokenRefresh_Success(t *testing.T) {
	t.Parallel()

	tokens := accrualsMocks.NewMockTokenRefresher(t)
	tokens.EXPECT().Refresh(mock.Anything).
		Return(&oauth2.Token{AccessToken: "at", Expiry: testNow.Add(time.Hour)}, nil).Once()
	n := notifyMocks.NewMockNotifier(t)

	eng := newTestEngine(tokens, n)
	require.NoError(t, eng.RunTokenRefresh(context.Background()))
}

func TestRunTokenRefresh_RejectionAlertsOnce(t *testing.T) {
	t.Parallel()

	tokens := accrualsMocks.NewMockTokenRefresher(t)
	tokens.EXPECT().Refresh(mock.Anything).Return(nil, rejected()).Twice()
	n := notifyMocks.NewMockNotifier(t)
	n.EXPECT().SendCredentialAlert(mock.Anything, alertOfKind(notify.KindAuthRejected)).Return(nil).Once()

	eng := newTestEngine(tokens, n)

	err := eng.RunTokenRefresh(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, concur.ErrAuthRejected)

	// Still failing: no second alert.
	require.Error(t, eng.RunTokenRefresh(context.Background()))
}

func TestRunTokenRefresh_TransientThreshold(t *testing.T) {
	t.Parallel()

	tokens := accrualsMocks.NewMockTokenRefresher(t)
	tokens.EXPECT().Refresh(mock.Anything).Return(nil, unavailable()).Times(3)
	n := notifyMocks.NewMockNotifier(t)
	n.EXPECT().SendCredentialAlert(mock.Anything, alertOfKind(notify.KindRefreshFailed)).
		Run(func(_ context.Context, a *domain.CredentialAlert) {
			assert.Contains(t, a.Message, "3 consecutive refresh failures")
		}).
		Return(nil).Once()

	eng := newTestEngine(tokens, n, WithFailureThreshold(3))

	for range 3 {
		require.Error(t, eng.RunTokenRefresh(context.Background()))
	}
}

func TestRunTokenRefresh_Recovery(t *testing.T) {
	t.Parallel()

	tokens := accrualsMocks.NewMockTokenRefresher(t)
	tokens.EXPECT().Refresh(mock.Anything).Return(nil, rejected()).Once()
	tokens.EXPECT().Refresh(mock.Anything).
		Return(&oauth2.Token{AccessToken: "at", Expiry: testNow.Add(time.Hour)}, nil).Twice()
	n := notifyMocks.NewMockNotifier(t)
	n.EXPECT().SendCredentialAlert(mock.Anything, alertOfKind(notify.KindAuthRejected)).Return(nil).Once()
	n.EXPECT().SendCredentialAlert(mock.Anything, alertOfKind(notify.KindRecovered)).Return(nil).Once()

	eng := newTestEngine(tokens, n)

	require.Error(t, eng.RunTokenRefresh(context.Background()))
	require.NoError(t, eng.RunTokenRefresh(context.Background()))
	// Healthy again: no further notices.
	require.NoError(t, eng.RunTokenRefresh(context.Background()))
}

func TestRunTokenRefresh_NotifierFailureIsLogged(t *testing.T) {
	t.Parallel()

	tokens := accrualsMocks.NewMockTokenRefresher(t)
	tokens.EXPECT().Refresh(mock.Anything).Return(nil, rejected()).Once()
	n := notifyMocks.NewMockNotifier(t)
	n.EXPECT().SendCredentialAlert(mock.Anything, mock.Anything).Return(errors.New("webhook down")).Once()

	eng := newTestEngine(tokens, n)

	err := eng.RunTokenRefresh(context.Background())
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "webhook down")
}

func TestNewEngine_NilNotifier(t *testing.T) {
	t.Parallel()

	tokens := accrualsMocks.NewMockTokenRefresher(t)
	tokens.EXPECT().Refresh(mock.Anything).Return(nil, rejected()).Once()

	eng := NewEngine(tokens, nil, WithLogger(quietLogger()))
	require.Error(t, eng.RunTokenRefresh(context.Background()))
}

func TestRunTokenRefresh_InterruptedDoesNotCountTowardAlert(t *testing.T) {
	t.Parallel()

	tokens := accrualsMocks.NewMockTokenRefresher(t)
	tokens.EXPECT().Refresh(mock.Anything).
		Return(nil, fmt.Errorf("waiting for token refresh: %w", context.DeadlineExceeded)).Twice()
	tokens.EXPECT().Refresh(mock.Anything).Return(nil, unavailable()).Once()
	n := notifyMocks.NewMockNotifier(t)

	eng := newTestEngine(tokens, n, WithFailureThreshold(2))

	for range 2 {
		err := eng.RunTokenRefresh(context.Background())
		require.ErrorIs(t, err, context.DeadlineExceeded)
	}
	// One real failure stays under the threshold of two.
	require.Error(t, eng.RunTokenRefresh(context.Background()))
	n.AssertNotCalled(t, "SendCredentialAlert", mock.Anything, mock.Anything)
}
