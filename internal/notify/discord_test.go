package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/concur-accruals/internal/metrics"
	domain "github.com/donaldgifford/concur-accruals/pkg/types"
)

func testAlert(kind string) *domain.CredentialAlert {
	return &domain.CredentialAlert{
		Kind:       kind,
		Message:    `token endpoint returned 400: {"error":"invalid_grant"}`,
		TokenURL:   "https://us.api.concursolutions.com/oauth2/v0/token",
		OccurredAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestDiscordNotifier_SendCredentialAlert(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		alert      *domain.CredentialAlert
		statusCode int
		wantErr    bool
		errMsg     string
		wantColor  int
		wantTitle  string
	}{
		{
			name:       "rejection uses red",
			alert:      testAlert(KindAuthRejected),
			statusCode: http.StatusNoContent,
			wantColor:  colorRed,
			wantTitle:  "rejected",
		},
		{
			name:       "transient failure uses orange",
			alert:      testAlert(KindRefreshFailed),
			statusCode: http.StatusNoContent,
			wantColor:  colorOrange,
			wantTitle:  "need attention",
		},
		{
			name:       "recovery uses green",
			alert:      testAlert(KindRecovered),
			statusCode: http.StatusOK,
			wantColor:  colorGreen,
			wantTitle:  "recovered",
		},
		{
			name:       "discord returns 429 rate limited",
			alert:      testAlert(KindAuthRejected),
			statusCode: http.StatusTooManyRequests,
			wantErr:    true,
			errMsg:     "rate limited",
		},
		{
			name:       "discord returns 400 error",
			alert:      testAlert(KindAuthRejected),
			statusCode: http.StatusBadRequest,
			wantErr:    true,
			errMsg:     "discord returned 400",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var received discordWebhookPayload

			srv := httptest.NewServer(
				http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
					assert.Equal(t, http.MethodPost, r.Method)

					err := json.NewDecoder(r.Body).Decode(&received)
					assert.NoError(t, err)

					w.WriteHeader(tt.statusCode)
				}),
			)
			defer srv.Close()

			d := NewDiscordNotifier(srv.URL)
			err := d.SendCredentialAlert(context.Background(), tt.alert)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}

			require.NoError(t, err)
			require.Len(t, received.Embeds, 1)
			assert.Equal(t, "concur-accruals", received.Username)

			embed := received.Embeds[0]
			assert.Equal(t, tt.wantColor, embed.Color)
			assert.Contains(t, embed.Title, tt.wantTitle)
			assert.Equal(t, tt.alert.Message, embed.Description)
			assert.Equal(t, "2026-03-01T12:00:00Z", embed.Timestamp)

			fieldMap := make(map[string]string)
			for _, f := range embed.Fields {
				fieldMap[f.Name] = f.Value
			}
			assert.Equal(t, tt.alert.Kind, fieldMap["Kind"])
			assert.Equal(t, tt.alert.TokenURL, fieldMap["Token URL"])
		})
	}
}

func TestDiscordNotifier_TruncatesLongMessage(t *testing.T) {
	t.Parallel()

	var received discordWebhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	alert := &domain.CredentialAlert{Kind: KindRefreshFailed, Message: strings.Repeat("x", 5000)}
	d := NewDiscordNotifier(srv.URL, WithUsername("accruals-prod"))
	require.NoError(t, d.SendCredentialAlert(context.Background(), alert))

	require.Len(t, received.Embeds, 1)
	assert.Len(t, received.Embeds[0].Description, maxDescription)
	assert.Equal(t, "accruals-prod", received.Username)
	assert.Empty(t, received.Embeds[0].Timestamp)
}

func TestDiscordNotifier_NilAlert(t *testing.T) {
	t.Parallel()

	d := NewDiscordNotifier("https://example.com")
	require.Error(t, d.SendCredentialAlert(context.Background(), nil))
}

func TestDiscordNotifier_NetworkError(t *testing.T) {
	t.Parallel()

	d := NewDiscordNotifier("http://127.0.0.1:1") // nothing listening
	err := d.SendCredentialAlert(context.Background(), testAlert(KindAuthRejected))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sending discord webhook")
}

func TestDiscordNotifier_InvalidWebhookURL(t *testing.T) {
	t.Parallel()

	d := NewDiscordNotifier("://not-a-valid-url")
	err := d.SendCredentialAlert(context.Background(), testAlert(KindAuthRejected))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating discord request")
}

func TestWithHTTPClient(t *testing.T) {
	t.Parallel()

	custom := &http.Client{}
	d := NewDiscordNotifier("https://example.com", WithHTTPClient(custom))
	assert.Same(t, custom, d.client)
}

func getNotificationHistogramSampleCount() uint64 {
	ch := make(chan prometheus.Metric, 1)
	metrics.NotificationDuration.Collect(ch)
	m := <-ch
	pb := &dto.Metric{}
	_ = m.Write(pb)
	return pb.GetHistogram().GetSampleCount()
}

func TestSendCredentialAlert_ObservesNotificationDuration(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	before := getNotificationHistogramSampleCount()

	d := NewDiscordNotifier(srv.URL)
	require.NoError(t, d.SendCredentialAlert(context.Background(), testAlert(KindRecovered)))

	after := getNotificationHistogramSampleCount()
	assert.Greater(t, after, before, "NotificationDuration histogram sample count should increase")
}
