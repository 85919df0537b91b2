package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/concur-accruals/internal/api/handlers"
	"github.com/donaldgifford/concur-accruals/internal/concur"
)

func TestGetQuota(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		rl         *concur.RateLimiter
		preCalls   int
		wantLimit  string
		wantUsed   string
		wantRemain string
	}{
		{
			name:       "nil rate limiter returns zeroes",
			rl:         nil,
			wantLimit:  `"daily_limit":0`,
			wantUsed:   `"daily_used":0`,
			wantRemain: `"remaining":0`,
		},
		{
			name:       "fresh rate limiter",
			rl:         concur.NewRateLimiter(100, 10, 5000),
			wantLimit:  `"daily_limit":5000`,
			wantUsed:   `"daily_used":0`,
			wantRemain: `"remaining":5000`,
		},
		{
			name:       "rate limiter with usage",
			rl:         concur.NewRateLimiter(100, 10, 100),
			preCalls:   3,
			wantLimit:  `"daily_limit":100`,
			wantUsed:   `"daily_used":3`,
			wantRemain: `"remaining":97`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if tt.rl != nil {
				for range tt.preCalls {
					require.NoError(t, tt.rl.Wait(t.Context()))
				}
			}

			h := handlers.NewQuotaHandler(tt.rl)

			_, api := humatest.New(t)
			handlers.RegisterQuotaRoutes(api, h)

			resp := api.Get("/api/v1/quota")
			require.Equal(t, http.StatusOK, resp.Code)

			body := resp.Body.String()
			assert.Contains(t, body, tt.wantLimit)
			assert.Contains(t, body, tt.wantUsed)
			assert.Contains(t, body, tt.wantRemain)
			assert.Contains(t, body, `"reset_at"`)
			assert.Contains(t, body, `"backoff_remaining":0`)
		})
	}
}

func TestGetQuota_ResetAtAndBackoff(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 6, 15, 14, 30, 0, 0, time.UTC)
	rl := concur.NewRateLimiter(
		5, 10, 5000,
		concur.WithRateLimiterNowFunc(func() time.Time { return now }),
	)
	rl.RecordThrottle(30 * time.Second)

	h := handlers.NewQuotaHandler(rl)

	_, api := humatest.New(t)
	handlers.RegisterQuotaRoutes(api, h)

	resp := api.Get("/api/v1/quota")
	require.Equal(t, http.StatusOK, resp.Code)

	body := resp.Body.String()
	assert.Contains(t, body, "2026-06-16T14:30:00Z")
	assert.Contains(t, body, `"backoff_remaining":30`)
}
