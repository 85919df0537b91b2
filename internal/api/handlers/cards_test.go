package handlers_test

import (
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/concur-accruals/internal/accruals"
	"github.com/donaldgifford/concur-accruals/internal/api/handlers"
	domain "github.com/donaldgifford/concur-accruals/pkg/types"
)

const principalHeader = "X-User-Principal: ada@corp.example"

func newCardsAPI(t *testing.T, svc *fakeAccruals) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	handlers.RegisterCardRoutes(api, handlers.NewCardsHandler(svc))
	return api
}

func TestSearchCards(t *testing.T) {
	t.Parallel()

	svc := &fakeAccruals{cards: &accruals.CardSearchResult{
		Principal:    "ada@corp.example",
		ConcurUserID: "u42",
		DateFrom:     "2026-01-01",
		DateTo:       "2026-01-31",
		Transactions: []domain.Record{{"id": "t1"}, {"id": "t2"}},
		Meta:         domain.CollectionMeta{Pages: 1, StoppedAt: "short_page"},
	}}
	api := newCardsAPI(t, svc)

	resp := api.Post("/api/v1/cards/search", principalHeader, map[string]any{
		"transactionDateFrom": "2026-01-01",
		"transactionDateTo":   "2026-01-31",
		"pageSize":            100,
	})
	require.Equal(t, http.StatusOK, resp.Code)

	assert.Equal(t, "ada@corp.example", svc.gotPrincipal)
	assert.Equal(t, accruals.CardSearch{
		DateFrom: "2026-01-01",
		DateTo:   "2026-01-31",
		PageSize: 100,
	}, svc.gotSearch)

	body := resp.Body.String()
	assert.Contains(t, body, `"concurUserId":"u42"`)
	assert.Contains(t, body, `"count":2`)
}

func TestSearchCards_MissingPrincipal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		headers []any
	}{
		{name: "no header"},
		{name: "blank header", headers: []any{"X-User-Principal:    "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := &fakeAccruals{}
			api := newCardsAPI(t, svc)

			args := append(tt.headers, map[string]any{
				"transactionDateFrom": "2026-01-01",
				"transactionDateTo":   "2026-01-31",
			})
			resp := api.Post("/api/v1/cards/search", args...)
			require.Equal(t, http.StatusUnauthorized, resp.Code)
			assert.Contains(t, resp.Body.String(), handlers.PrincipalHeader)
			assert.Empty(t, svc.gotPrincipal)
		})
	}
}

func TestCardTotals(t *testing.T) {
	t.Parallel()

	svc := &fakeAccruals{totals: &domain.CardTotals{
		DateFrom: "2026-01-01",
		DateTo:   "2026-01-31",
		DateType: domain.DatePosted,
		ByProgram: []domain.ProgramTotal{
			{CardProgramID: "VISA", Count: 2, Total: 150.5, Currency: "USD"},
		},
		ByUser: []domain.UserTotal{
			{UserKey: "E100", Count: 2, Total: 150.5, Currency: "USD"},
		},
		Skipped: 1,
	}}
	api := newCardsAPI(t, svc)

	resp := api.Post("/api/v1/cards/totals", principalHeader, map[string]any{
		"transactionDateFrom": "2026-01-01",
		"transactionDateTo":   "2026-01-31",
		"dateType":            "POSTED",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	assert.Equal(t, "POSTED", svc.gotTotals.DateType)
	body := resp.Body.String()
	assert.Contains(t, body, `"totalsByProgram"`)
	assert.Contains(t, body, `"cardProgramId":"VISA"`)
	assert.Contains(t, body, `"userKey":"E100"`)
	assert.Contains(t, body, `"skipped":1`)
}

func TestCardTotals_RejectsUnknownDateType(t *testing.T) {
	t.Parallel()

	api := newCardsAPI(t, &fakeAccruals{})

	resp := api.Post("/api/v1/cards/totals", principalHeader, map[string]any{
		"transactionDateFrom": "2026-01-01",
		"transactionDateTo":   "2026-01-31",
		"dateType":            "SETTLED",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}
