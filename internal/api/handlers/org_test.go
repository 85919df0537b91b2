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

func TestOrgSearch(t *testing.T) {
	t.Parallel()

	svc := &fakeAccruals{org: &accruals.OrgSearchResult{
		Filter:  domain.OrgFilter{OrgUnit2: "FIN"},
		Scanned: 40,
		Users: []domain.UserAccruals{
			{UserID: "u1", UserName: "ada@corp.example", Reports: []domain.Record{{"id": "r1"}}},
			{UserID: "u2", UserName: "bob@corp.example", Error: "concur timeout"},
		},
		Failures: 1,
		DateFrom: "2000-01-01",
		DateTo:   "2026-03-01",
	}}

	_, api := humatest.New(t)
	handlers.RegisterOrgRoutes(api, handlers.NewOrgHandler(svc))

	resp := api.Post("/api/v1/accruals/search", map[string]any{"orgUnit2": "FIN"})
	require.Equal(t, http.StatusOK, resp.Code)

	assert.Equal(t, domain.OrgFilter{OrgUnit2: "FIN"}, svc.gotFilter)
	body := resp.Body.String()
	assert.Contains(t, body, `"scanned":40`)
	assert.Contains(t, body, `"matched":2`)
	assert.Contains(t, body, `"failures":1`)
	assert.Contains(t, body, "concur timeout")
}
