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

func newUsersAPI(t *testing.T, svc *fakeAccruals) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	handlers.RegisterUserRoutes(api, handlers.NewUsersHandler(svc))
	return api
}

func TestListUsers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantTake   int
	}{
		{name: "default take", path: "/api/v1/users", wantStatus: http.StatusOK, wantTake: 500},
		{name: "explicit take", path: "/api/v1/users?take=25", wantStatus: http.StatusOK, wantTake: 25},
		{name: "take above maximum", path: "/api/v1/users?take=5001", wantStatus: http.StatusUnprocessableEntity},
		{name: "take below minimum", path: "/api/v1/users?take=0", wantStatus: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := &fakeAccruals{users: &accruals.UserList{
				Users:    []domain.Record{{"id": "u1", "userName": "ada@corp.example"}},
				Returned: 1,
				Scanned:  3,
				Meta:     domain.CollectionMeta{Pages: 1, StoppedAt: "exhausted"},
			}}
			api := newUsersAPI(t, svc)

			resp := api.Get(tt.path)
			require.Equal(t, tt.wantStatus, resp.Code)
			if tt.wantStatus != http.StatusOK {
				return
			}
			assert.Equal(t, tt.wantTake, svc.gotTake)
			body := resp.Body.String()
			assert.Contains(t, body, `"returned":1`)
			assert.Contains(t, body, `"scanned":3`)
			assert.Contains(t, body, `"stoppedAt":"exhausted"`)
			assert.Contains(t, body, "ada@corp.example")
		})
	}
}

func TestGetUser(t *testing.T) {
	t.Parallel()

	svc := &fakeAccruals{detail: &accruals.UserDetail{
		User:       domain.Record{"id": "u42", "displayName": "Ada Lovelace"},
		Attributes: []string{"id", "displayName"},
	}}
	api := newUsersAPI(t, svc)

	resp := api.Get("/api/v1/users/u42")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "u42", svc.gotID)
	assert.Contains(t, resp.Body.String(), "Ada Lovelace")
	assert.Contains(t, resp.Body.String(), `"attributes":["id","displayName"]`)
}

func TestGetUserReports(t *testing.T) {
	t.Parallel()

	svc := &fakeAccruals{
		reports: []domain.Record{{"id": "r1", "name": "March travel"}},
		meta:    domain.CollectionMeta{Pages: 1, StoppedAt: "short_page"},
	}
	api := newUsersAPI(t, svc)

	resp := api.Get("/api/v1/users/u42/reports")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "u42", svc.gotID)
	body := resp.Body.String()
	assert.Contains(t, body, `"user_id":"u42"`)
	assert.Contains(t, body, "March travel")
	assert.Contains(t, body, `"stoppedAt":"short_page"`)
}
