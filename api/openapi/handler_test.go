package openapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/concur-accruals/api/openapi"
)

type pingOutput struct {
	Body struct {
		Pong bool `json:"pong"`
	}
}

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()

	e := echo.New()
	cfg := huma.DefaultConfig("Test API", "1.0.0")
	cfg.DocsPath = ""
	api := humaecho.New(e, cfg)
	huma.Get(api, "/api/v1/ping", func(_ context.Context, _ *struct{}) (*pingOutput, error) {
		out := &pingOutput{}
		out.Body.Pong = true
		return out, nil
	})
	openapi.RegisterRoutes(e, api, "Test <API>")
	return e
}

func TestRegisterRoutes(t *testing.T) {
	t.Parallel()

	e := newTestServer(t)

	tests := []struct {
		name         string
		path         string
		wantStatus   int
		wantType     string
		wantContains string
	}{
		{
			name:         "json spec",
			path:         "/swagger/swagger.json",
			wantStatus:   http.StatusOK,
			wantType:     echo.MIMEApplicationJSON,
			wantContains: "/api/v1/ping",
		},
		{
			name:         "yaml spec",
			path:         "/swagger/swagger.yaml",
			wantStatus:   http.StatusOK,
			wantType:     "text/yaml",
			wantContains: "openapi: 3.1",
		},
		{
			name:         "ui escapes title",
			path:         "/swagger/index.html",
			wantStatus:   http.StatusOK,
			wantType:     echo.MIMETextHTMLCharsetUTF8,
			wantContains: "Test &lt;API&gt;",
		},
		{
			name:       "bare path redirects",
			path:       "/swagger",
			wantStatus: http.StatusMovedPermanently,
		},
		{
			name:       "trailing slash redirects",
			path:       "/swagger/",
			wantStatus: http.StatusMovedPermanently,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, tt.path, http.NoBody)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantType != "" {
				assert.Equal(t, tt.wantType, rec.Header().Get(echo.HeaderContentType))
			}
			if tt.wantContains != "" {
				assert.Contains(t, rec.Body.String(), tt.wantContains)
			}
			if tt.wantStatus == http.StatusMovedPermanently {
				assert.Equal(t, "/swagger/index.html", rec.Header().Get(echo.HeaderLocation))
			}
		})
	}
}

func TestRegisterRoutes_JSONIsValidDocument(t *testing.T) {
	t.Parallel()

	e := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/swagger/swagger.json", http.NoBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	info, ok := doc["info"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Test API", info["title"])
}
