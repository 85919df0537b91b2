package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecoveryServer(t *testing.T, logger *slog.Logger) *echo.Echo {
	t.Helper()

	e := echo.New()
	e.Use(Recovery(logger))
	e.Use(RequestLog(logger))
	e.GET("/api/v1/users/:id", func(c echo.Context) error {
		if c.Param("id") == "boom" {
			panic("nil attribute set")
		}
		return c.String(http.StatusOK, "ok")
	})
	e.POST("/api/v1/cards/totals", func(echo.Context) error {
		panic(42)
	})
	e.GET("/api/v1/abort", func(echo.Context) error {
		panic(http.ErrAbortHandler)
	})
	return e
}

func TestRecovery_NoPanic(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	e := newRecoveryServer(t, slog.New(slog.NewTextHandler(&buf, nil)))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/users/u1", http.NoBody))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, buf.String(), "panic recovered")
}

func TestRecovery_ProblemDocument(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	e := newRecoveryServer(t, slog.New(slog.NewTextHandler(&buf, nil)))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/boom", http.NoBody)
	req.Header.Set(requestIDHeader, "req-panic-1")
	req.Header.Set(principalHeader, "jdoe@corp.example")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, problemContentType, rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "req-panic-1", rec.Header().Get(requestIDHeader))

	var body huma.ErrorModel
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusInternalServerError, body.Status)
	assert.Equal(t, "Internal Server Error", body.Title)
	assert.Equal(t, "internal server error", body.Detail)
	assert.NotContains(t, rec.Body.String(), "nil attribute set")

	logOutput := buf.String()
	assert.Contains(t, logOutput, "panic recovered")
	assert.Contains(t, logOutput, "nil attribute set")
	assert.Contains(t, logOutput, "request_id=req-panic-1")
	assert.Contains(t, logOutput, "principal=jdoe@corp.example")
}

func TestRecovery_GeneratedRequestID(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	e := newRecoveryServer(t, slog.New(slog.NewTextHandler(&buf, nil)))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/cards/totals", http.NoBody))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	id := rec.Header().Get(requestIDHeader)
	assert.NotEmpty(t, id)
	assert.Contains(t, buf.String(), "request_id="+id)
	assert.Contains(t, buf.String(), "method=POST")
	assert.Contains(t, buf.String(), "error=42")
}

func TestRecovery_AbortHandlerRepanics(t *testing.T) {
	t.Parallel()

	e := newRecoveryServer(t, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	rec := httptest.NewRecorder()
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/abort", http.NoBody))
	})
}
