package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime"

	"github.com/danielgtaylor/huma/v2"
	"github.com/labstack/echo/v4"

	"github.com/donaldgifford/concur-accruals/internal/metrics"
)

const problemContentType = "application/problem+json"

// Recovery returns Echo middleware that turns a handler panic into the same
// problem document huma writes for a 500. The stack, request ID and
// principal are logged; the response carries X-Request-ID but no panic
// detail.
func Recovery(log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if r == http.ErrAbortHandler {
					panic(r)
				}

				buf := make([]byte, 8192)
				n := runtime.Stack(buf, false)

				reqID := requestID(c)
				route := c.Path()
				if route == "" {
					route = "unmatched"
				}
				metrics.HTTPPanicsTotal.WithLabelValues(route).Inc()

				log.Error("panic recovered",
					"error", fmt.Sprint(r),
					"method", c.Request().Method,
					"path", c.Request().URL.Path,
					"request_id", reqID,
					"principal", c.Request().Header.Get(principalHeader),
					"stack", string(buf[:n]),
				)

				if c.Response().Committed {
					return
				}
				if reqID != "" {
					c.Response().Header().Set(requestIDHeader, reqID)
				}
				c.Response().Header().Set(echo.HeaderContentType, problemContentType)
				err = c.JSON(http.StatusInternalServerError, &huma.ErrorModel{
					Title:  http.StatusText(http.StatusInternalServerError),
					Status: http.StatusInternalServerError,
					Detail: "internal server error",
				})
			}()
			return next(c)
		}
	}
}

// requestID prefers the ID RequestLog assigned, then the caller's header.
func requestID(c echo.Context) string {
	if id, ok := c.Get("request_id").(string); ok && id != "" {
		return id
	}
	if id := c.Response().Header().Get(requestIDHeader); id != "" {
		return id
	}
	return c.Request().Header.Get(requestIDHeader)
}
