package httpserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestCorrelationMiddleware_ReusesRequestID(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set(echo.HeaderXRequestID, "upstream-42")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, "upstream-42", rec.Header().Get(echo.HeaderXRequestID))
}

func TestCorrelationMiddleware_ReplacesOversizedID(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set(echo.HeaderXRequestID, strings.Repeat("x", maxRequestIDLength+1))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Len(t, rec.Header().Get(echo.HeaderXRequestID), 8)
}

func TestCorrelationMiddleware_MintsIDWhenMissing(t *testing.T) {
	srv := newTestServer(t)

	rec := get(srv, "/health/live")

	assert.Len(t, rec.Header().Get(echo.HeaderXRequestID), 8)
}
