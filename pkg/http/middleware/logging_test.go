package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	applogger "FinSignal/pkg/logger"

	"github.com/labstack/echo/v4"
)

func TestRequestLoggingSetsRequestID(t *testing.T) {
	e := echo.New()
	e.Use(RequestLogging(applogger.Nop()))
	e.GET("/ping", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if rec.Header().Get(echo.HeaderXRequestID) == "" {
		t.Fatal("expected generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(echo.HeaderXRequestID, "abc-123")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if got := rec.Header().Get(echo.HeaderXRequestID); got != "abc-123" {
		t.Fatalf("request id = %q, want client value", got)
	}
}
