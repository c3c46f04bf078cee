package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func corsEcho(origins ...string) *echo.Echo {
	e := echo.New()
	e.Use(CORS(CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderContentType},
		MaxAge:       600,
	}))
	e.GET("/api/signals/latest", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	return e
}

func TestCORSPreflight(t *testing.T) {
	e := corsEcho("https://dash.example")
	req := httptest.NewRequest(http.MethodOptions, "/api/signals/latest", nil)
	req.Header.Set(echo.HeaderOrigin, "https://dash.example")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if got := rec.Header().Get(echo.HeaderAccessControlAllowOrigin); got != "https://dash.example" {
		t.Fatalf("allow origin = %q", got)
	}
	if got := rec.Header().Get(echo.HeaderAccessControlMaxAge); got != "600" {
		t.Fatalf("max age = %q", got)
	}
}

func TestCORSUnknownOriginPassesThrough(t *testing.T) {
	e := corsEcho("https://dash.example")
	req := httptest.NewRequest(http.MethodGet, "/api/signals/latest", nil)
	req.Header.Set(echo.HeaderOrigin, "https://evil.example")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get(echo.HeaderAccessControlAllowOrigin); got != "" {
		t.Fatalf("unexpected allow origin %q", got)
	}
}

func TestCORSWildcard(t *testing.T) {
	e := corsEcho("*")
	req := httptest.NewRequest(http.MethodGet, "/api/signals/latest", nil)
	req.Header.Set(echo.HeaderOrigin, "https://any.example")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if got := rec.Header().Get(echo.HeaderAccessControlAllowOrigin); got != "*" {
		t.Fatalf("allow origin = %q", got)
	}
}
