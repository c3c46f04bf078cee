package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	applogger "FinSignal/pkg/logger"

	"github.com/labstack/echo/v4"
)

func TestRecoverWritesEnvelope(t *testing.T) {
	e := echo.New()
	e.Use(Recover(applogger.Nop()))
	e.GET("/boom", func(c echo.Context) error { panic("nil map") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"code":"ERR_INTERNAL"`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestRecoverReraisesAbort(t *testing.T) {
	h := Recover(applogger.Nop())(func(c echo.Context) error { panic(http.ErrAbortHandler) })
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	defer func() {
		if r := recover(); r != http.ErrAbortHandler {
			t.Fatalf("expected ErrAbortHandler, got %v", r)
		}
	}()
	_ = h(c)
}
