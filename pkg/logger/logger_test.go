package logger

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, err := New(&Config{Level: "debug", Format: "json", Output: path})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	l.With(String("component", "scanner")).Info("scan done",
		String("symbol", "XAUUSDT"),
		Float64("score", 70.5),
		Int("signals", 2),
		Bool("fallback", false),
		Error(errors.New("boom")),
	)

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(b)
	for _, want := range []string{`"message":"scan done"`, `"symbol":"XAUUSDT"`, `"score":70.5`, `"signals":2`, `"component":"scanner"`, `"error":"boom"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in %s", want, out)
		}
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	if _, err := New(&Config{Level: "loud", Output: "stdout"}); err == nil {
		t.Fatalf("expected invalid level error")
	}
}

func TestFieldKeyValues(t *testing.T) {
	k, v := Duration("took", 1500_000_000).GetKeyValue()
	if k != "took" || v != 1500 {
		t.Fatalf("expected duration in ms, got %v=%v", k, v)
	}
	if _, v := Strings("tfs", []string{"15m", "1h"}).GetKeyValue(); v != "15m, 1h" {
		t.Fatalf("unexpected strings field %v", v)
	}
	if _, v := Error(nil).GetKeyValue(); v != "" {
		t.Fatalf("expected empty nil error, got %v", v)
	}
}

func TestLevelFiltersPerLogger(t *testing.T) {
	dir := t.TempDir()
	quiet, err := New(&Config{Level: "error", Format: "json", Output: filepath.Join(dir, "quiet.log")})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	loud, err := New(&Config{Level: "debug", Format: "json", Output: filepath.Join(dir, "loud.log")})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	quiet.Info("dropped")
	loud.Debug("kept")
	_ = quiet.Close()
	_ = loud.Close()

	q, _ := os.ReadFile(filepath.Join(dir, "quiet.log"))
	l, _ := os.ReadFile(filepath.Join(dir, "loud.log"))
	if len(q) != 0 {
		t.Fatalf("error level logger wrote info: %s", q)
	}
	if !strings.Contains(string(l), `"message":"kept"`) {
		t.Fatalf("debug entry missing: %s", l)
	}
}
