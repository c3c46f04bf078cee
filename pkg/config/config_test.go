package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseAppliesDefaults(t *testing.T) {
	c, err := Parse([]byte("scanner:\n  symbols: [XAUUSDT]\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Environment != "development" || c.Server.Port != 8080 || c.Source.Type != "bybit" {
		t.Fatalf("unexpected defaults %+v", c)
	}
	if c.Scanner.Interval != 15*time.Minute || c.Bybit.Category != "linear" || c.Kafka.SignalTopic != "trading.signals" {
		t.Fatalf("unexpected scanner/bybit defaults %+v %+v", c.Scanner, c.Bybit)
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]string{
		"no symbols":        "environment: prod\n",
		"bad source":        "source:\n  type: mt5\nscanner:\n  symbols: [XAUUSDT]\n",
		"clickhouse off":    "source:\n  type: clickhouse\nscanner:\n  symbols: [XAUUSDT]\n",
		"kafka w/o brokers": "kafka:\n  enabled: true\nscanner:\n  symbols: [XAUUSDT]\n",
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestLoadWithEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("scanner:\n  symbols: [XAUUSDT]\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("SYMBOLS", "BTCUSDT,ETHUSDT")
	t.Setenv("REDIS_ADDR", "redis:6379")
	c, err := LoadWithEnv(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(c.Scanner.Symbols) != 2 || c.Scanner.Symbols[1] != "ETHUSDT" || c.Redis.Addr != "redis:6379" {
		t.Fatalf("env overrides not applied: %+v %+v", c.Scanner.Symbols, c.Redis)
	}
}

func TestLoadSampleConfig(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "config", "config.yaml"))
	if err != nil {
		t.Fatalf("load sample: %v", err)
	}
	if c.Analysis.Anchor != "1h" || len(c.Analysis.Timeframes) != 3 || c.Analysis.Trade.Leverage != 20 {
		t.Fatalf("unexpected analysis section %+v", c.Analysis)
	}
}
