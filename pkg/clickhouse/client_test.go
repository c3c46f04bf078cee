package clickhouse

import (
	"strings"
	"testing"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
)

func TestOptions(t *testing.T) {
	cfg := defaultClientConfig()
	for _, opt := range []ClientOption{
		WithHost("ch"),
		WithDatabase("finsignal"),
		WithCredentials("u", "p"),
		WithMaxExecutionTime(time.Minute),
		WithAsyncInsert(true, false),
	} {
		opt(cfg)
	}
	o := options(cfg)
	if len(o.Addr) != 1 || o.Addr[0] != "ch:9000" {
		t.Fatalf("addr = %v", o.Addr)
	}
	if o.Auth.Database != "finsignal" || o.Auth.Username != "u" || o.Auth.Password != "p" {
		t.Fatalf("auth = %+v", o.Auth)
	}
	if o.Protocol != clickhouse.Native {
		t.Fatalf("expected native protocol")
	}
	if o.Settings["max_execution_time"] != 60 || o.Settings["async_insert"] != 1 || o.Settings["wait_for_async_insert"] != 0 {
		t.Fatalf("settings = %v", o.Settings)
	}

	WithHTTP(true)(cfg)
	WithPort(8123)(cfg)
	WithDatabase("")(cfg)
	o = options(cfg)
	if o.Protocol != clickhouse.HTTP || o.Addr[0] != "ch:8123" || o.Auth.Database != "finsignal" {
		t.Fatalf("unexpected http options %+v", o)
	}
}

func TestSchemaCoversEveryTimeframe(t *testing.T) {
	stmts := Schema("finsignal", []string{"15m", "1h", "4h"})
	if len(stmts) != 6 {
		t.Fatalf("expected 6 statements, got %d", len(stmts))
	}
	for _, tf := range []string{"15m", "1h", "4h"} {
		found := false
		for _, s := range stmts {
			if strings.Contains(s, "finsignal."+CandleTable(tf)+" ") {
				found = true
			}
		}
		if !found {
			t.Fatalf("missing candle table for %s", tf)
		}
	}
	if !strings.Contains(stmts[len(stmts)-1], "technical_indicators") {
		t.Fatalf("last statement should create technical_indicators")
	}
}

func TestNewClientRequiresHost(t *testing.T) {
	if _, err := NewClient(); err == nil {
		t.Fatalf("expected error without host")
	}
}
