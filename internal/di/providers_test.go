package di

import (
	"testing"

	"FinSignal/internal/domain/repository"
	internalrepo "FinSignal/internal/repository"
	"FinSignal/internal/service/bybit"
	"FinSignal/pkg/config"
)

func testConfig(t *testing.T, extra string) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte("scanner:\n  symbols: [BTCUSDT]\n" + extra))
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	return cfg
}

func TestProvideAnalysisConfigAcceptsAliases(t *testing.T) {
	cfg := testConfig(t, "analysis:\n  timeframes: [M15, H1, H4]\n  anchor: H4\n")
	ac := ProvideAnalysisConfig(cfg)
	want := []repository.Timeframe{repository.TF15m, repository.TF1h, repository.TF4h}
	if len(ac.Timeframes) != len(want) {
		t.Fatalf("timeframes = %v", ac.Timeframes)
	}
	for i := range want {
		if ac.Timeframes[i] != want[i] {
			t.Fatalf("timeframes = %v, want %v", ac.Timeframes, want)
		}
	}
	if ac.Anchor != repository.TF4h {
		t.Fatalf("anchor = %q", ac.Anchor)
	}
	e, err := ProvideEngine(ac)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	if got := e.Config(); got.MinHistory != 30 || got.Periods.EMASlow != 21 {
		t.Fatalf("defaults not applied: %+v", got)
	}
}

func TestProvideEngineRejectsForeignAnchor(t *testing.T) {
	cfg := testConfig(t, "analysis:\n  timeframes: [15m, 1h]\n  anchor: 1d\n")
	if _, err := ProvideEngine(ProvideAnalysisConfig(cfg)); err == nil {
		t.Fatal("expected anchor outside timeframes to fail")
	}
}

func TestProvideCandleSource(t *testing.T) {
	cfg := testConfig(t, "")
	src, err := ProvideCandleSource(cfg, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := src.(*bybit.Client); !ok {
		t.Fatalf("expected bybit client, got %T", src)
	}

	cfg.Source.Type = "clickhouse"
	if _, err := ProvideCandleSource(cfg, nil); err == nil {
		t.Fatal("expected error without clickhouse store")
	}
}

func TestProvideFallbacksWithoutInfrastructure(t *testing.T) {
	cfg := testConfig(t, "")
	if _, ok := ProvideSignalStore(cfg, nil).(*internalrepo.MemorySignalStore); !ok {
		t.Fatal("expected memory signal store without clickhouse")
	}
	p, err := ProvideKafkaProducer(cfg)
	if err != nil || p != nil {
		t.Fatalf("kafka disabled should give nil producer, got %v %v", p, err)
	}
	if _, ok := ProvideSignalPublisher(cfg, nil).(internalrepo.NopPublisher); !ok {
		t.Fatal("expected nop publisher without kafka")
	}
	if ProvideAutoScanner(cfg, nil, nil) != nil {
		t.Fatal("auto scan is off by default")
	}
}
