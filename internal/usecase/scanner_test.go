package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
	"FinSignal/internal/repository"
	"FinSignal/internal/services/analysis"
	"FinSignal/pkg/cache"
)

type scannerFixture struct {
	scanner     *SignalScanner
	source      *fakeSource
	metrics     *fakeMetrics
	store       *repository.MemorySignalStore
	latest      *repository.CacheLatestStore
	publisher   *fakePublisher
	broadcaster *fakeBroadcaster
	cache       *cache.MemoryCache
}

func newScannerFixture(t *testing.T) *scannerFixture {
	t.Helper()
	engine, err := analysis.NewEngine(analysis.DefaultConfig())
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	f := &scannerFixture{
		source:      &fakeSource{series: map[string][]models.Candle{"XAUUSDT": zigzag("XAUUSDT", 60)}},
		metrics:     newFakeMetrics(),
		store:       repository.NewMemorySignalStore(100),
		publisher:   &fakePublisher{},
		broadcaster: &fakeBroadcaster{},
		cache:       cache.NewMemoryCache(),
	}
	t.Cleanup(func() { _ = f.cache.Close() })
	f.latest = repository.NewCacheLatestStore(f.cache)
	f.scanner = NewSignalScanner(ScannerDeps{
		Engine:      engine,
		Source:      f.source,
		Store:       f.store,
		Publisher:   f.publisher,
		Latest:      f.latest,
		Broadcaster: f.broadcaster,
		Metrics:     f.metrics,
		Locker:      f.cache,
	}, ScannerConfig{Symbols: []string{"XAUUSDT", "EMPTY"}, Concurrency: 2})
	f.scanner.now = func() time.Time { return time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC) }
	return f
}

func TestAnalyzeProducesSignal(t *testing.T) {
	f := newScannerFixture(t)
	out := f.scanner.Analyze(context.Background(), "XAUUSDT")
	if !out.HasSignal() {
		t.Fatalf("expected signal, got reason %s (tf %s)", out.Reason, out.Timeframe)
	}
	if out.Signal.Side != models.SideBuy {
		t.Fatalf("expected Buy on an uptrend, got %s", out.Signal.Side)
	}
	if len(out.Snapshots) != 3 {
		t.Fatalf("expected 3 snapshots, got %d", len(out.Snapshots))
	}
	if rsi := *out.Snapshots["1h"].RSI; rsi < 74.99 || rsi > 75.01 {
		t.Fatalf("expected anchor RSI 75, got %f", rsi)
	}
	if f.metrics.signals != 1 || f.metrics.outcomes[models.ReasonNone] != 1 {
		t.Fatalf("expected signal metrics, got %+v", f.metrics)
	}
}

func TestAnalyzeFetchErrorIsInsufficientHistory(t *testing.T) {
	f := newScannerFixture(t)
	f.source.fail = map[domrepo.Timeframe]bool{domrepo.TF4h: true}

	out := f.scanner.Analyze(context.Background(), "XAUUSDT")
	if out.HasSignal() {
		t.Fatalf("expected no signal")
	}
	if out.Reason != models.ReasonInsufficientHistory || out.Timeframe != "4h" {
		t.Fatalf("expected insufficient_history on 4h, got %s on %s", out.Reason, out.Timeframe)
	}
	if f.metrics.errors["source"] != 1 {
		t.Fatalf("expected one source error, got %v", f.metrics.errors)
	}
}

func TestScanAllFansOutSignals(t *testing.T) {
	f := newScannerFixture(t)
	ctx := context.Background()

	res, err := f.scanner.ScanAll(ctx, nil)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(res.Outcomes) != 2 || len(res.Signals) != 1 {
		t.Fatalf("expected 2 outcomes and 1 signal, got %d/%d", len(res.Outcomes), len(res.Signals))
	}
	if res.Outcomes[1].Reason != models.ReasonInsufficientHistory {
		t.Fatalf("expected EMPTY to lack history, got %s", res.Outcomes[1].Reason)
	}

	latest, err := f.latest.Load(ctx)
	if err != nil || len(latest) != 1 || latest[0].Symbol != "XAUUSDT" {
		t.Fatalf("unexpected latest %v %v", latest, err)
	}
	hist, _ := f.store.QuerySignals(ctx, "", 10)
	if len(hist) != 1 {
		t.Fatalf("expected stored signal, got %d", len(hist))
	}
	if len(f.publisher.sent) != 1 || len(f.broadcaster.got) != 1 {
		t.Fatalf("expected publish and broadcast, got %d/%d", len(f.publisher.sent), len(f.broadcaster.got))
	}
	if f.metrics.scans["ok"] != 1 {
		t.Fatalf("expected ok scan metric, got %v", f.metrics.scans)
	}

	// lock is released after the scan
	if _, err := f.scanner.ScanAll(ctx, []string{"EMPTY"}); err != nil {
		t.Fatalf("second scan: %v", err)
	}
}

func TestScanAllStoresEmptyList(t *testing.T) {
	f := newScannerFixture(t)
	ctx := context.Background()

	res, err := f.scanner.ScanAll(ctx, []string{"EMPTY"})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(res.Signals) != 0 {
		t.Fatalf("expected no signals")
	}
	latest, err := f.latest.Load(ctx)
	if err != nil {
		t.Fatalf("expected stored empty list, got %v", err)
	}
	if latest == nil || len(latest) != 0 {
		t.Fatalf("expected empty list, got %v", latest)
	}
	if len(f.publisher.sent) != 0 {
		t.Fatalf("nothing should be published")
	}
}

func TestScanAllSkipsWhenLocked(t *testing.T) {
	f := newScannerFixture(t)
	ctx := context.Background()
	if ok, _ := f.cache.TryLock(ctx, scanLockKey, time.Minute); !ok {
		t.Fatalf("could not take lock")
	}

	_, err := f.scanner.ScanAll(ctx, nil)
	if !errors.Is(err, ErrScanInProgress) {
		t.Fatalf("expected ErrScanInProgress, got %v", err)
	}
	if f.source.calls != 0 {
		t.Fatalf("no data should be fetched while locked")
	}
	if f.metrics.scans["skipped"] != 1 {
		t.Fatalf("expected skipped metric, got %v", f.metrics.scans)
	}
}

func TestSnapshotOnDemand(t *testing.T) {
	f := newScannerFixture(t)
	snap, err := f.scanner.Snapshot(context.Background(), "XAUUSDT", domrepo.TF15m)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Timeframe != "15m" || !snap.Complete() || snap.Candles != 60 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	f.source.fail = map[domrepo.Timeframe]bool{domrepo.TF15m: true}
	if _, err := f.scanner.Snapshot(context.Background(), "XAUUSDT", domrepo.TF15m); !errors.Is(err, errSource) {
		t.Fatalf("expected wrapped source error, got %v", err)
	}
}

func TestCollectSignalsSortsByScore(t *testing.T) {
	outs := []models.Outcome{
		{Symbol: "A", Signal: &models.Signal{Symbol: "A", Score: 30}},
		{Symbol: "B", Reason: models.ReasonGateRSI},
		{Symbol: "C", Signal: &models.Signal{Symbol: "C", Score: 80}},
		{Symbol: "D", Signal: &models.Signal{Symbol: "D", Score: 30}},
	}
	got := collectSignals(outs)
	want := []string{"C", "A", "D"}
	if len(got) != len(want) {
		t.Fatalf("expected %d signals, got %d", len(want), len(got))
	}
	for i, sym := range want {
		if got[i].Symbol != sym {
			t.Fatalf("position %d: expected %s, got %s", i, sym, got[i].Symbol)
		}
	}
}
