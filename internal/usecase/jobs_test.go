package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
	applogger "FinSignal/pkg/logger"
)

type stubScanner struct {
	mu      sync.Mutex
	err     error
	symbols [][]string
	called  chan struct{}
}

func (s *stubScanner) ScanAll(_ context.Context, symbols []string) (*ScanResult, error) {
	s.mu.Lock()
	s.symbols = append(s.symbols, symbols)
	s.mu.Unlock()
	if s.called != nil {
		select {
		case s.called <- struct{}{}:
		default:
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return &ScanResult{}, nil
}

func TestScanJobPassesSymbols(t *testing.T) {
	s := &stubScanner{}
	job := NewScanJob(s, nil)
	if job.Type() != ScanJobType {
		t.Fatalf("unexpected type %s", job.Type())
	}
	payload, _ := json.Marshal(ScanPayload{Symbols: []string{"BTCUSDT"}})
	if err := job.Handle(context.Background(), payload); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(s.symbols) != 1 || s.symbols[0][0] != "BTCUSDT" {
		t.Fatalf("unexpected symbols %v", s.symbols)
	}
}

func TestScanJobDropsWhenInProgress(t *testing.T) {
	job := NewScanJob(&stubScanner{err: ErrScanInProgress}, nil)
	if err := job.Handle(context.Background(), nil); err != nil {
		t.Fatalf("expected nil for scan in progress, got %v", err)
	}
}

func TestScanJobReturnsOtherErrors(t *testing.T) {
	boom := errors.New("redis down")
	job := NewScanJob(&stubScanner{err: boom}, nil)
	if err := job.Handle(context.Background(), json.RawMessage(`{}`)); !errors.Is(err, boom) {
		t.Fatalf("expected error to surface for retry, got %v", err)
	}
	if err := job.Handle(context.Background(), json.RawMessage(`{bad`)); err == nil {
		t.Fatalf("expected payload error")
	}
}

func TestAutoScannerWaitsForFirstTick(t *testing.T) {
	s := &stubScanner{called: make(chan struct{}, 1)}
	a := NewAutoScanner(s, time.Hour, nil)
	a.Start(context.Background())
	a.Start(context.Background())

	select {
	case <-s.called:
		t.Fatalf("no scan expected before the first interval")
	case <-time.After(50 * time.Millisecond):
	}
	a.Stop()
	a.Stop()
}

func TestAutoScannerTicks(t *testing.T) {
	s := &stubScanner{called: make(chan struct{}, 1), err: ErrScanInProgress}
	a := NewAutoScanner(s, 10*time.Millisecond, nil)
	a.Start(context.Background())
	defer a.Stop()

	for i := 0; i < 3; i++ {
		select {
		case <-s.called:
		case <-time.After(2 * time.Second):
			t.Fatalf("tick %d did not scan", i)
		}
	}
}

func TestKafkaCandlesHandler(t *testing.T) {
	store := &fakeCandleStore{}
	h := NewKafkaCandlesHandler("market.candles", store, newFakeMetrics())
	ctx := context.Background()

	if err := h.Handle(ctx, []byte(`{"symbol":"BTCUSDT","timeframe":"H1","t":1700000000000,"o":1,"h":2,"l":0.5,"c":1.5,"v":10}`)); err != nil {
		t.Fatalf("single: %v", err)
	}
	got := store.stored[domrepo.TF1h]
	if len(got) != 1 || got[0].Close != 1.5 || !got[0].Bucket.Equal(time.UnixMilli(1700000000000)) {
		t.Fatalf("unexpected stored candles %+v", got)
	}

	batch := `[{"symbol":"BTCUSDT","timeframe":"15m","t":1700000000,"c":1},{"symbol":"ETHUSDT","timeframe":"15m","t":1700000900,"c":2}]`
	if err := h.Handle(ctx, []byte(batch)); err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(store.stored[domrepo.TF15m]) != 2 {
		t.Fatalf("expected 2 15m candles, got %d", len(store.stored[domrepo.TF15m]))
	}
	if !store.stored[domrepo.TF15m][0].Bucket.Equal(time.Unix(1700000000, 0)) {
		t.Fatalf("seconds timestamp misread: %v", store.stored[domrepo.TF15m][0].Bucket)
	}

	if err := h.Handle(ctx, []byte(`{"symbol":"XAUUSDT","timeframe":"4h","t":"2024-06-01T08:00:00Z","c":2330}`)); err != nil {
		t.Fatalf("rfc3339: %v", err)
	}
	if got := store.stored[domrepo.TF4h]; len(got) != 1 || !got[0].Bucket.Equal(time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)) {
		t.Fatalf("rfc3339 timestamp misread: %+v", got)
	}
}

func TestKafkaCandlesHandlerRejectsBadMessages(t *testing.T) {
	store := &fakeCandleStore{}
	h := NewKafkaCandlesHandler("market.candles", store, newFakeMetrics())
	ctx := context.Background()

	cases := map[string]string{
		"malformed":     `{"symbol":`,
		"timeframe":     `{"symbol":"BTCUSDT","timeframe":"2h","t":1700000000}`,
		"symbol":        `{"timeframe":"1h","t":1700000000}`,
		"time":          `{"symbol":"BTCUSDT","timeframe":"1h"}`,
		"partial-batch": `[{"symbol":"BTCUSDT","timeframe":"1h","t":1},{"symbol":"BTCUSDT","timeframe":"7m","t":2}]`,
	}
	for name, msg := range cases {
		if err := h.Handle(ctx, []byte(msg)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	if len(store.stored) != 0 {
		t.Fatalf("nothing should be stored, got %v", store.stored)
	}
}

func TestKafkaCandlesHandlerStoreError(t *testing.T) {
	boom := errors.New("clickhouse down")
	h := NewKafkaCandlesHandler("market.candles", &fakeCandleStore{err: boom}, newFakeMetrics())
	err := h.Handle(context.Background(), []byte(`{"symbol":"BTCUSDT","timeframe":"1h","t":1700000000}`))
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestCandlesUseCase(t *testing.T) {
	src := &fakeSource{}
	uc := NewCandlesUseCase(src)
	ctx := context.Background()

	if _, err := uc.GetCandles(ctx, GetCandlesParams{}); err == nil {
		t.Fatalf("expected symbol error")
	}

	res, err := uc.GetCandles(ctx, GetCandlesParams{Symbol: "NONE", Timeframe: domrepo.TF1h})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if res.Candles == nil || res.Count != 0 || res.Timeframe != "1h" {
		t.Fatalf("expected empty non-nil result, got %+v", res)
	}

	src.fail = map[domrepo.Timeframe]bool{domrepo.TF1h: true}
	if _, err := uc.GetCandles(ctx, GetCandlesParams{Symbol: "BTCUSDT", Timeframe: domrepo.TF1h}); !errors.Is(err, errSource) {
		t.Fatalf("expected wrapped source error, got %v", err)
	}
}

func TestCandlesUseCaseNormalizesQuery(t *testing.T) {
	src := &fakeSource{series: map[string][]models.Candle{"BTCUSDT": zigzag("BTCUSDT", 1500)}}
	uc := NewCandlesUseCase(src)

	res, err := uc.GetCandles(context.Background(), GetCandlesParams{Symbol: " btcusdt ", Limit: 5000})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if res.Symbol != "BTCUSDT" || res.Timeframe != "1h" {
		t.Fatalf("symbol/timeframe not normalized: %s %s", res.Symbol, res.Timeframe)
	}
	if res.Count != 1000 {
		t.Fatalf("limit not clamped, got %d", res.Count)
	}
	if res.From == nil || res.To == nil || !res.From.Equal(res.Candles[0].Bucket) || !res.To.Equal(res.Candles[999].Bucket) {
		t.Fatalf("range = %v..%v", res.From, res.To)
	}
}

func TestConsumerHookRecordsLatencyAndErrors(t *testing.T) {
	m := newFakeMetrics()
	h := NewConsumerHook(m, applogger.Nop())

	ctx, _, _, err := h.BeforeHandle(context.Background(), "market.candles", kafka.Message{}, nil)
	if err != nil {
		t.Fatalf("before: %v", err)
	}
	h.AfterHandle(ctx, "market.candles", kafka.Message{}, nil, nil)
	h.AfterHandle(ctx, "market.candles", kafka.Message{}, nil, errors.New("bad row"))
	h.OnError(ctx, "market.candles", kafka.Message{Offset: 7}, nil, errors.New("bad row"))

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.latencies["kafka_handle_seconds"] != 2 {
		t.Fatalf("latency samples = %d, want 2", m.latencies["kafka_handle_seconds"])
	}
	if m.errors["consumer_handle"] != 1 {
		t.Fatalf("handle errors = %d, want 1", m.errors["consumer_handle"])
	}
}
