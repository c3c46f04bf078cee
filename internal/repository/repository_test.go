package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
	"FinSignal/pkg/cache"
	pkgkafka "FinSignal/pkg/kafka"
)

type captureWriter struct {
	msgs []kafka.Message
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *captureWriter) Close() error { return nil }

func TestCandleInsertSkipsInvalidRows(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	q, args := candleInsert("finsignal.candles_1h", []models.Candle{
		{Symbol: "BTCUSDT", Bucket: ts, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10},
		{Symbol: "", Bucket: ts},
		{Symbol: "ETHUSDT"},
	})
	if strings.Count(q, "(?, ?, ?, ?, ?, ?, ?)") != 1 {
		t.Fatalf("expected one value tuple, got %s", q)
	}
	if len(args) != 7 || args[0] != "BTCUSDT" || args[6] != 10.0 {
		t.Fatalf("unexpected args %v", args)
	}
	if !strings.HasPrefix(q, "INSERT INTO finsignal.candles_1h ") {
		t.Fatalf("unexpected table in %s", q)
	}
}

func TestSignalArgsEncodesFallback(t *testing.T) {
	args := signalArgs(&models.Signal{Symbol: "BTCUSDT", Side: models.SideSell, SizingFallback: true})
	if len(args) != 14 {
		t.Fatalf("expected 14 args, got %d", len(args))
	}
	if args[1] != "Sell" || args[12] != uint8(1) {
		t.Fatalf("unexpected args %v", args)
	}
}

func TestSnapshotArgsKeepsNilIndicators(t *testing.T) {
	args := snapshotArgs(models.Snapshot{Symbol: "BTCUSDT", Timeframe: "1h", Candles: 10, RSI: models.Float(55)})
	if len(args) != 15 {
		t.Fatalf("expected 15 args, got %d", len(args))
	}
	if p, ok := args[6].(*float64); !ok || p != nil {
		t.Fatalf("expected nil ema_fast, got %v", args[6])
	}
	if p := args[9].(*float64); p == nil || *p != 55 {
		t.Fatalf("expected rsi 55, got %v", args[9])
	}
}

func TestMemorySignalStoreQueryNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySignalStore(3)
	for i, sym := range []string{"A", "B", "A", "A"} {
		_ = s.StoreSignal(ctx, &models.Signal{Symbol: sym, Score: float64(i)})
	}

	all, _ := s.QuerySignals(ctx, "", 10)
	if len(all) != 3 {
		t.Fatalf("expected bounded history of 3, got %d", len(all))
	}
	if all[0].Score != 3 || all[2].Score != 1 {
		t.Fatalf("expected newest first, got %+v", all)
	}

	onlyA, _ := s.QuerySignals(ctx, "A", 1)
	if len(onlyA) != 1 || onlyA[0].Score != 3 {
		t.Fatalf("unexpected filtered result %+v", onlyA)
	}
}

func TestCacheLatestStore(t *testing.T) {
	ctx := context.Background()
	mc := cache.NewMemoryCache()
	defer mc.Close()
	s := NewCacheLatestStore(mc)

	if _, err := s.Load(ctx); !errors.Is(err, domrepo.ErrNoSignals) {
		t.Fatalf("expected ErrNoSignals before first save, got %v", err)
	}

	if err := s.Save(ctx, nil); err != nil {
		t.Fatalf("save empty: %v", err)
	}
	got, err := s.Load(ctx)
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil list, got %v %v", got, err)
	}

	want := []models.Signal{{Symbol: "BTCUSDT", Side: models.SideBuy, Score: 50}, {Symbol: "ETHUSDT", Score: 30}}
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, _ = s.Load(ctx)
	if len(got) != 2 || got[0].Symbol != "BTCUSDT" || got[0].Side != models.SideBuy {
		t.Fatalf("unexpected latest signals %+v", got)
	}
}

func TestKafkaSignalPublisherKeysBySymbol(t *testing.T) {
	w := &captureWriter{}
	p := NewKafkaSignalPublisher(pkgkafka.NewProducerWithWriter(w, "gzip"), "trading.signals")

	err := p.PublishBatch(context.Background(), []*models.Signal{
		{Symbol: "BTCUSDT", Side: models.SideBuy, Entry: 100},
		nil,
		{Symbol: "ETHUSDT", Side: models.SideSell},
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(w.msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(w.msgs))
	}
	if string(w.msgs[0].Key) != "BTCUSDT" || w.msgs[0].Topic != "trading.signals" {
		t.Fatalf("unexpected message %+v", w.msgs[0])
	}
	var decoded models.Signal
	if err := json.Unmarshal(w.msgs[0].Value, &decoded); err != nil || decoded.Entry != 100 {
		t.Fatalf("expected signal json, got %s (%v)", w.msgs[0].Value, err)
	}
}

type countingSource struct {
	calls int
	err   error
}

func (s *countingSource) GetLatestNCandles(_ context.Context, symbol string, n int, tf domrepo.Timeframe) ([]models.Candle, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []models.Candle{{Bucket: at, Symbol: symbol, Timeframe: tf.String(), Close: float64(n)}}, nil
}

func TestCachedCandleSourceMemoizes(t *testing.T) {
	next := &countingSource{}
	src := NewCachedCandleSource(next, cache.NewMemoryCache(), time.Minute)
	ctx := context.Background()

	first, err := src.GetLatestNCandles(ctx, "BTCUSDT", 5, domrepo.TF1h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := src.GetLatestNCandles(ctx, "BTCUSDT", 5, domrepo.TF1h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.calls != 1 {
		t.Fatalf("expected one upstream call, got %d", next.calls)
	}
	if len(second) != 1 || !second[0].Bucket.Equal(first[0].Bucket) || second[0].Close != 5 {
		t.Fatalf("cached candles differ: %+v vs %+v", second, first)
	}

	if _, err := src.GetLatestNCandles(ctx, "BTCUSDT", 5, domrepo.TF4h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.calls != 2 {
		t.Fatalf("different timeframe should miss, got %d calls", next.calls)
	}
}

func TestCachedCandleSourceDoesNotCacheErrors(t *testing.T) {
	next := &countingSource{err: errors.New("boom")}
	src := NewCachedCandleSource(next, cache.NewMemoryCache(), time.Minute)
	for i := 0; i < 2; i++ {
		if _, err := src.GetLatestNCandles(context.Background(), "ETHUSDT", 10, domrepo.TF15m); err == nil {
			t.Fatal("expected error")
		}
	}
	if next.calls != 2 {
		t.Fatalf("errors must not be cached, got %d calls", next.calls)
	}
}
