package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
)

var errSource = errors.New("source unavailable")

// zigzag returns n hourly candles trending up by 0.5 per bar, with every odd
// bar dipping by 1. Over any 14-bar window RSI is 75.
func zigzag(symbol string, n int) []models.Candle {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.Candle, n)
	for i := range out {
		c := 100 + 0.5*float64(i)
		if i%2 == 1 {
			c--
		}
		out[i] = models.Candle{
			Bucket: start.Add(time.Duration(i) * time.Hour),
			Symbol: symbol,
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 5000,
		}
	}
	return out
}

type fakeSource struct {
	mu     sync.Mutex
	series map[string][]models.Candle
	fail   map[domrepo.Timeframe]bool
	calls  int
}

func (f *fakeSource) GetLatestNCandles(_ context.Context, symbol string, n int, tf domrepo.Timeframe) ([]models.Candle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail[tf] {
		return nil, errSource
	}
	c := f.series[symbol]
	if len(c) > n {
		c = c[len(c)-n:]
	}
	return c, nil
}

type fakeMetrics struct {
	mu        sync.Mutex
	scans     map[string]int
	outcomes  map[models.NoSignalReason]int
	signals   int
	fallbacks int
	errors    map[string]int
	latencies map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{scans: map[string]int{}, outcomes: map[models.NoSignalReason]int{}, errors: map[string]int{}, latencies: map[string]int{}}
}

func (m *fakeMetrics) RecordScan(status string) {
	m.mu.Lock()
	m.scans[status]++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordOutcome(_ string, reason models.NoSignalReason) {
	m.mu.Lock()
	m.outcomes[reason]++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordSignal(string, models.Side, float64, float64) {
	m.mu.Lock()
	m.signals++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordSizingFallback(string) {
	m.mu.Lock()
	m.fallbacks++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	m.errors[kind]++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordLatency(op string, _ float64) {
	m.mu.Lock()
	m.latencies[op]++
	m.mu.Unlock()
}

type fakePublisher struct {
	mu   sync.Mutex
	sent []*models.Signal
}

func (p *fakePublisher) Publish(ctx context.Context, s *models.Signal) error {
	return p.PublishBatch(ctx, []*models.Signal{s})
}

func (p *fakePublisher) PublishBatch(_ context.Context, s []*models.Signal) error {
	p.mu.Lock()
	p.sent = append(p.sent, s...)
	p.mu.Unlock()
	return nil
}

func (p *fakePublisher) Close() error { return nil }

type fakeBroadcaster struct {
	mu  sync.Mutex
	got []models.Signal
}

func (b *fakeBroadcaster) Broadcast(s models.Signal) {
	b.mu.Lock()
	b.got = append(b.got, s)
	b.mu.Unlock()
}

type fakeCandleStore struct {
	fakeSource
	stored map[domrepo.Timeframe][]models.Candle
	err    error
}

func (s *fakeCandleStore) GetCandles(context.Context, string, time.Time, time.Time, domrepo.Timeframe) ([]models.Candle, error) {
	return nil, nil
}

func (s *fakeCandleStore) StoreCandles(_ context.Context, tf domrepo.Timeframe, c []models.Candle) error {
	if s.err != nil {
		return s.err
	}
	if s.stored == nil {
		s.stored = map[domrepo.Timeframe][]models.Candle{}
	}
	s.stored[tf] = append(s.stored[tf], c...)
	return nil
}
