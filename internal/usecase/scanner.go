package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
	"FinSignal/internal/services/analysis"
	applogger "FinSignal/pkg/logger"
)

// ErrScanInProgress is returned by ScanAll when another scan holds the lock.
var ErrScanInProgress = errors.New("scan already in progress")

const scanLockKey = "scan:lock"

// Locker is the distributed lock used to serialize scans. cache.Service
// satisfies it.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

// ScannerConfig controls which symbols are scanned and how.
type ScannerConfig struct {
	Symbols     []string
	LockTTL     time.Duration
	Concurrency int
}

// ScannerDeps groups the collaborators of SignalScanner.
type ScannerDeps struct {
	Engine      *analysis.Engine
	Source      domrepo.CandleSource
	Store       domrepo.SignalStore
	Publisher   domrepo.SignalPublisher
	Latest      domrepo.LatestSignals
	Broadcaster domrepo.Broadcaster
	Metrics     domrepo.Metrics
	Locker      Locker
	Logger      *applogger.Logger
}

// ScanResult is the outcome of one multi-symbol scan.
type ScanResult struct {
	Signals    []models.Signal  `json:"signals"`
	Outcomes   []models.Outcome `json:"outcomes"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
}

// SignalScanner fetches candles, runs the analysis engine and fans the
// resulting signals out to storage, Kafka and websocket subscribers.
type SignalScanner struct {
	ScannerDeps
	cfg ScannerConfig
	now func() time.Time
}

func NewSignalScanner(deps ScannerDeps, cfg ScannerConfig) *SignalScanner {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 5 * time.Minute
	}
	if deps.Logger == nil {
		deps.Logger = applogger.Nop()
	}
	return &SignalScanner{ScannerDeps: deps, cfg: cfg, now: func() time.Time { return time.Now().UTC() }}
}

// Symbols returns the configured scan universe.
func (s *SignalScanner) Symbols() []string {
	return append([]string(nil), s.cfg.Symbols...)
}

// Analyze runs a single-symbol analysis. A failed fetch leaves that
// timeframe empty, which the engine reports as insufficient history.
func (s *SignalScanner) Analyze(ctx context.Context, symbol string) models.Outcome {
	start := time.Now()
	series := s.fetch(ctx, symbol)
	out := s.Engine.Analyze(symbol, series, s.now())
	s.Metrics.RecordLatency("analyze", time.Since(start).Seconds())
	s.Metrics.RecordOutcome(symbol, out.Reason)

	if !out.HasSignal() {
		s.Logger.Debug("no signal",
			applogger.String("symbol", symbol),
			applogger.String("reason", string(out.Reason)),
			applogger.String("timeframe", out.Timeframe),
		)
		return out
	}

	sig := out.Signal
	s.Metrics.RecordSignal(symbol, sig.Side, sig.Score, sig.Entry)
	if sig.SizingFallback {
		s.Metrics.RecordSizingFallback(symbol)
		s.Logger.Warn("position sizing fell back to unit size",
			applogger.String("symbol", symbol),
			applogger.Float64("entry", sig.Entry),
			applogger.Float64("stop_loss", sig.StopLoss),
		)
	}
	s.Logger.Info("signal",
		applogger.String("symbol", symbol),
		applogger.String("side", string(sig.Side)),
		applogger.Float64("entry", sig.Entry),
		applogger.Float64("score", sig.Score),
	)
	return out
}

// Snapshot computes the indicator snapshot of one timeframe on demand.
func (s *SignalScanner) Snapshot(ctx context.Context, symbol string, tf domrepo.Timeframe) (models.Snapshot, error) {
	candles, err := s.Source.GetLatestNCandles(ctx, symbol, s.Engine.Config().MaxBars, tf)
	if err != nil {
		s.Metrics.RecordError("source")
		return models.Snapshot{}, fmt.Errorf("fetch %s %s: %w", symbol, tf, err)
	}
	snap := s.Engine.Snapshot(symbol, tf, candles)
	if snap.Timestamp.IsZero() {
		snap.Timestamp = s.now()
	}
	return snap, nil
}

func (s *SignalScanner) fetch(ctx context.Context, symbol string) map[domrepo.Timeframe][]models.Candle {
	cfg := s.Engine.Config()
	series := make(map[domrepo.Timeframe][]models.Candle, len(cfg.Timeframes))
	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	for _, tf := range cfg.Timeframes {
		tf := tf
		g.Go(func() error {
			candles, err := s.Source.GetLatestNCandles(ctx, symbol, cfg.MaxBars, tf)
			if err != nil {
				s.Metrics.RecordError("source")
				s.Logger.Warn("fetch candles failed",
					applogger.String("symbol", symbol),
					applogger.String("timeframe", tf.String()),
					applogger.Error(err),
				)
				candles = nil
			}
			mu.Lock()
			series[tf] = candles
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return series
}

// ScanAll analyzes every symbol (the configured ones when symbols is empty),
// stores the signals sorted by score descending as the latest result, then
// persists, publishes and broadcasts them. Only one scan runs at a time.
func (s *SignalScanner) ScanAll(ctx context.Context, symbols []string) (*ScanResult, error) {
	if len(symbols) == 0 {
		symbols = s.cfg.Symbols
	}

	if s.Locker != nil {
		ok, err := s.Locker.TryLock(ctx, scanLockKey, s.cfg.LockTTL)
		if err != nil {
			s.Metrics.RecordScan("error")
			return nil, fmt.Errorf("acquire scan lock: %w", err)
		}
		if !ok {
			s.Metrics.RecordScan("skipped")
			return nil, ErrScanInProgress
		}
		defer func() {
			if err := s.Locker.Unlock(context.Background(), scanLockKey); err != nil {
				s.Logger.Warn("release scan lock", applogger.Error(err))
			}
		}()
	}

	res := &ScanResult{StartedAt: s.now()}
	res.Outcomes = make([]models.Outcome, len(symbols))

	var g errgroup.Group
	g.SetLimit(s.cfg.Concurrency)
	for i, sym := range symbols {
		i, sym := i, sym
		g.Go(func() error {
			res.Outcomes[i] = s.Analyze(ctx, sym)
			return nil
		})
	}
	_ = g.Wait()

	res.Signals = collectSignals(res.Outcomes)
	res.FinishedAt = s.now()

	if err := s.Latest.Save(ctx, res.Signals); err != nil {
		s.Metrics.RecordScan("error")
		return nil, err
	}
	s.fanOut(ctx, res)

	s.Metrics.RecordScan("ok")
	s.Metrics.RecordLatency("scan", res.FinishedAt.Sub(res.StartedAt).Seconds())
	s.Logger.Info("scan finished",
		applogger.Int("symbols", len(symbols)),
		applogger.Int("signals", len(res.Signals)),
		applogger.Duration("duration", res.FinishedAt.Sub(res.StartedAt)),
	)
	return res, nil
}

// fanOut is best effort: failures are logged and counted, never returned.
func (s *SignalScanner) fanOut(ctx context.Context, res *ScanResult) {
	var snaps []models.Snapshot
	for _, o := range res.Outcomes {
		for _, sn := range o.Snapshots {
			snaps = append(snaps, sn)
		}
	}
	if s.Store != nil {
		if err := s.Store.StoreSnapshots(ctx, snaps); err != nil {
			s.Metrics.RecordError("store")
			s.Logger.Error("store snapshots", applogger.Error(err))
		}
	}

	ptrs := make([]*models.Signal, len(res.Signals))
	for i := range res.Signals {
		ptrs[i] = &res.Signals[i]
		if s.Store == nil {
			continue
		}
		if err := s.Store.StoreSignal(ctx, ptrs[i]); err != nil {
			s.Metrics.RecordError("store")
			s.Logger.Error("store signal", applogger.String("symbol", ptrs[i].Symbol), applogger.Error(err))
		}
	}

	if s.Publisher != nil && len(ptrs) > 0 {
		if err := s.Publisher.PublishBatch(ctx, ptrs); err != nil {
			s.Metrics.RecordError("publish")
			s.Logger.Error("publish signals", applogger.Error(err))
		}
	}
	if s.Broadcaster != nil {
		for _, sig := range res.Signals {
			s.Broadcaster.Broadcast(sig)
		}
	}
}

// collectSignals keeps produced signals ordered by score, highest first.
// Ties keep symbol order.
func collectSignals(outcomes []models.Outcome) []models.Signal {
	out := make([]models.Signal, 0, len(outcomes))
	for _, o := range outcomes {
		if o.HasSignal() {
			out = append(out, *o.Signal)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}
