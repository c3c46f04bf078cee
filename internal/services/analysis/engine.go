// Package analysis turns multi-timeframe candle series into trade signals.
// The Engine is a pure function of its inputs: it holds only an immutable
// Config and is safe for concurrent use.
package analysis

import (
	"fmt"
	"time"

	"github.com/creasty/defaults"

	"FinSignal/internal/domain/models"
	"FinSignal/internal/domain/repository"
)

type Engine struct {
	cfg Config
}

// NewEngine validates cfg, fills unset fields with defaults and returns an
// engine holding its own copy.
func NewEngine(cfg Config) (*Engine, error) {
	cfg = cfg.clone()
	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("apply analysis defaults: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config { return e.cfg.clone() }

// Analyze builds a snapshot per configured timeframe and evaluates them.
// A timeframe with fewer than MinHistory candles yields
// ReasonInsufficientHistory.
func (e *Engine) Analyze(symbol string, series map[repository.Timeframe][]models.Candle, now time.Time) models.Outcome {
	for _, tf := range e.cfg.Timeframes {
		if len(series[tf]) < e.cfg.MinHistory {
			out := noSignal(symbol, models.ReasonInsufficientHistory)
			out.Timeframe = tf.String()
			out.Snapshots = snapshotsByName(e.Snapshots(symbol, series, now))
			return out
		}
	}
	return e.Evaluate(symbol, e.Snapshots(symbol, series, now), now)
}

// Evaluate runs gating, consensus and trade derivation on prebuilt
// snapshots. Every configured timeframe must be present and complete.
func (e *Engine) Evaluate(symbol string, snaps map[repository.Timeframe]models.Snapshot, now time.Time) models.Outcome {
	ordered := make([]models.Snapshot, 0, len(e.cfg.Timeframes))
	for _, tf := range e.cfg.Timeframes {
		s, ok := snaps[tf]
		if !ok || !s.Complete() {
			out := noSignal(symbol, models.ReasonInsufficientHistory)
			out.Timeframe = tf.String()
			out.Snapshots = snapshotsByName(snaps)
			return out
		}
		ordered = append(ordered, s)
	}
	anchor := snaps[e.cfg.Anchor]

	out := noSignal(symbol, e.gate(anchor))
	out.Snapshots = snapshotsByName(snaps)
	if out.Reason != models.ReasonNone {
		out.Timeframe = e.cfg.Anchor.String()
		return out
	}

	side, ok := Consensus(ordered)
	if !ok {
		out.Reason = models.ReasonNoConsensus
		return out
	}

	entry := SelectEntry(anchor)
	trend := ClassifyTrend(*anchor.EMAFast, *anchor.EMASlow, *anchor.SMAMid)
	bbDir := BBDirection(anchor)
	lv := DeriveLevels(entry, side, e.cfg.Trade)

	out.Signal = &models.Signal{
		Symbol:         symbol,
		Side:           side,
		Entry:          round(entry, 3),
		TakeProfit:     lv.TakeProfit,
		StopLoss:       lv.StopLoss,
		TrailingStop:   lv.TrailingStop,
		Liquidation:    lv.Liquidation,
		Quantity:       lv.Quantity,
		Margin:         lv.Margin,
		Trend:          trend,
		BBDirection:    bbDir,
		Score:          Score(anchor, bbDir, trend),
		SizingFallback: lv.Fallback,
		Timestamp:      now,
	}
	return out
}

// gate checks volume, ATR-to-price ratio and RSI zone on the anchor. The
// RSI zone is exclusive on both ends.
func (e *Engine) gate(anchor models.Snapshot) models.NoSignalReason {
	g := e.cfg.Gates
	if anchor.Volume < g.MinVolume {
		return models.ReasonGateVolume
	}
	if anchor.Close <= 0 || *anchor.ATR/anchor.Close < g.MinATRPct {
		return models.ReasonGateVolatility
	}
	if rsi := *anchor.RSI; !(rsi > g.RSILow && rsi < g.RSIHigh) {
		return models.ReasonGateRSI
	}
	return models.ReasonNone
}

func noSignal(symbol string, reason models.NoSignalReason) models.Outcome {
	return models.Outcome{Symbol: symbol, Reason: reason}
}

func snapshotsByName(snaps map[repository.Timeframe]models.Snapshot) map[string]models.Snapshot {
	if len(snaps) == 0 {
		return nil
	}
	out := make(map[string]models.Snapshot, len(snaps))
	for tf, s := range snaps {
		out[tf.String()] = s
	}
	return out
}
