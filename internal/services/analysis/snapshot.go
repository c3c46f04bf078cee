package analysis

import (
	"time"

	"FinSignal/internal/domain/models"
	"FinSignal/internal/domain/repository"
	"FinSignal/internal/services/features"
	"FinSignal/internal/services/indicators"
)

// Snapshot computes one timeframe's indicator snapshot from its candles.
// Indicators without enough history are left nil.
func (e *Engine) Snapshot(symbol string, tf repository.Timeframe, candles []models.Candle) models.Snapshot {
	candles = features.Tail(candles, e.cfg.MaxBars)
	snap := models.Snapshot{Symbol: symbol, Timeframe: tf.String(), Candles: len(candles)}
	if len(candles) == 0 {
		return snap
	}
	last := candles[len(candles)-1]
	snap.Timestamp = last.Bucket
	snap.Close = last.Close
	snap.Volume = last.Volume

	s := features.Extract(candles)
	p := e.cfg.Periods
	snap.EMAFast = defined(indicators.EMA(s.Closes, p.EMAFast))
	snap.EMASlow = defined(indicators.EMA(s.Closes, p.EMASlow))
	snap.SMAMid = defined(indicators.SMA(s.Closes, p.SMAMid))
	snap.RSI = defined(indicators.RSI(s.Closes, p.RSI))
	snap.MACD = defined(indicators.MACD(s.Closes, p.MACDFast, p.MACDSlow))
	snap.ATR = defined(indicators.ATR(s.Highs, s.Lows, s.Closes, p.ATR))
	if b, ok := indicators.Bollinger(s.Closes, p.BB, p.BBK); ok {
		snap.BBUpper, snap.BBMid, snap.BBLower = &b.Upper, &b.Mid, &b.Lower
	}
	return snap
}

// Snapshots builds a snapshot for every configured timeframe present in
// series, stamped with now when a series is empty.
func (e *Engine) Snapshots(symbol string, series map[repository.Timeframe][]models.Candle, now time.Time) map[repository.Timeframe]models.Snapshot {
	out := make(map[repository.Timeframe]models.Snapshot, len(e.cfg.Timeframes))
	for _, tf := range e.cfg.Timeframes {
		candles, ok := series[tf]
		if !ok {
			continue
		}
		snap := e.Snapshot(symbol, tf, candles)
		if snap.Timestamp.IsZero() {
			snap.Timestamp = now
		}
		out[tf] = snap
	}
	return out
}

func defined(v float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	return &v
}
