package features

import (
	"time"

	"FinSignal/internal/domain/models"
	"FinSignal/internal/domain/repository"
)

// Series holds the per-field columns of a candle series, oldest first.
type Series struct {
	Closes  []float64
	Highs   []float64
	Lows    []float64
	Volumes []float64
}

// Extract splits candles into columns.
func Extract(candles []models.Candle) Series {
	s := Series{
		Closes:  make([]float64, len(candles)),
		Highs:   make([]float64, len(candles)),
		Lows:    make([]float64, len(candles)),
		Volumes: make([]float64, len(candles)),
	}
	for i, c := range candles {
		s.Closes[i] = c.Close
		s.Highs[i] = c.High
		s.Lows[i] = c.Low
		s.Volumes[i] = c.Volume
	}
	return s
}

// Tail returns at most the last n candles.
func Tail(candles []models.Candle, n int) []models.Candle {
	if n <= 0 || len(candles) <= n {
		return candles
	}
	return candles[len(candles)-n:]
}

// AlignFromTo rounds time range to candle boundaries based on timeframe.
func AlignFromTo(from, to time.Time, tf repository.Timeframe) (time.Time, time.Time) {
	d := tf.Duration()
	if d <= 0 {
		d = time.Minute
	}
	return from.Truncate(d), to.Truncate(d)
}
