package analysis

import "FinSignal/internal/domain/models"

const (
	weightMomentum   = 0.3
	weightExtremeRSI = 0.2
	weightBreakout   = 0.2
	weightTrend      = 0.3
)

// Score is the weighted confidence in [0, 100]. Each term contributes its
// full weight or nothing.
func Score(anchor models.Snapshot, bbDirection, trend string) float64 {
	var sum float64
	if anchor.MACD != nil && *anchor.MACD > 0 {
		sum += weightMomentum
	}
	if anchor.RSI != nil && (*anchor.RSI < 30 || *anchor.RSI > 70) {
		sum += weightExtremeRSI
	}
	if bbDirection != models.BBNone {
		sum += weightBreakout
	}
	if trend == models.TrendStrong {
		sum += weightTrend
	}
	return round(sum*100, 2)
}
