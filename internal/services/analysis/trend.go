package analysis

import "FinSignal/internal/domain/models"

// ClassifyTrend labels a timeframe from its moving averages:
// fast > slow > mid is a Trend, fast > slow alone is a Swing, anything
// else is a Scalp.
func ClassifyTrend(emaFast, emaSlow, smaMid float64) string {
	switch {
	case emaFast > emaSlow && emaSlow > smaMid:
		return models.TrendStrong
	case emaFast > emaSlow:
		return models.TrendSwing
	default:
		return models.TrendScalp
	}
}
