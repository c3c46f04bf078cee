// Package indicators implements the stateless technical indicators used by
// the signal engine. Every function reports ok=false instead of a value when
// the input is shorter than the history it needs.
package indicators

import talib "github.com/markcheno/go-talib"

// RSIEpsilon keeps RSI finite when the window contains no losses.
const RSIEpsilon = 1e-10

// EMA returns the exponential moving average of prices, seeded with the
// mean of the first period values and smoothed with alpha = 2/(period+1).
func EMA(prices []float64, period int) (float64, bool) {
	if period <= 0 || len(prices) < period {
		return 0, false
	}
	return last(talib.Ema(prices, period)), true
}

// SMA returns the mean of the last period prices.
func SMA(prices []float64, period int) (float64, bool) {
	if period <= 0 || len(prices) < period {
		return 0, false
	}
	return last(talib.Sma(prices, period)), true
}

// RSI averages the gains and losses of the most recent period price
// changes. There is no recursive smoothing over older bars.
func RSI(prices []float64, period int) (float64, bool) {
	if period <= 0 || len(prices) < period+1 {
		return 0, false
	}
	window := prices[len(prices)-period-1:]
	var gains, losses float64
	for i := 1; i < len(window); i++ {
		d := window[i] - window[i-1]
		if d > 0 {
			gains += d
		} else {
			losses -= d
		}
	}
	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)
	rs := avgGain / (avgLoss + RSIEpsilon)
	return 100 - 100/(1+rs), true
}

// Bands is the result of Bollinger.
type Bands struct {
	Upper float64
	Mid   float64
	Lower float64
}

// Bollinger returns mid = SMA(period) and mid ± k·σ, where σ is the
// population standard deviation of the last period prices.
func Bollinger(prices []float64, period int, k float64) (Bands, bool) {
	if period <= 0 || len(prices) < period {
		return Bands{}, false
	}
	upper, mid, lower := talib.BBands(prices, period, k, k, talib.SMA)
	return Bands{Upper: last(upper), Mid: last(mid), Lower: last(lower)}, true
}

// ATR returns the average true range with Wilder smoothing. Bar i's high
// and low are paired with bar i-1's close, so period+1 bars are needed.
func ATR(highs, lows, closes []float64, period int) (float64, bool) {
	n := len(highs)
	if period <= 0 || n < period+1 || len(lows) != n || len(closes) != n {
		return 0, false
	}
	return last(talib.Atr(highs, lows, closes, period)), true
}

// MACD returns EMA(fast) - EMA(slow).
func MACD(prices []float64, fast, slow int) (float64, bool) {
	f, ok := EMA(prices, fast)
	if !ok {
		return 0, false
	}
	s, ok := EMA(prices, slow)
	if !ok {
		return 0, false
	}
	return f - s, true
}

func last(xs []float64) float64 {
	return xs[len(xs)-1]
}
