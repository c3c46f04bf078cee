package repository

import "time"

// Timeframe represents candle resolution buckets.
type Timeframe string

const (
	TF1m  Timeframe = "1m"
	TF5m  Timeframe = "5m"
	TF15m Timeframe = "15m"
	TF30m Timeframe = "30m"
	TF1h  Timeframe = "1h"
	TF4h  Timeframe = "4h"
	TF1d  Timeframe = "1d"
)

var timeframes = map[Timeframe]struct {
	dur   time.Duration
	bybit string
}{
	TF1m:  {time.Minute, "1"},
	TF5m:  {5 * time.Minute, "5"},
	TF15m: {15 * time.Minute, "15"},
	TF30m: {30 * time.Minute, "30"},
	TF1h:  {time.Hour, "60"},
	TF4h:  {4 * time.Hour, "240"},
	TF1d:  {24 * time.Hour, "D"},
}

// IsValidTimeframe returns true if tf is a supported timeframe.
func IsValidTimeframe(tf Timeframe) bool {
	_, ok := timeframes[tf]
	return ok
}

// DefaultTimeframe returns the default timeframe.
func DefaultTimeframe() Timeframe { return TF1h }

// NormalizeTimeframe converts raw string to a valid timeframe (or default).
func NormalizeTimeframe(s string) Timeframe {
	if tf, ok := ParseTimeframe(s); ok {
		return tf
	}
	return DefaultTimeframe()
}

// ParseTimeframe resolves s to a supported timeframe. MetaTrader style
// names (M15, H1, H4) are accepted too.
func ParseTimeframe(s string) (Timeframe, bool) {
	if tf, ok := aliases[s]; ok {
		return tf, true
	}
	tf := Timeframe(s)
	return tf, IsValidTimeframe(tf)
}

var aliases = map[string]Timeframe{
	"M1":  TF1m,
	"M5":  TF5m,
	"M15": TF15m,
	"M30": TF30m,
	"H1":  TF1h,
	"H4":  TF4h,
	"D1":  TF1d,
}

// Duration returns the bar length of tf, or zero if tf is unknown.
func (tf Timeframe) Duration() time.Duration { return timeframes[tf].dur }

// BybitInterval returns the kline interval code used by the Bybit v5 API.
func (tf Timeframe) BybitInterval() string { return timeframes[tf].bybit }

func (tf Timeframe) String() string { return string(tf) }

// AllTimeframes lists every supported timeframe from shortest to longest.
func AllTimeframes() []Timeframe {
	return []Timeframe{TF1m, TF5m, TF15m, TF30m, TF1h, TF4h, TF1d}
}
