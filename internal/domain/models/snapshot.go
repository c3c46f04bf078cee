package models

import "time"

// Snapshot holds the indicator values computed once for one timeframe's
// candle series. A nil field means the indicator had too little history.
type Snapshot struct {
	Symbol    string    `json:"symbol"`
	Timeframe string    `json:"timeframe"`
	Timestamp time.Time `json:"timestamp"`
	Candles   int       `json:"candles"`

	Close   float64  `json:"close"`
	Volume  float64  `json:"volume"`
	EMAFast *float64 `json:"ema_fast"`
	EMASlow *float64 `json:"ema_slow"`
	SMAMid  *float64 `json:"sma_mid"`
	RSI     *float64 `json:"rsi"`
	MACD    *float64 `json:"macd"`
	BBUpper *float64 `json:"bb_upper"`
	BBMid   *float64 `json:"bb_mid"`
	BBLower *float64 `json:"bb_lower"`
	ATR     *float64 `json:"atr"`
}

// Complete reports whether every indicator field is populated.
func (s Snapshot) Complete() bool {
	for _, v := range []*float64{s.EMAFast, s.EMASlow, s.SMAMid, s.RSI, s.MACD, s.BBUpper, s.BBMid, s.BBLower, s.ATR} {
		if v == nil {
			return false
		}
	}
	return true
}

// Float returns a pointer to v, for building snapshots by hand.
func Float(v float64) *float64 { return &v }
