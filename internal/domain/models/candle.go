package models

import "time"

// Candle is one OHLCV bar. Series are always ordered oldest first.
type Candle struct {
	Bucket    time.Time `json:"time"`
	Symbol    string    `json:"symbol"`
	Timeframe string    `json:"timeframe,omitempty"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}
