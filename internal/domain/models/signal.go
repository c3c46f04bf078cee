package models

import "time"

// Side is the trading direction of a signal.
type Side string

const (
	SideBuy  Side = "Buy"
	SideSell Side = "Sell"
)

// Trend labels produced by the trend classifier.
const (
	TrendStrong = "Trend"
	TrendSwing  = "Swing"
	TrendScalp  = "Scalp"
)

// Bollinger band direction labels.
const (
	BBUp   = "Up"
	BBDown = "Down"
	BBNone = "No"
)

// Signal is a fully populated trade recommendation.
type Signal struct {
	Symbol         string    `json:"symbol"`
	Side           Side      `json:"side"`
	Entry          float64   `json:"entry"`
	TakeProfit     float64   `json:"take_profit"`
	StopLoss       float64   `json:"stop_loss"`
	TrailingStop   float64   `json:"trailing_stop"`
	Liquidation    float64   `json:"liquidation"`
	Quantity       float64   `json:"quantity"`
	Margin         float64   `json:"margin"`
	Trend          string    `json:"trend"`
	BBDirection    string    `json:"bb_direction"`
	Score          float64   `json:"score"`
	SizingFallback bool      `json:"sizing_fallback"`
	Timestamp      time.Time `json:"timestamp"`
}

// NoSignalReason explains why an analysis produced no signal.
type NoSignalReason string

const (
	ReasonNone                NoSignalReason = "ok"
	ReasonInsufficientHistory NoSignalReason = "insufficient_history"
	ReasonGateVolume          NoSignalReason = "gate_volume"
	ReasonGateVolatility      NoSignalReason = "gate_volatility"
	ReasonGateRSI             NoSignalReason = "gate_rsi"
	ReasonNoConsensus         NoSignalReason = "no_consensus"
)

// Outcome is the result of one analysis: either a Signal or a reason why
// none was produced. Snapshots are kept for inspection either way.
type Outcome struct {
	Symbol    string              `json:"symbol"`
	Signal    *Signal             `json:"signal"`
	Reason    NoSignalReason      `json:"reason"`
	Timeframe string              `json:"timeframe,omitempty"`
	Snapshots map[string]Snapshot `json:"snapshots,omitempty"`
}

// HasSignal reports whether the outcome carries a signal.
func (o Outcome) HasSignal() bool { return o.Signal != nil }
