package analysis

import (
	"math"
	"math/big"

	"github.com/shopspring/decimal"

	"FinSignal/internal/domain/models"
)

// Levels are the risk levels and position size derived from an entry.
type Levels struct {
	TakeProfit   float64
	StopLoss     float64
	TrailingStop float64
	Liquidation  float64
	Quantity     float64
	Margin       float64
	// Fallback is set when sizing was not computable and the
	// quantity=1, margin=1 default was used instead.
	Fallback bool
}

// DeriveLevels converts entry and side into target, stop, trailing stop,
// liquidation estimate and position size. Prices are rounded to 3 places
// and margin to 2.
func DeriveLevels(entry float64, side models.Side, t Trade) Levels {
	dir := 1.0
	if side == models.SideSell {
		dir = -1.0
	}
	l := Levels{
		TakeProfit:   round(entry*(1+dir*t.TargetPct), 3),
		StopLoss:     round(entry*(1-dir*t.StopPct), 3),
		TrailingStop: round(entry*(1-dir*t.EntryBufferPct), 3),
		Liquidation:  round(entry*(1-dir/t.Leverage), 3),
	}

	qty := t.Balance * t.RiskPct / math.Abs(entry-l.StopLoss)
	margin := qty * entry / t.Leverage
	if !finite(qty) || !finite(margin) {
		l.Quantity, l.Margin, l.Fallback = 1, 1, true
		return l
	}
	l.Quantity = round(qty, 3)
	l.Margin = round(margin, 2)
	return l
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// round rounds the exact binary value of v to places decimals, ties to
// even. 2027.9695 is stored just below the half and becomes 2027.969.
func round(v float64, places int32) float64 {
	if !finite(v) {
		return v
	}
	return exactDecimal(v).RoundBank(places).InexactFloat64()
}

// exactDecimal expands v without loss. A finite float is num/2^k, which
// equals num*5^k / 10^k.
func exactDecimal(v float64) decimal.Decimal {
	r := new(big.Rat).SetFloat64(v)
	k := r.Denom().BitLen() - 1
	num := new(big.Int).Exp(big.NewInt(5), big.NewInt(int64(k)), nil)
	num.Mul(num, r.Num())
	return decimal.NewFromBigInt(num, int32(-k))
}
