package analysis

import (
	"fmt"
	"strings"

	"FinSignal/internal/domain/models"
)

// FormatSignal renders a signal as a console block.
func FormatSignal(s models.Signal) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s Signal\n", s.Symbol)
	fmt.Fprintf(&b, "Type: %s | Side: %s | Score: %g%%\n", s.Trend, s.Side, s.Score)
	fmt.Fprintf(&b, "Entry: %g | TP: %g | SL: %g | Trail: %g\n", s.Entry, s.TakeProfit, s.StopLoss, s.TrailingStop)
	fmt.Fprintf(&b, "Qty: %g | Margin: %g USDT | Liq: %g\n", s.Quantity, s.Margin, s.Liquidation)
	fmt.Fprintf(&b, "BB: %s | Time: %s\n", s.BBDirection, s.Timestamp.Format("2006-01-02 15:04:05"))
	b.WriteString(strings.Repeat("=", 60))
	return b.String()
}
