package metrics

import (
	"testing"

	"FinSignal/internal/domain/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder(t *testing.T) {
	r := New(prometheus.NewRegistry())
	r.RecordSignal("XAUUSDT", models.SideBuy, 70, 2345.5)
	r.RecordSignal("XAUUSDT", models.SideBuy, 30, 2346)
	r.RecordOutcome("XAUUSDT", models.ReasonGateRSI)
	r.RecordScan("ok")
	r.RecordSizingFallback("XAUUSDT")

	if got := testutil.ToFloat64(r.signalsTotal.WithLabelValues("XAUUSDT", "Buy")); got != 2 {
		t.Fatalf("expected 2 signals, got %v", got)
	}
	if got := testutil.ToFloat64(r.lastScore.WithLabelValues("XAUUSDT")); got != 30 {
		t.Fatalf("expected last score 30, got %v", got)
	}
	if got := testutil.ToFloat64(r.outcomesTotal.WithLabelValues("XAUUSDT", "gate_rsi")); got != 1 {
		t.Fatalf("expected 1 gate_rsi outcome, got %v", got)
	}
}
