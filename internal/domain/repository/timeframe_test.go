package repository

import (
	"testing"
	"time"
)

func TestParseTimeframe(t *testing.T) {
	cases := []struct {
		in   string
		want Timeframe
		ok   bool
	}{
		{"15m", TF15m, true},
		{"H1", TF1h, true},
		{"H4", TF4h, true},
		{"D1", TF1d, true},
		{"M30", TF30m, true},
		{"2h", "2h", false},
		{"", "", false},
	}
	for _, c := range cases {
		got, ok := ParseTimeframe(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("ParseTimeframe(%q) = %q,%v want %q,%v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestNormalizeTimeframeFallsBack(t *testing.T) {
	if got := NormalizeTimeframe("weekly"); got != TF1h {
		t.Fatalf("expected default 1h, got %q", got)
	}
	if got := NormalizeTimeframe("M5"); got != TF5m {
		t.Fatalf("expected 5m, got %q", got)
	}
}

func TestTimeframeCatalogue(t *testing.T) {
	if TF4h.Duration() != 4*time.Hour {
		t.Fatalf("4h duration = %v", TF4h.Duration())
	}
	if TF4h.BybitInterval() != "240" || TF1d.BybitInterval() != "D" {
		t.Fatalf("unexpected bybit codes %q %q", TF4h.BybitInterval(), TF1d.BybitInterval())
	}
	if Timeframe("3m").Duration() != 0 {
		t.Fatal("unknown timeframe should have zero duration")
	}
	all := AllTimeframes()
	for i := 1; i < len(all); i++ {
		if all[i].Duration() <= all[i-1].Duration() {
			t.Fatalf("timeframes not ascending at %d: %v", i, all)
		}
	}
}
