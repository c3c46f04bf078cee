package analysis

import (
	"testing"

	"FinSignal/internal/domain/models"
)

func TestClassifyTrend(t *testing.T) {
	cases := []struct {
		fast, slow, mid float64
		want            string
	}{
		{3, 2, 1, models.TrendStrong},
		{1998, 1990, 1996, models.TrendSwing},
		{2, 1, 1, models.TrendSwing},
		{1, 2, 3, models.TrendScalp},
		{2, 2, 1, models.TrendScalp},
	}
	for _, tc := range cases {
		if got := ClassifyTrend(tc.fast, tc.slow, tc.mid); got != tc.want {
			t.Errorf("ClassifyTrend(%v, %v, %v) = %s, want %s", tc.fast, tc.slow, tc.mid, got, tc.want)
		}
	}
}

func TestVoteRuleOrder(t *testing.T) {
	s := anchorSnap()
	// above the upper band wins even though close is also above ema_slow
	s.Close = 2020
	if v, ok := VoteFor(s); !ok || v != VoteLong {
		t.Fatalf("expected LONG above band, got %v %v", v, ok)
	}
	// below the lower band wins over close > ema_slow
	s.Close = 1970
	s.EMASlow = models.Float(1960)
	if v, _ := VoteFor(s); v != VoteShort {
		t.Fatalf("expected SHORT below band, got %v", v)
	}
	s = anchorSnap()
	s.Close = 1985
	if v, _ := VoteFor(s); v != VoteShort {
		t.Fatalf("expected SHORT below ema_slow, got %v", v)
	}
	s.Close = 1990
	if _, ok := VoteFor(s); ok {
		t.Fatalf("expected no vote on ema_slow")
	}
}

func TestSelectEntryTieBreak(t *testing.T) {
	s := anchorSnap()
	s.Close = 2000
	s.SMAMid = models.Float(1998)
	s.EMAFast = models.Float(2002)
	s.EMASlow = models.Float(1998)
	if got := SelectEntry(s); got != 1998 {
		t.Fatalf("expected sma_mid to win the tie, got %v", got)
	}
	s.SMAMid = models.Float(1990)
	if got := SelectEntry(s); got != 2002 {
		t.Fatalf("expected ema_fast to win over later ema_slow tie, got %v", got)
	}
}

func TestDeriveLevelsFallback(t *testing.T) {
	lv := DeriveLevels(0, models.SideBuy, DefaultConfig().Trade)
	if !lv.Fallback || lv.Quantity != 1 || lv.Margin != 1 {
		t.Fatalf("expected fallback sizing for zero stop distance, got %+v", lv)
	}
	lv = DeriveLevels(1998, models.SideBuy, DefaultConfig().Trade)
	if lv.Fallback {
		t.Fatalf("did not expect fallback, got %+v", lv)
	}
}

func TestScore(t *testing.T) {
	s := anchorSnap()
	s.RSI = models.Float(75)
	if got := Score(s, models.BBUp, models.TrendStrong); got != 100 {
		t.Fatalf("expected full score, got %v", got)
	}
	s.MACD = models.Float(-0.5)
	s.RSI = models.Float(50)
	if got := Score(s, models.BBNone, models.TrendScalp); got != 0 {
		t.Fatalf("expected zero score, got %v", got)
	}
	s.RSI = models.Float(25)
	if got := Score(s, models.BBDown, models.TrendSwing); got != 40 {
		t.Fatalf("expected 40, got %v", got)
	}
}

func TestRoundUsesExactBinaryValue(t *testing.T) {
	cases := []struct {
		v      float64
		places int32
		want   float64
	}{
		{2027.9695, 3, 2027.969},
		{1.0005, 3, 1.0},
		{2.675, 2, 2.67},
		{0.125, 2, 0.12},
		{0.375, 2, 0.38},
		{-1.0005, 3, -1.0},
		{1994.004, 3, 1994.004},
		{30, 2, 30},
	}
	for _, c := range cases {
		if got := round(c.v, c.places); got != c.want {
			t.Fatalf("round(%v, %d) = %v, want %v", c.v, c.places, got, c.want)
		}
	}
}
