package analysis

import (
	"math"

	"FinSignal/internal/domain/models"
)

// Vote is one timeframe's directional opinion.
type Vote string

const (
	VoteLong  Vote = "LONG"
	VoteShort Vote = "SHORT"
)

type voteRule struct {
	name  string
	match func(s models.Snapshot) bool
	vote  Vote
}

// voteRules are evaluated in order; the first match decides the vote.
var voteRules = []voteRule{
	{"above_upper_band", func(s models.Snapshot) bool { return s.Close > *s.BBUpper }, VoteLong},
	{"below_lower_band", func(s models.Snapshot) bool { return s.Close < *s.BBLower }, VoteShort},
	{"above_slow_ema", func(s models.Snapshot) bool { return s.Close > *s.EMASlow }, VoteLong},
	{"below_slow_ema", func(s models.Snapshot) bool { return s.Close < *s.EMASlow }, VoteShort},
}

// VoteFor returns the vote of a complete snapshot. ok is false when no rule
// matches, which happens when close sits exactly on the slow EMA inside the
// bands.
func VoteFor(s models.Snapshot) (Vote, bool) {
	for _, r := range voteRules {
		if r.match(s) {
			return r.vote, true
		}
	}
	return "", false
}

// Consensus returns the trading side when the distinct recorded votes
// across snaps collapse to a single value.
func Consensus(snaps []models.Snapshot) (models.Side, bool) {
	votes := make(map[Vote]struct{}, 2)
	for _, s := range snaps {
		if v, ok := VoteFor(s); ok {
			votes[v] = struct{}{}
		}
	}
	if len(votes) != 1 {
		return "", false
	}
	if _, long := votes[VoteLong]; long {
		return models.SideBuy, true
	}
	return models.SideSell, true
}

// SelectEntry picks the anchor moving average nearest to close, checking
// sma_mid, ema_fast and ema_slow in that order. Ties keep the earlier one.
func SelectEntry(anchor models.Snapshot) float64 {
	entry := *anchor.SMAMid
	best := math.Abs(entry - anchor.Close)
	for _, v := range []float64{*anchor.EMAFast, *anchor.EMASlow} {
		if d := math.Abs(v - anchor.Close); d < best {
			entry, best = v, d
		}
	}
	return entry
}

// BBDirection reports whether close broke out of the anchor bands.
func BBDirection(anchor models.Snapshot) string {
	switch {
	case anchor.Close > *anchor.BBUpper:
		return models.BBUp
	case anchor.Close < *anchor.BBLower:
		return models.BBDown
	default:
		return models.BBNone
	}
}
