package ratingdomain

import (
	"math"
)

// DefaultRating is the rating new players start with, and the team rating of an empty roster.
const DefaultRating = 1000.0

const (
	maxDifferentialCounted = 5
	differentialStep       = 0.1
	superTiebreakBonus     = 0.05
	maxMarginMultiplier    = 1.5
)

// ExpectedScore is the logistic Elo expectation of a side rated rA against rB.
func ExpectedScore(rA, rB float64) float64 {
	return 1 / (1 + math.Pow(10, (rB-rA)/400))
}

// TeamRating is the arithmetic mean of the members' ratings.
func TeamRating(ratings []float64) float64 {
	if len(ratings) == 0 {
		return DefaultRating
	}
	var sum float64
	for _, r := range ratings {
		sum += r
	}
	return sum / float64(len(ratings))
}

// MarginMultiplier scales a result by how lopsided it was. The total game
// differential counts up to 5 games at 0.1 each, a super-tiebreak adds 0.05,
// and the result never exceeds 1.5.
func MarginMultiplier(sets []SetScore) float64 {
	total := 0
	superTiebreak := false
	for _, s := range sets {
		total += s.diff()
		if s.SuperTiebreak {
			superTiebreak = true
		}
	}

	m := 1.0 + float64(min(maxDifferentialCounted, total))*differentialStep
	if superTiebreak {
		m += superTiebreakBonus
	}
	m = math.Min(m, maxMarginMultiplier)
	// Two decimals is the resolution of the inputs; rounding keeps 1.4 from
	// drifting to 1.4000000000000001.
	return math.Round(m*100) / 100
}

// EloResult is the outcome of one Elo application between two team ratings.
type EloResult struct {
	Expected float64 // expected score of side A
	RawDelta float64
	Delta    int // RawDelta rounded half-up, applied +A / -B
	NewA     float64
	NewB     float64
}

// ApplyElo computes the rating change for side A given its actual score
// (1 for a win, 0 for a loss). The delta is rounded once and applied with
// opposite signs so the exchange is zero-sum.
func ApplyElo(rA, rB, scoreA float64, k int, margin float64) EloResult {
	expected := ExpectedScore(rA, rB)
	raw := float64(k) * margin * (scoreA - expected)
	delta := RoundHalfUp(raw)
	return EloResult{
		Expected: expected,
		RawDelta: raw,
		Delta:    delta,
		NewA:     rA + float64(delta),
		NewB:     rB - float64(delta),
	}
}

// halfTolerance absorbs float error in products such as 75*1.4*0.5, which
// evaluates a few ulps below 52.5. It scales with |x| and stays far below any
// fraction a real delta can carry.
const halfTolerance = 1e-12

// RoundHalfUp rounds x to the nearest integer with halves going toward +Inf.
func RoundHalfUp(x float64) int {
	floor := math.Floor(x)
	if x-floor >= 0.5-halfTolerance*math.Max(1, math.Abs(x)) {
		return int(floor) + 1
	}
	return int(floor)
}
