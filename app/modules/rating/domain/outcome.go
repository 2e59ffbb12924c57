package ratingdomain

import (
	"fmt"
	"strings"
)

const maxSets = 3

// ComputeWinningTeam counts set wins and returns the side with strictly more,
// or nil when the count is level.
func ComputeWinningTeam(sets []SetScore) *TeamNumber {
	var t1, t2 int
	for _, s := range sets {
		switch s.Winner() {
		case Team1:
			t1++
		case Team2:
			t2++
		}
	}
	var w TeamNumber
	switch {
	case t1 > t2:
		w = Team1
	case t2 > t1:
		w = Team2
	default:
		return nil
	}
	return &w
}

// ValidateSets checks every set against padel scoring rules and the position
// of a super-tiebreak. It does not check for a level set-win count; callers
// that need a winner use ComputeWinningTeam.
func ValidateSets(sets []SetScore) error {
	if len(sets) == 0 {
		return validationf("at least one set is required")
	}
	if len(sets) > maxSets {
		return validationf("a match has at most %d sets, got %d", maxSets, len(sets))
	}

	var won [3]int
	for i, s := range sets {
		n := i + 1
		if won[Team1] == 2 || won[Team2] == 2 {
			return validationf("set %d played after the match was decided", n)
		}
		if s.Team1 < 0 || s.Team2 < 0 {
			return validationf("set %d has a negative score", n)
		}
		if s.SuperTiebreak {
			if n != len(sets) {
				return validationf("set %d: a super-tiebreak is only allowed as the final set", n)
			}
			if len(sets) == 1 {
				return validationf("set %d: a super-tiebreak cannot be the only set", n)
			}
			if err := validateSuperTiebreak(s); err != nil {
				return fmt.Errorf("set %d: %w", n, err)
			}
		} else if err := validateStandardSet(s); err != nil {
			return fmt.Errorf("set %d: %w", n, err)
		}
		won[s.Winner()]++
	}
	return nil
}

func validateStandardSet(s SetScore) error {
	w, l := s.Team1, s.Team2
	if l > w {
		w, l = l, w
	}
	switch {
	case w == 6 && l <= 4:
		return nil
	case w == 7 && (l == 5 || l == 6):
		return nil
	}
	return validationf("%d-%d is not a legal set score", s.Team1, s.Team2)
}

func validateSuperTiebreak(s SetScore) error {
	w, l := s.Team1, s.Team2
	if l > w {
		w, l = l, w
	}
	if w < 10 || w-l < 2 {
		return validationf("%d-%d is not a legal super-tiebreak", s.Team1, s.Team2)
	}
	return nil
}

// FormatScore renders sets as "6-4, 3-6, 10-8".
func FormatScore(sets []SetScore) string {
	parts := make([]string, len(sets))
	for i, s := range sets {
		parts[i] = fmt.Sprintf("%d-%d", s.Team1, s.Team2)
	}
	return strings.Join(parts, ", ")
}
