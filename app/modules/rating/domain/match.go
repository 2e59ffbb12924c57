package ratingdomain

import (
	"strings"
)

// MatchType is singles or doubles.
type MatchType string

const (
	MatchTypeSingles MatchType = "singles"
	MatchTypeDoubles MatchType = "doubles"
)

// TeamSize is the number of players each side fields.
func (t MatchType) TeamSize() int {
	switch t {
	case MatchTypeSingles:
		return 1
	case MatchTypeDoubles:
		return 2
	}
	return 0
}

func ParseMatchType(s string) (MatchType, error) {
	switch MatchType(strings.ToLower(strings.TrimSpace(s))) {
	case MatchTypeSingles:
		return MatchTypeSingles, nil
	case MatchTypeDoubles:
		return MatchTypeDoubles, nil
	}
	return "", validationf("unknown match type %q", s)
}

// TeamNumber identifies a side. Valid values are 1 and 2.
type TeamNumber int

const (
	Team1 TeamNumber = 1
	Team2 TeamNumber = 2
)

func (t TeamNumber) Valid() bool { return t == Team1 || t == Team2 }

// SetScore is the games (or points, for a super-tiebreak) each team took in one set.
type SetScore struct {
	Team1         int  `json:"t1"`
	Team2         int  `json:"t2"`
	SuperTiebreak bool `json:"super_tiebreak"`
}

// Winner returns the side that took the set, or 0 for a level set.
func (s SetScore) Winner() TeamNumber {
	switch {
	case s.Team1 > s.Team2:
		return Team1
	case s.Team2 > s.Team1:
		return Team2
	}
	return 0
}

func (s SetScore) diff() int {
	if s.Team1 > s.Team2 {
		return s.Team1 - s.Team2
	}
	return s.Team2 - s.Team1
}
