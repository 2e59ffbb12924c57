package ratingdomain

import (
	"github.com/google/uuid"
)

// ValidateComposition checks the rosters against the match type and the
// submitter. Every failure is a ValidationError.
func ValidateComposition(matchType MatchType, team1, team2 []uuid.UUID, submitter uuid.UUID) error {
	size := matchType.TeamSize()
	if size == 0 {
		return validationf("unknown match type %q", matchType)
	}
	if len(team1) != size || len(team2) != size {
		return validationf("%s needs %d player(s) per team, got %d and %d", matchType, size, len(team1), len(team2))
	}

	seen := make(map[uuid.UUID]struct{}, 2*size)
	for _, id := range append(append([]uuid.UUID{}, team1...), team2...) {
		if id == uuid.Nil {
			return validationf("player id is required")
		}
		if _, dup := seen[id]; dup {
			return validationf("player %s appears more than once", id)
		}
		seen[id] = struct{}{}
	}

	if _, ok := seen[submitter]; !ok {
		return validationf("submitter %s is not a participant", submitter)
	}
	return nil
}
