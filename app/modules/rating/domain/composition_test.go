package ratingdomain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateComposition(t *testing.T) {
	a, b, c, d := uuid.New(), uuid.New(), uuid.New(), uuid.New()

	tests := []struct {
		name      string
		matchType MatchType
		team1     []uuid.UUID
		team2     []uuid.UUID
		submitter uuid.UUID
		wantErr   string
	}{
		{name: "singles", matchType: MatchTypeSingles, team1: []uuid.UUID{a}, team2: []uuid.UUID{b}, submitter: a},
		{name: "doubles", matchType: MatchTypeDoubles, team1: []uuid.UUID{a, b}, team2: []uuid.UUID{c, d}, submitter: d},
		{name: "doubles short a player", matchType: MatchTypeDoubles, team1: []uuid.UUID{a}, team2: []uuid.UUID{c, d}, submitter: a, wantErr: "needs 2 player(s)"},
		{name: "singles with a pair", matchType: MatchTypeSingles, team1: []uuid.UUID{a, b}, team2: []uuid.UUID{c}, submitter: a, wantErr: "needs 1 player(s)"},
		{name: "duplicate across teams", matchType: MatchTypeDoubles, team1: []uuid.UUID{a, b}, team2: []uuid.UUID{b, c}, submitter: a, wantErr: "more than once"},
		{name: "duplicate within team", matchType: MatchTypeDoubles, team1: []uuid.UUID{a, a}, team2: []uuid.UUID{c, d}, submitter: a, wantErr: "more than once"},
		{name: "nil player", matchType: MatchTypeSingles, team1: []uuid.UUID{uuid.Nil}, team2: []uuid.UUID{c}, submitter: c, wantErr: "player id is required"},
		{name: "outside submitter", matchType: MatchTypeSingles, team1: []uuid.UUID{a}, team2: []uuid.UUID{b}, submitter: c, wantErr: "not a participant"},
		{name: "unknown type", matchType: "triples", team1: []uuid.UUID{a}, team2: []uuid.UUID{b}, submitter: a, wantErr: "unknown match type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateComposition(tt.matchType, tt.team1, tt.team2, tt.submitter)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrValidation)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestErrorsAreClassified(t *testing.T) {
	pe := &PersistenceError{Op: "UpdateRatings", Err: assert.AnError}
	assert.ErrorIs(t, pe, ErrPersistence)
	assert.ErrorIs(t, pe, assert.AnError)
	assert.True(t, IsRetryable(pe))
	assert.False(t, IsRetryable(NewValidationError("bad")))
	assert.NotErrorIs(t, NewPreconditionError("x"), ErrValidation)
}
