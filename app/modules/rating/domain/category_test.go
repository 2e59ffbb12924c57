package ratingdomain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKFactor(t *testing.T) {
	want := map[Category]int{
		CategoryFriendly:             16,
		CategoryClubLeague:           32,
		CategoryOfficialTournament:   50,
		CategoryCorporateChallenge:   25,
		CategoryNationalChampionship: 75,
	}
	for c, k := range want {
		got, err := KFactor(c)
		require.NoError(t, err)
		assert.Equal(t, k, got, c)
	}

	_, err := KFactor("exhibition")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestKFactorTableIsACopy(t *testing.T) {
	table := KFactorTable()
	require.Len(t, table, 5)
	assert.Equal(t, KFactorEntry{Category: CategoryFriendly, KFactor: 16}, table[0])

	table[0].KFactor = 999
	k, _ := KFactor(CategoryFriendly)
	assert.Equal(t, 16, k)
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
	}{
		{"friendly", CategoryFriendly},
		{" Club_League ", CategoryClubLeague},
		{"league", CategoryClubLeague},
		{"tournament", CategoryOfficialTournament},
		{"nationals", CategoryNationalChampionship},
		{"default", CategoryFriendly},
	}
	for _, tt := range tests {
		got, err := ParseCategory(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseCategory("")
	assert.ErrorIs(t, err, ErrValidation)
}
