package ratingdomain

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectGoldenScenarios(t *testing.T) {
	a, b, c, d := uuid.New(), uuid.New(), uuid.New(), uuid.New()

	tests := []struct {
		name       string
		in         ProjectionInput
		wantMargin float64
		wantDelta  int
		wantNew    map[uuid.UUID]float64
	}{
		{
			name: "friendly 6-4 6-4 between equals",
			in: ProjectionInput{
				Team1:    []RatedPlayer{{a, 1000}},
				Team2:    []RatedPlayer{{b, 1000}},
				Category: CategoryFriendly,
				Winner:   Team1,
				Sets:     []SetScore{{6, 4, false}, {6, 4, false}},
			},
			wantMargin: 1.4,
			wantDelta:  11,
			wantNew:    map[uuid.UUID]float64{a: 1011, b: 989},
		},
		{
			name: "national championship rounds the half up",
			in: ProjectionInput{
				Team1:    []RatedPlayer{{a, 1000}},
				Team2:    []RatedPlayer{{b, 1000}},
				Category: CategoryNationalChampionship,
				Winner:   Team1,
				Sets:     []SetScore{{6, 4, false}, {6, 4, false}},
			},
			wantMargin: 1.4,
			wantDelta:  53,
			wantNew:    map[uuid.UUID]float64{a: 1053, b: 947},
		},
		{
			name: "doubles underdogs bagel",
			in: ProjectionInput{
				Team1:    []RatedPlayer{{a, 1000}, {b, 1000}},
				Team2:    []RatedPlayer{{c, 1200}, {d, 1200}},
				Category: CategoryClubLeague,
				Winner:   Team1,
				Sets:     []SetScore{{6, 0, false}, {6, 0, false}},
			},
			wantMargin: 1.5,
			wantDelta:  36,
			wantNew:    map[uuid.UUID]float64{a: 1036, b: 1036, c: 1164, d: 1164},
		},
		{
			name: "team 2 winning the half point mirrors team 1",
			in: ProjectionInput{
				Team1:    []RatedPlayer{{a, 1000}},
				Team2:    []RatedPlayer{{b, 1000}},
				Category: CategoryNationalChampionship,
				Winner:   Team2,
				Sets:     []SetScore{{4, 6, false}, {4, 6, false}},
			},
			wantMargin: 1.4,
			wantDelta:  53,
			wantNew:    map[uuid.UUID]float64{a: 947, b: 1053},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Project(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMargin, p.Margin)
			assert.Equal(t, tt.wantDelta, p.Delta)

			got := make(map[uuid.UUID]float64, len(p.Players))
			for _, pl := range p.Players {
				got[pl.PlayerID] = pl.New
			}
			if diff := cmp.Diff(tt.wantNew, got); diff != "" {
				t.Errorf("new ratings mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestProjectionTeamDelta(t *testing.T) {
	p := Projection{WinnerTeam: Team2, Delta: 11}
	assert.Equal(t, -11, p.TeamDelta(Team1))
	assert.Equal(t, 11, p.TeamDelta(Team2))
}

func TestProjectWithoutSetsUsesUnitMargin(t *testing.T) {
	p, err := Project(ProjectionInput{
		Team1:    RatingsOnly([]float64{1000}),
		Team2:    RatingsOnly([]float64{1000}),
		Category: CategoryFriendly,
		Winner:   Team1,
	})
	require.NoError(t, err)
	assert.Equal(t, 1.0, p.Margin)
	assert.Equal(t, 8, p.Delta)
	assert.Equal(t, 0.5, p.Team1WinProbability)
}

func TestProjectRejectsBadInput(t *testing.T) {
	_, err := Project(ProjectionInput{Category: "exhibition", Winner: Team1})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = Project(ProjectionInput{Category: CategoryFriendly, Winner: 0})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestProjectProperties(t *testing.T) {
	f := gofakeit.New(42)

	for i := 0; i < 200; i++ {
		team := func() []RatedPlayer {
			return []RatedPlayer{
				{uuid.New(), float64(f.IntRange(600, 2200))},
				{uuid.New(), float64(f.IntRange(600, 2200))},
			}
		}
		in := ProjectionInput{
			Team1:    team(),
			Team2:    team(),
			Category: Categories[f.IntRange(0, len(Categories)-1)],
			Winner:   TeamNumber(f.IntRange(1, 2)),
			Sets:     []SetScore{{6, f.IntRange(0, 4), false}, {f.IntRange(0, 4), 6, false}, {10, 8, true}},
		}

		p1, err := Project(in)
		require.NoError(t, err)
		p2, err := Project(in)
		require.NoError(t, err)

		if diff := cmp.Diff(p1, p2); diff != "" {
			t.Fatalf("projection not deterministic (-first +second):\n%s", diff)
		}

		var sum1, sum2 int
		for _, pl := range p1.Players {
			if pl.Team == Team1 {
				sum1 += pl.Delta
			} else {
				sum2 += pl.Delta
			}
		}
		assert.Equal(t, sum1, -sum2, "zero-sum")
		assert.GreaterOrEqual(t, p1.Delta, 0, "winner never loses points")
		assert.InDelta(t, 1.0, p1.Team1WinProbability+p1.Team2WinProbability, 1e-12)
	}
}
