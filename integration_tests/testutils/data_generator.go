package testutils

import (
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	ratingdomain "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/domain"
)

// TestDataGenerator provides methods to create test data for integration tests
type TestDataGenerator struct {
	faker *gofakeit.Faker
	seed  int64
}

// NewTestDataGenerator creates a new test data generator with optional seed
func NewTestDataGenerator(seed ...int64) *TestDataGenerator {
	var s int64
	if len(seed) > 0 {
		s = seed[0]
	} else {
		s = time.Now().UnixNano()
	}

	return &TestDataGenerator{
		faker: gofakeit.New(uint64(s)),
		seed:  s,
	}
}

// GeneratePlayers returns count distinct player ids.
func (g *TestDataGenerator) GeneratePlayers(count int) []uuid.UUID {
	players := make([]uuid.UUID, count)
	for i := range players {
		players[i] = uuid.MustParse(g.faker.UUID())
	}
	return players
}

// GenerateSets returns a best-of-three score won by winner. Every set is a
// regular set between 6-0 and 7-5.
func (g *TestDataGenerator) GenerateSets(winner ratingdomain.TeamNumber) []ratingdomain.SetScore {
	won := func() ratingdomain.SetScore {
		loser := g.faker.IntRange(0, 5)
		games := 6
		if loser == 5 {
			games = 7
		}
		return ratingdomain.SetScore{Team1: games, Team2: loser}
	}
	flip := func(s ratingdomain.SetScore) ratingdomain.SetScore {
		return ratingdomain.SetScore{Team1: s.Team2, Team2: s.Team1}
	}

	sets := []ratingdomain.SetScore{won(), won()}
	if g.faker.Bool() {
		// Drop the second set and win the decider.
		sets = []ratingdomain.SetScore{sets[0], flip(won()), won()}
	}
	if winner == ratingdomain.Team2 {
		for i := range sets {
			sets[i] = flip(sets[i])
		}
	}
	return sets
}

// RandomCategory picks one of the rated categories.
func (g *TestDataGenerator) RandomCategory() ratingdomain.Category {
	return ratingdomain.Categories[g.faker.IntRange(0, len(ratingdomain.Categories)-1)]
}
