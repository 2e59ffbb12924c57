package ratingdomain

import (
	"github.com/google/uuid"
)

// RatedPlayer is a participant and the rating the computation starts from.
type RatedPlayer struct {
	PlayerID uuid.UUID `json:"player_id"`
	Rating   float64   `json:"rating"`
}

// ProjectionInput is everything Project needs. It carries no store state.
type ProjectionInput struct {
	Team1    []RatedPlayer
	Team2    []RatedPlayer
	Category Category
	Winner   TeamNumber
	Sets     []SetScore
}

// PlayerProjection is one player's rating movement.
type PlayerProjection struct {
	PlayerID uuid.UUID  `json:"player_id"`
	Team     TeamNumber `json:"team"`
	Old      float64    `json:"old"`
	Delta    int        `json:"delta"`
	New      float64    `json:"new"`
}

// Projection is the result of applying the rating math to a match. The
// preview and finalize paths both produce it through Project.
type Projection struct {
	Category            Category           `json:"category"`
	KFactor             int                `json:"k_factor"`
	Margin              float64            `json:"margin"`
	WinnerTeam          TeamNumber         `json:"winner_team"`
	Team1Average        float64            `json:"team1_average"`
	Team2Average        float64            `json:"team2_average"`
	Team1WinProbability float64            `json:"team1_win_probability"`
	Team2WinProbability float64            `json:"team2_win_probability"`
	Delta               int                `json:"delta"` // points gained by the winning side
	Players             []PlayerProjection `json:"players"`
}

// Project computes the rating change of a decided match. The Elo exchange is
// oriented from the winner's side so that a half point always rounds in the
// winner's favour regardless of which side is labelled team 1.
func Project(in ProjectionInput) (Projection, error) {
	k, err := KFactor(in.Category)
	if err != nil {
		return Projection{}, err
	}
	if !in.Winner.Valid() {
		return Projection{}, validationf("winner team must be 1 or 2, got %d", in.Winner)
	}

	avg1 := TeamRating(ratingsOf(in.Team1))
	avg2 := TeamRating(ratingsOf(in.Team2))

	margin := 1.0
	if len(in.Sets) > 0 {
		margin = MarginMultiplier(in.Sets)
	}

	winnerAvg, loserAvg := avg1, avg2
	if in.Winner == Team2 {
		winnerAvg, loserAvg = avg2, avg1
	}
	res := ApplyElo(winnerAvg, loserAvg, 1, k, margin)

	p := Projection{
		Category:            in.Category,
		KFactor:             k,
		Margin:              margin,
		WinnerTeam:          in.Winner,
		Team1Average:        avg1,
		Team2Average:        avg2,
		Team1WinProbability: ExpectedScore(avg1, avg2),
		Team2WinProbability: ExpectedScore(avg2, avg1),
		Delta:               res.Delta,
		Players:             make([]PlayerProjection, 0, len(in.Team1)+len(in.Team2)),
	}

	for _, pl := range in.Team1 {
		d := p.TeamDelta(Team1)
		p.Players = append(p.Players, PlayerProjection{PlayerID: pl.PlayerID, Team: Team1, Old: pl.Rating, Delta: d, New: pl.Rating + float64(d)})
	}
	for _, pl := range in.Team2 {
		d := p.TeamDelta(Team2)
		p.Players = append(p.Players, PlayerProjection{PlayerID: pl.PlayerID, Team: Team2, Old: pl.Rating, Delta: d, New: pl.Rating + float64(d)})
	}
	return p, nil
}

// TeamDelta returns the signed delta applied to team t.
func (p Projection) TeamDelta(t TeamNumber) int {
	if t == p.WinnerTeam {
		return p.Delta
	}
	return -p.Delta
}

func ratingsOf(players []RatedPlayer) []float64 {
	out := make([]float64, len(players))
	for i, p := range players {
		out[i] = p.Rating
	}
	return out
}

// RatingsOnly builds anonymous rated players from bare ratings, for previews
// where the caller has no player ids.
func RatingsOnly(ratings []float64) []RatedPlayer {
	out := make([]RatedPlayer, len(ratings))
	for i, r := range ratings {
		out[i] = RatedPlayer{Rating: r}
	}
	return out
}
