package ratingservice

import (
	"context"

	ratingdomain "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/domain"
	"github.com/PadelPad/UnitedPadelApp-sub000/pkg/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func (s *RatingService) KFactorTable() []ratingdomain.KFactorEntry {
	return ratingdomain.KFactorTable()
}

// ProjectRating previews the rating change for a proposed result.
func (s *RatingService) ProjectRating(ctx context.Context, req ProjectionRequest) (ratingdomain.Projection, error) {
	return unwrap[ratingdomain.Projection](withTelemetry(s, ctx, "ProjectRating", req.Category, func(ctx context.Context) (results.OperationResult[ratingdomain.Projection, error], error) {
		return s.projectRatingLogic(ctx, nil, req)
	}))
}

func (s *RatingService) projectRatingLogic(ctx context.Context, db bun.IDB, req ProjectionRequest) (results.OperationResult[ratingdomain.Projection, error], error) {
	fail := func(err error) (results.OperationResult[ratingdomain.Projection, error], error) {
		return results.FailureResult[ratingdomain.Projection, error](err), nil
	}

	category, err := ratingdomain.ParseCategory(req.Category)
	if err != nil {
		return fail(err)
	}

	winner := req.WinnerTeam
	if len(req.Sets) > 0 {
		if err := ratingdomain.ValidateSets(req.Sets); err != nil {
			return fail(err)
		}
		derived := ratingdomain.ComputeWinningTeam(req.Sets)
		if derived == nil {
			return fail(ratingdomain.NewValidationError("set wins are tied"))
		}
		if winner != 0 && winner != *derived {
			return fail(ratingdomain.NewValidationError("winner_team %d contradicts the set scores", winner))
		}
		winner = *derived
	}

	team1, err := s.previewTeam(ctx, db, req.Team1Ratings, req.Team1PlayerIDs)
	if err != nil {
		return results.OperationResult[ratingdomain.Projection, error]{}, err
	}
	team2, err := s.previewTeam(ctx, db, req.Team2Ratings, req.Team2PlayerIDs)
	if err != nil {
		return results.OperationResult[ratingdomain.Projection, error]{}, err
	}

	p, err := ratingdomain.Project(ratingdomain.ProjectionInput{
		Team1:    team1,
		Team2:    team2,
		Category: category,
		Winner:   winner,
		Sets:     req.Sets,
	})
	if err != nil {
		return fail(err)
	}
	return results.SuccessResult[ratingdomain.Projection, error](p), nil
}

// previewTeam resolves a side from explicit ratings or, failing that, from
// stored ratings. Unknown players count at the default rating.
func (s *RatingService) previewTeam(ctx context.Context, db bun.IDB, ratings []float64, ids []uuid.UUID) ([]ratingdomain.RatedPlayer, error) {
	if len(ratings) > 0 || len(ids) == 0 {
		return ratingdomain.RatingsOnly(ratings), nil
	}
	stored, err := s.repo.GetRatings(ctx, db, ids)
	if err != nil {
		return nil, err
	}
	out := make([]ratingdomain.RatedPlayer, len(ids))
	for i, id := range ids {
		out[i] = ratingdomain.RatedPlayer{PlayerID: id, Rating: ratingdomain.DefaultRating}
		if r, ok := stored[id]; ok {
			out[i].Rating = r.Rating
		}
	}
	return out, nil
}
