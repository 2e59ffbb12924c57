package ratingservice

import (
	"context"
	"errors"
	"fmt"
	"slices"

	ratingdomain "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/domain"
	ratingevents "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/events"
	ratingdb "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/infrastructure/repositories"
	"github.com/PadelPad/UnitedPadelApp-sub000/pkg/observability/attr"
	"github.com/PadelPad/UnitedPadelApp-sub000/pkg/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Finalize applies the rating change of a fully confirmed match. It runs in
// one transaction under the match row lock. A match that is already completed
// yields its recorded projection with Noop set, which is also what the loser
// of two concurrent calls observes.
func (s *RatingService) Finalize(ctx context.Context, matchID uuid.UUID) (*FinalizeResult, error) {
	finalizeTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*FinalizeResult, error], error) {
		return s.finalizeLogic(ctx, db, matchID)
	}

	res, err := unwrap[*FinalizeResult](withTelemetry(s, ctx, "Finalize", matchID.String(), func(ctx context.Context) (results.OperationResult[*FinalizeResult, error], error) {
		return runInTx(s, ctx, finalizeTx)
	}))
	if err != nil {
		return nil, err
	}

	category := string(res.Projection.Category)
	s.metrics.RecordMatchFinalized(ctx, category, res.Noop)
	if !res.Noop {
		s.metrics.RecordRatingDelta(ctx, category, res.Projection.Delta)
		s.publish(ctx, ratingevents.MatchFinalizedV1, ratingevents.MatchFinalizedPayloadV1{
			MatchID:     res.MatchID,
			FinalizedAt: res.FinalizedAt,
			Projection:  res.Projection,
		})
	}
	return res, nil
}

func (s *RatingService) finalizeLogic(ctx context.Context, db bun.IDB, matchID uuid.UUID) (results.OperationResult[*FinalizeResult, error], error) {
	fail := func(err error) (results.OperationResult[*FinalizeResult, error], error) {
		return results.FailureResult[*FinalizeResult, error](err), nil
	}

	match, err := s.repo.GetMatchForUpdate(ctx, db, matchID)
	if err != nil {
		if errors.Is(err, ratingdb.ErrNotFound) {
			return fail(fmt.Errorf("match %s: %w", matchID, ratingdb.ErrNotFound))
		}
		return results.OperationResult[*FinalizeResult, error]{}, err
	}

	participants, err := s.repo.GetParticipants(ctx, db, matchID)
	if err != nil {
		return results.OperationResult[*FinalizeResult, error]{}, err
	}

	if match.Status.IsTerminal() {
		s.logger.InfoContext(ctx, "Match already finalized, returning recorded result",
			attr.ExtractCorrelationID(ctx),
			attr.MatchID(matchID),
		)
		return results.SuccessResult[*FinalizeResult, error](recordedResult(match, participants)), nil
	}

	rows, err := s.repo.GetConfirmations(ctx, db, matchID)
	if err != nil {
		return results.OperationResult[*FinalizeResult, error]{}, err
	}
	states := make([]ratingdomain.ConfirmationState, len(rows))
	for i, row := range rows {
		states[i] = row.State()
	}
	if err := ratingdomain.CanFinalize(match.Status, ratingdomain.Tally(states)); err != nil {
		return fail(err)
	}
	if match.WinningTeam == nil || !match.WinningTeam.Valid() {
		return fail(ratingdomain.NewPreconditionError("match %s has no winning team", matchID))
	}

	ids := make([]uuid.UUID, len(participants))
	for i, p := range participants {
		ids[i] = p.PlayerID
	}
	if err := s.repo.EnsurePlayers(ctx, db, ids); err != nil {
		return results.OperationResult[*FinalizeResult, error]{}, err
	}
	current, err := s.repo.GetRatingsForUpdate(ctx, db, ids)
	if err != nil {
		return results.OperationResult[*FinalizeResult, error]{}, err
	}

	in := ratingdomain.ProjectionInput{
		Category: match.Category,
		Winner:   *match.WinningTeam,
		Sets:     match.Sets,
	}
	for _, p := range participants {
		rated := ratingdomain.RatedPlayer{PlayerID: p.PlayerID, Rating: ratingdomain.DefaultRating}
		if r, ok := current[p.PlayerID]; ok {
			rated.Rating = r.Rating
		}
		if p.TeamNumber == ratingdomain.Team1 {
			in.Team1 = append(in.Team1, rated)
		} else {
			in.Team2 = append(in.Team2, rated)
		}
	}

	projection, err := ratingdomain.Project(in)
	if err != nil {
		return fail(err)
	}

	now := s.now()
	updates := make([]ratingdb.RatingUpdate, 0, len(projection.Players))
	record := ratingdb.FinalizeRecord{
		MatchID:     matchID,
		KFactor:     projection.KFactor,
		Margin:      projection.Margin,
		FinalizedAt: now,
	}
	for _, pp := range projection.Players {
		updates = append(updates, ratingdb.RatingUpdate{PlayerID: pp.PlayerID, Rating: pp.New})
		record.Participants = append(record.Participants, ratingdb.ParticipantResult{
			PlayerID:     pp.PlayerID,
			IsWinner:     pp.Team == projection.WinnerTeam,
			RatingBefore: pp.Old,
			RatingDelta:  pp.Delta,
		})
	}

	if err := s.repo.UpdateRatings(ctx, db, updates); err != nil {
		return results.OperationResult[*FinalizeResult, error]{}, err
	}
	if err := s.repo.FinalizeMatch(ctx, db, record); err != nil {
		return results.OperationResult[*FinalizeResult, error]{}, err
	}

	s.logger.InfoContext(ctx, "Match finalized",
		attr.ExtractCorrelationID(ctx),
		attr.MatchID(matchID),
		attr.Int("delta", projection.Delta),
		attr.Int("k_factor", projection.KFactor),
		attr.Float("margin", projection.Margin),
	)

	return results.SuccessResult[*FinalizeResult, error](&FinalizeResult{
		MatchID:     matchID,
		Status:      ratingdomain.StatusCompleted,
		Projection:  projection,
		FinalizedAt: now,
	}), nil
}

// recordedResult rebuilds the projection a completed match was rated with
// from its participant rows. Nothing is recomputed from current ratings.
func recordedResult(match *ratingdb.Match, participants []*ratingdb.Participant) *FinalizeResult {
	p := ratingdomain.Projection{
		Category: match.Category,
		Players:  make([]ratingdomain.PlayerProjection, 0, len(participants)),
	}
	if match.KFactor != nil {
		p.KFactor = *match.KFactor
	}
	if match.Margin != nil {
		p.Margin = *match.Margin
	}
	if match.WinningTeam != nil {
		p.WinnerTeam = *match.WinningTeam
	}

	var team1, team2 []float64
	for _, part := range participants {
		pp := ratingdomain.PlayerProjection{PlayerID: part.PlayerID, Team: part.TeamNumber}
		if part.RatingBefore != nil {
			pp.Old = *part.RatingBefore
		}
		if part.RatingDelta != nil {
			pp.Delta = *part.RatingDelta
		}
		pp.New = pp.Old + float64(pp.Delta)
		if part.TeamNumber == p.WinnerTeam && pp.Delta > p.Delta {
			p.Delta = pp.Delta
		}
		if part.TeamNumber == ratingdomain.Team1 {
			team1 = append(team1, pp.Old)
		} else {
			team2 = append(team2, pp.Old)
		}
		p.Players = append(p.Players, pp)
	}
	// Same player order as Project: team 1 first, then team 2.
	slices.SortStableFunc(p.Players, func(a, b ratingdomain.PlayerProjection) int {
		return int(a.Team) - int(b.Team)
	})

	p.Team1Average = ratingdomain.TeamRating(team1)
	p.Team2Average = ratingdomain.TeamRating(team2)
	p.Team1WinProbability = ratingdomain.ExpectedScore(p.Team1Average, p.Team2Average)
	p.Team2WinProbability = ratingdomain.ExpectedScore(p.Team2Average, p.Team1Average)

	res := &FinalizeResult{
		MatchID:    match.ID,
		Status:     match.Status,
		Projection: p,
		Noop:       true,
	}
	if match.FinalizedAt != nil {
		res.FinalizedAt = *match.FinalizedAt
	}
	return res
}
