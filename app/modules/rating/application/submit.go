package ratingservice

import (
	"context"
	"time"

	ratingdomain "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/domain"
	ratingevents "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/events"
	ratingdb "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/infrastructure/repositories"
	"github.com/PadelPad/UnitedPadelApp-sub000/pkg/observability/attr"
	"github.com/PadelPad/UnitedPadelApp-sub000/pkg/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// SubmitMatch validates a proposed result and records it as pending.
func (s *RatingService) SubmitMatch(ctx context.Context, req SubmitMatchRequest) (*SubmitResult, error) {
	submitTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*SubmitResult, error], error) {
		return s.submitMatchLogic(ctx, db, req)
	}

	res, err := unwrap[*SubmitResult](withTelemetry(s, ctx, "SubmitMatch", req.SubmitterID.String(), func(ctx context.Context) (results.OperationResult[*SubmitResult, error], error) {
		return runInTx(s, ctx, submitTx)
	}))
	if err != nil {
		return nil, err
	}

	s.publish(ctx, ratingevents.MatchSubmittedV1, ratingevents.MatchSubmittedPayloadV1{
		MatchID:     res.MatchID,
		MatchType:   res.MatchType,
		Category:    res.Category,
		Score:       res.Score,
		WinningTeam: res.WinningTeam,
		SubmitterID: res.SubmitterID,
		AwaitingIDs: res.AwaitingIDs,
	})
	return res, nil
}

func (s *RatingService) submitMatchLogic(ctx context.Context, db bun.IDB, req SubmitMatchRequest) (results.OperationResult[*SubmitResult, error], error) {
	fail := func(err error) (results.OperationResult[*SubmitResult, error], error) {
		return results.FailureResult[*SubmitResult, error](err), nil
	}

	matchType, err := ratingdomain.ParseMatchType(req.MatchType)
	if err != nil {
		return fail(err)
	}
	category, err := ratingdomain.ParseCategory(req.Category)
	if err != nil {
		return fail(err)
	}
	if err := ratingdomain.ValidateComposition(matchType, req.Team1, req.Team2, req.SubmitterID); err != nil {
		return fail(err)
	}
	if err := ratingdomain.ValidateSets(req.Sets); err != nil {
		return fail(err)
	}
	winner := ratingdomain.ComputeWinningTeam(req.Sets)
	if winner == nil {
		return fail(ratingdomain.NewValidationError("set wins are tied, the match has no winner"))
	}

	var playedAt *time.Time
	if req.PlayedAt != "" {
		t, err := parseHumanTime(req.PlayedAt, s.now())
		if err != nil {
			return fail(ratingdomain.NewValidationError("played_at: %v", err))
		}
		if t.After(s.now()) {
			return fail(ratingdomain.NewValidationError("played_at %s is in the future", t.Format(time.RFC3339)))
		}
		playedAt = &t
	}

	now := s.now()
	match := &ratingdb.Match{
		ID:          uuid.New(),
		MatchType:   matchType,
		Category:    category,
		Sets:        req.Sets,
		Score:       ratingdomain.FormatScore(req.Sets),
		Status:      ratingdomain.StatusPending,
		WinningTeam: winner,
		SubmittedBy: req.SubmitterID,
		PlayedAt:    playedAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var (
		all          []uuid.UUID
		participants []*ratingdb.Participant
		awaiting     []uuid.UUID
		confirms     []*ratingdb.Confirmation
	)
	add := func(team ratingdomain.TeamNumber, ids []uuid.UUID) {
		for _, id := range ids {
			all = append(all, id)
			participants = append(participants, &ratingdb.Participant{MatchID: match.ID, PlayerID: id, TeamNumber: team})
			if id != req.SubmitterID {
				awaiting = append(awaiting, id)
				confirms = append(confirms, &ratingdb.Confirmation{MatchID: match.ID, UserID: id, CreatedAt: now})
			}
		}
	}
	add(ratingdomain.Team1, req.Team1)
	add(ratingdomain.Team2, req.Team2)

	if err := s.repo.EnsurePlayers(ctx, db, all); err != nil {
		return results.OperationResult[*SubmitResult, error]{}, err
	}
	if err := s.repo.CreateMatch(ctx, db, match, participants); err != nil {
		return results.OperationResult[*SubmitResult, error]{}, err
	}
	if err := s.repo.CreateConfirmations(ctx, db, confirms); err != nil {
		return results.OperationResult[*SubmitResult, error]{}, err
	}

	s.logger.InfoContext(ctx, "Match submitted",
		attr.ExtractCorrelationID(ctx),
		attr.MatchID(match.ID),
		attr.String("score", match.Score),
		attr.Int("awaiting", len(awaiting)),
	)

	return results.SuccessResult[*SubmitResult, error](&SubmitResult{
		MatchID:     match.ID,
		MatchType:   matchType,
		Category:    category,
		Status:      match.Status,
		Score:       match.Score,
		WinningTeam: *winner,
		SubmitterID: req.SubmitterID,
		AwaitingIDs: awaiting,
	}), nil
}
