package ratingservice

import (
	"context"
	"errors"
	"fmt"

	ratingdomain "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/domain"
	ratingevents "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/events"
	ratingdb "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/infrastructure/repositories"
	"github.com/PadelPad/UnitedPadelApp-sub000/pkg/observability/attr"
	"github.com/PadelPad/UnitedPadelApp-sub000/pkg/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Confirm records that userID agrees with the submitted result.
func (s *RatingService) Confirm(ctx context.Context, matchID, userID uuid.UUID) (*Readiness, error) {
	return s.respond(ctx, "Confirm", matchID, userID, true)
}

// Reject records that userID disputes the submitted result.
func (s *RatingService) Reject(ctx context.Context, matchID, userID uuid.UUID) (*Readiness, error) {
	return s.respond(ctx, "Reject", matchID, userID, false)
}

func (s *RatingService) respond(ctx context.Context, op string, matchID, userID uuid.UUID, accept bool) (*Readiness, error) {
	respondTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*Readiness, error], error) {
		return s.respondLogic(ctx, db, matchID, userID, accept)
	}

	r, err := unwrap[*Readiness](withTelemetry(s, ctx, op, matchID.String(), func(ctx context.Context) (results.OperationResult[*Readiness, error], error) {
		return runInTx(s, ctx, respondTx)
	}))
	if err != nil {
		return nil, err
	}

	s.publish(ctx, ratingevents.MatchConfirmationUpdatedV1, ratingevents.MatchConfirmationUpdatedPayloadV1{
		MatchID:         r.MatchID,
		UserID:          userID,
		Status:          r.Status,
		Confirmed:       r.Confirmed,
		Rejected:        r.Rejected,
		Pending:         r.Pending,
		ReadyToFinalize: r.ReadyToFinalize,
	})

	switch {
	case r.StatusChanged && r.Status == ratingdomain.StatusDisputed:
		s.publish(ctx, ratingevents.MatchDisputedV1, ratingevents.MatchDisputedPayloadV1{MatchID: matchID, RejectedBy: userID})
	case r.ReadyToFinalize:
		if r.StatusChanged {
			s.publish(ctx, ratingevents.MatchReadyV1, ratingevents.MatchReadyPayloadV1{MatchID: matchID})
		}
		s.dispatchFinalize(ctx, matchID)
	}
	return r, nil
}

// dispatchFinalize enqueues a background Finalize. Finalize stays callable
// directly, so a failed enqueue only delays rating.
func (s *RatingService) dispatchFinalize(ctx context.Context, matchID uuid.UUID) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.EnqueueFinalize(ctx, matchID); err != nil {
		s.logger.WarnContext(ctx, "Failed to enqueue finalize job",
			attr.ExtractCorrelationID(ctx),
			attr.MatchID(matchID),
			attr.Error(err),
		)
	}
}

func (s *RatingService) respondLogic(ctx context.Context, db bun.IDB, matchID, userID uuid.UUID, accept bool) (results.OperationResult[*Readiness, error], error) {
	fail := func(err error) (results.OperationResult[*Readiness, error], error) {
		return results.FailureResult[*Readiness, error](err), nil
	}

	// The match row lock orders this answer against a concurrent Finalize.
	match, err := s.repo.GetMatchForUpdate(ctx, db, matchID)
	if err != nil {
		if errors.Is(err, ratingdb.ErrNotFound) {
			return fail(fmt.Errorf("match %s: %w", matchID, ratingdb.ErrNotFound))
		}
		return results.OperationResult[*Readiness, error]{}, err
	}
	if match.Status.IsTerminal() {
		return fail(ratingdomain.NewPreconditionError("match %s is already %s", matchID, match.Status))
	}

	rows, err := s.repo.GetConfirmations(ctx, db, matchID)
	if err != nil {
		return results.OperationResult[*Readiness, error]{}, err
	}
	var mine *ratingdb.Confirmation
	for _, row := range rows {
		if row.UserID == userID {
			mine = row
			break
		}
	}
	if mine == nil {
		return fail(ratingdomain.NewPreconditionError("user %s is not awaited on match %s", userID, matchID))
	}

	now := s.now()
	mine.Confirmed = accept
	mine.Rejected = !accept
	mine.RespondedAt = &now
	if err := s.repo.UpsertConfirmation(ctx, db, mine); err != nil {
		return results.OperationResult[*Readiness, error]{}, err
	}

	states := make([]ratingdomain.ConfirmationState, len(rows))
	for i, row := range rows {
		states[i] = row.State()
	}
	tally := ratingdomain.Tally(states)
	next := ratingdomain.ResolveStatus(match.Status, tally)

	changed := next != match.Status
	if changed {
		if err := s.repo.UpdateMatchStatus(ctx, db, matchID, next); err != nil {
			return results.OperationResult[*Readiness, error]{}, err
		}
		s.logger.InfoContext(ctx, "Match status changed",
			attr.ExtractCorrelationID(ctx),
			attr.MatchID(matchID),
			attr.String("from", string(match.Status)),
			attr.String("to", string(next)),
		)
	}

	return results.SuccessResult[*Readiness, error](&Readiness{
		MatchID:         matchID,
		Status:          next,
		Confirmed:       tally.Confirmed,
		Rejected:        tally.Rejected,
		Pending:         tally.Pending,
		ReadyToFinalize: tally.Ready(),
		StatusChanged:   changed,
	}), nil
}
