package ratingservice

import (
	"context"

	ratingdomain "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/domain"
	"github.com/google/uuid"
)

// Service is the rating engine as seen by transports.
type Service interface {
	// KFactorTable returns the category weighting shown before submission.
	KFactorTable() []ratingdomain.KFactorEntry

	// ProjectRating previews a result. It never writes.
	ProjectRating(ctx context.Context, req ProjectionRequest) (ratingdomain.Projection, error)

	// SubmitMatch records a pending match and the confirmations it awaits.
	SubmitMatch(ctx context.Context, req SubmitMatchRequest) (*SubmitResult, error)

	// Confirm and Reject record one participant's answer.
	Confirm(ctx context.Context, matchID, userID uuid.UUID) (*Readiness, error)
	Reject(ctx context.Context, matchID, userID uuid.UUID) (*Readiness, error)

	// Finalize applies ratings once. Later calls return the recorded result with Noop set.
	Finalize(ctx context.Context, matchID uuid.UUID) (*FinalizeResult, error)

	GetMatch(ctx context.Context, matchID uuid.UUID) (*MatchView, error)
	PlayerMomentum(ctx context.Context, playerID uuid.UUID, since string) (*Momentum, error)
	MomentumChart(ctx context.Context, playerID uuid.UUID, since string) ([]byte, error)

	// ImportMatches submits every readable row of a match sheet.
	ImportMatches(ctx context.Context, filename string, data []byte, importerID uuid.UUID) (*ImportReport, error)
}

// EventPublisher sends facts after a transaction commits.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}

// FinalizeDispatcher schedules a background Finalize for a ready match.
type FinalizeDispatcher interface {
	EnqueueFinalize(ctx context.Context, matchID uuid.UUID) error
}
