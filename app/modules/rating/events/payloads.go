package ratingevents

import (
	"time"

	ratingdomain "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/domain"
	"github.com/google/uuid"
)

// SubmitMatchRequestedPayloadV1 asks the service to record a new match.
type SubmitMatchRequestedPayloadV1 struct {
	MatchType   ratingdomain.MatchType  `json:"match_type"`
	Category    string                  `json:"category"`
	Sets        []ratingdomain.SetScore `json:"sets"`
	Team1       []uuid.UUID             `json:"team1"`
	Team2       []uuid.UUID             `json:"team2"`
	SubmitterID uuid.UUID               `json:"submitter_id"`
	PlayedAt    string                  `json:"played_at,omitempty"`
}

// ConfirmationRequestedPayloadV1 carries a confirm or reject from one participant.
type ConfirmationRequestedPayloadV1 struct {
	MatchID uuid.UUID `json:"match_id"`
	UserID  uuid.UUID `json:"user_id"`
}

// FinalizeMatchRequestedPayloadV1 asks for a match to be rated.
type FinalizeMatchRequestedPayloadV1 struct {
	MatchID uuid.UUID `json:"match_id"`
}

// MatchSubmittedPayloadV1 announces a new pending match.
type MatchSubmittedPayloadV1 struct {
	MatchID     uuid.UUID               `json:"match_id"`
	MatchType   ratingdomain.MatchType  `json:"match_type"`
	Category    ratingdomain.Category   `json:"category"`
	Score       string                  `json:"score"`
	WinningTeam ratingdomain.TeamNumber `json:"winning_team"`
	SubmitterID uuid.UUID               `json:"submitter_id"`
	AwaitingIDs []uuid.UUID             `json:"awaiting_ids"`
}

// MatchConfirmationUpdatedPayloadV1 reports readiness after a confirm or reject.
type MatchConfirmationUpdatedPayloadV1 struct {
	MatchID         uuid.UUID           `json:"match_id"`
	UserID          uuid.UUID           `json:"user_id"`
	Status          ratingdomain.Status `json:"status"`
	Confirmed       int                 `json:"confirmed"`
	Rejected        int                 `json:"rejected"`
	Pending         int                 `json:"pending"`
	ReadyToFinalize bool                `json:"ready_to_finalize"`
}

// MatchReadyPayloadV1 announces that every participant confirmed.
type MatchReadyPayloadV1 struct {
	MatchID uuid.UUID `json:"match_id"`
}

// MatchDisputedPayloadV1 announces a rejection.
type MatchDisputedPayloadV1 struct {
	MatchID    uuid.UUID `json:"match_id"`
	RejectedBy uuid.UUID `json:"rejected_by"`
}

// MatchFinalizedPayloadV1 carries the applied projection.
type MatchFinalizedPayloadV1 struct {
	MatchID     uuid.UUID               `json:"match_id"`
	FinalizedAt time.Time               `json:"finalized_at"`
	Projection  ratingdomain.Projection `json:"projection"`
}

// MatchFailedPayloadV1 reports a request the service refused.
type MatchFailedPayloadV1 struct {
	MatchID   *uuid.UUID `json:"match_id,omitempty"`
	Operation string     `json:"operation"`
	Kind      string     `json:"kind"` // validation, precondition or not_found
	Reason    string     `json:"reason"`
}
