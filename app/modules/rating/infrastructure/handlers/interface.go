package ratinghandlers

import (
	"context"

	ratingevents "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/events"
	"github.com/PadelPad/UnitedPadelApp-sub000/pkg/handlerwrapper"
)

// Handlers defines the interface for rating event handlers.
type Handlers interface {
	// HandleSubmitRequested records a proposed result.
	HandleSubmitRequested(ctx context.Context, payload *ratingevents.SubmitMatchRequestedPayloadV1) ([]handlerwrapper.Result, error)

	// HandleConfirmRequested and HandleRejectRequested record a participant's answer.
	HandleConfirmRequested(ctx context.Context, payload *ratingevents.ConfirmationRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleRejectRequested(ctx context.Context, payload *ratingevents.ConfirmationRequestedPayloadV1) ([]handlerwrapper.Result, error)

	// HandleFinalizeRequested rates a confirmed match.
	HandleFinalizeRequested(ctx context.Context, payload *ratingevents.FinalizeMatchRequestedPayloadV1) ([]handlerwrapper.Result, error)
}
