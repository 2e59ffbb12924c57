package ratinghandlers

import (
	"context"
	"errors"
	"log/slog"

	ratingservice "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/application"
	ratingdomain "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/domain"
	ratingevents "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/events"
	ratingdb "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/infrastructure/repositories"
	"github.com/PadelPad/UnitedPadelApp-sub000/pkg/handlerwrapper"
	"github.com/PadelPad/UnitedPadelApp-sub000/pkg/observability/attr"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// RatingHandlers implements the Handlers interface.
type RatingHandlers struct {
	service ratingservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewRatingHandlers creates a new RatingHandlers instance.
func NewRatingHandlers(
	service ratingservice.Service,
	logger *slog.Logger,
	tracer trace.Tracer,
) Handlers {
	return &RatingHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

// HandleSubmitRequested records a proposed result. The submitted fact is
// published by the service, so only a reply or a failure comes back here.
func (h *RatingHandlers) HandleSubmitRequested(ctx context.Context, payload *ratingevents.SubmitMatchRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "RatingHandlers.HandleSubmitRequested")
	defer span.End()

	res, err := h.service.SubmitMatch(ctx, ratingservice.SubmitMatchRequest{
		MatchType:   string(payload.MatchType),
		Category:    payload.Category,
		Sets:        payload.Sets,
		Team1:       payload.Team1,
		Team2:       payload.Team2,
		SubmitterID: payload.SubmitterID,
		PlayedAt:    payload.PlayedAt,
	})
	if err != nil {
		return h.failure(ctx, "submit", nil, err)
	}
	return reply(ctx, res), nil
}

func (h *RatingHandlers) HandleConfirmRequested(ctx context.Context, payload *ratingevents.ConfirmationRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "RatingHandlers.HandleConfirmRequested")
	defer span.End()

	r, err := h.service.Confirm(ctx, payload.MatchID, payload.UserID)
	if err != nil {
		return h.failure(ctx, "confirm", &payload.MatchID, err)
	}
	return reply(ctx, r), nil
}

func (h *RatingHandlers) HandleRejectRequested(ctx context.Context, payload *ratingevents.ConfirmationRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "RatingHandlers.HandleRejectRequested")
	defer span.End()

	r, err := h.service.Reject(ctx, payload.MatchID, payload.UserID)
	if err != nil {
		return h.failure(ctx, "reject", &payload.MatchID, err)
	}
	return reply(ctx, r), nil
}

func (h *RatingHandlers) HandleFinalizeRequested(ctx context.Context, payload *ratingevents.FinalizeMatchRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "RatingHandlers.HandleFinalizeRequested")
	defer span.End()

	res, err := h.service.Finalize(ctx, payload.MatchID)
	if err != nil {
		return h.failure(ctx, "finalize", &payload.MatchID, err)
	}
	return reply(ctx, res), nil
}

// failure turns a refused request into a MatchFailed fact. Store failures
// are returned instead so the router retries the message.
func (h *RatingHandlers) failure(ctx context.Context, op string, matchID *uuid.UUID, err error) ([]handlerwrapper.Result, error) {
	kind := failureKind(err)
	if kind == "" {
		h.logger.ErrorContext(ctx, "Rating request failed",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", op),
			attr.Error(err),
		)
		return nil, err
	}

	h.logger.WarnContext(ctx, "Rating request refused",
		attr.ExtractCorrelationID(ctx),
		attr.String("operation", op),
		attr.String("kind", kind),
		attr.Error(err),
	)

	failed := &ratingevents.MatchFailedPayloadV1{
		MatchID:   matchID,
		Operation: op,
		Kind:      kind,
		Reason:    err.Error(),
	}
	out := []handlerwrapper.Result{{Topic: ratingevents.MatchFailedV1, Payload: failed}}
	if rt, ok := ctx.Value(handlerwrapper.CtxKeyReplyTo).(string); ok && rt != "" {
		out = append(out, handlerwrapper.Result{Topic: rt, Payload: failed})
	}
	return out, nil
}

// failureKind classifies errors the caller has to fix. It returns "" for
// anything that may succeed on retry.
func failureKind(err error) string {
	switch {
	case errors.Is(err, ratingdomain.ErrValidation):
		return "validation"
	case errors.Is(err, ratingdomain.ErrPrecondition):
		return "precondition"
	case errors.Is(err, ratingdb.ErrNotFound):
		return "not_found"
	}
	return ""
}

// reply answers a request-reply caller. Fire-and-forget requests get nothing
// back because the service already published the outcome.
func reply(ctx context.Context, payload any) []handlerwrapper.Result {
	rt, ok := ctx.Value(handlerwrapper.CtxKeyReplyTo).(string)
	if !ok || rt == "" {
		return nil
	}
	return []handlerwrapper.Result{{Topic: rt, Payload: payload}}
}
