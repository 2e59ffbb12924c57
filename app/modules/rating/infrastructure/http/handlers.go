package ratinghttp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	authhandlers "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/auth/infrastructure/handlers"
	ratingservice "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/application"
	ratingdomain "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/domain"
	ratingqueue "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/infrastructure/queue"
	ratingdb "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/infrastructure/repositories"
	"github.com/PadelPad/UnitedPadelApp-sub000/pkg/observability/attr"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	// maxImportBytes bounds an uploaded match sheet.
	maxImportBytes = 10 << 20
	// retryAfterSeconds is sent with 503 responses when the store is unavailable.
	retryAfterSeconds = "5"
)

// JobLister reports the background finalize jobs of a match.
type JobLister interface {
	GetMatchJobs(ctx context.Context, matchID uuid.UUID) ([]ratingqueue.JobInfo, error)
}

// Handlers serves the rating REST API.
type Handlers struct {
	service ratingservice.Service
	jobs    JobLister
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewHandlers creates the REST handlers.
func NewHandlers(service ratingservice.Service, logger *slog.Logger, tracer trace.Tracer) *Handlers {
	return &Handlers{service: service, logger: logger, tracer: tracer}
}

// WithJobs enables the organizer job listing route.
func (h *Handlers) WithJobs(jobs JobLister) *Handlers {
	h.jobs = jobs
	return h
}

// Guards are the auth middlewares the routes are mounted behind.
type Guards struct {
	Authenticated func(http.Handler) http.Handler
	Recorders     func(http.Handler) http.Handler
	Organizers    func(http.Handler) http.Handler
}

// Mount registers the API on r. feed serves the websocket status stream and
// may be nil.
func (h *Handlers) Mount(r chi.Router, g Guards, feed http.Handler) {
	r.Get("/k-factors", h.KFactors)

	r.Group(func(r chi.Router) {
		r.Use(g.Authenticated)

		r.Post("/projections", h.Project)
		r.Get("/matches/{matchID}", h.GetMatch)
		r.Get("/players/{playerID}/momentum", h.Momentum)
		r.Get("/players/{playerID}/momentum.png", h.MomentumChart)
		if feed != nil {
			r.Handle("/ws/matches/{matchID}", feed)
		}

		r.Group(func(r chi.Router) {
			r.Use(g.Recorders)
			r.Post("/matches", h.Submit)
			r.Post("/matches/{matchID}/confirm", h.Confirm)
			r.Post("/matches/{matchID}/reject", h.Reject)
			r.Post("/matches/{matchID}/finalize", h.Finalize)
		})

		r.Group(func(r chi.Router) {
			r.Use(g.Organizers)
			r.Post("/matches/import", h.Import)
			if h.jobs != nil {
				r.Get("/matches/{matchID}/jobs", h.MatchJobs)
			}
		})
	})
}

// KFactors returns the category weighting table.
func (h *Handlers) KFactors(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.KFactorTable())
}

// Project previews a result.
func (h *Handlers) Project(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RatingHTTP.Project")
	defer span.End()

	var req ratingservice.ProjectionRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := h.service.ProjectRating(ctx, req)
	if err != nil {
		h.fail(w, r, "project", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Submit records a match for the authenticated player.
func (h *Handlers) Submit(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RatingHTTP.Submit")
	defer span.End()

	claims, ok := authhandlers.ClaimsFromContext(ctx)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing credentials")
		return
	}

	var req ratingservice.SubmitMatchRequest
	if !decode(w, r, &req) {
		return
	}
	req.SubmitterID = claims.PlayerID

	res, err := h.service.SubmitMatch(ctx, req)
	if err != nil {
		h.fail(w, r, "submit", err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handlers) Confirm(w http.ResponseWriter, r *http.Request) {
	h.answer(w, r, "confirm", h.service.Confirm)
}

func (h *Handlers) Reject(w http.ResponseWriter, r *http.Request) {
	h.answer(w, r, "reject", h.service.Reject)
}

// answer records the authenticated player's confirm or reject.
func (h *Handlers) answer(
	w http.ResponseWriter,
	r *http.Request,
	op string,
	fn func(ctx context.Context, matchID, userID uuid.UUID) (*ratingservice.Readiness, error),
) {
	ctx, span := h.tracer.Start(r.Context(), "RatingHTTP."+op)
	defer span.End()

	matchID, ok := uuidParam(w, r, "matchID")
	if !ok {
		return
	}
	claims, ok := authhandlers.ClaimsFromContext(ctx)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing credentials")
		return
	}
	span.SetAttributes(attribute.String("match_id", matchID.String()))

	res, err := fn(ctx, matchID, claims.PlayerID)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Finalize rates a confirmed match. Repeating it returns the recorded result.
func (h *Handlers) Finalize(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RatingHTTP.Finalize")
	defer span.End()

	matchID, ok := uuidParam(w, r, "matchID")
	if !ok {
		return
	}
	span.SetAttributes(attribute.String("match_id", matchID.String()))

	res, err := h.service.Finalize(ctx, matchID)
	if err != nil {
		h.fail(w, r, "finalize", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RatingHTTP.GetMatch")
	defer span.End()

	matchID, ok := uuidParam(w, r, "matchID")
	if !ok {
		return
	}
	m, err := h.service.GetMatch(ctx, matchID)
	if err != nil {
		h.fail(w, r, "get_match", err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// MatchJobs lists the finalize jobs River holds for a match, newest first.
func (h *Handlers) MatchJobs(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RatingHTTP.MatchJobs")
	defer span.End()

	matchID, ok := uuidParam(w, r, "matchID")
	if !ok {
		return
	}
	span.SetAttributes(attribute.String("match_id", matchID.String()))

	jobs, err := h.jobs.GetMatchJobs(ctx, matchID)
	if err != nil {
		h.fail(w, r, "match_jobs", err)
		return
	}
	if jobs == nil {
		jobs = []ratingqueue.JobInfo{}
	}
	writeJSON(w, http.StatusOK, jobs)
}

// Momentum returns a player's rating history since the "since" query value.
func (h *Handlers) Momentum(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RatingHTTP.Momentum")
	defer span.End()

	playerID, ok := uuidParam(w, r, "playerID")
	if !ok {
		return
	}
	m, err := h.service.PlayerMomentum(ctx, playerID, r.URL.Query().Get("since"))
	if err != nil {
		h.fail(w, r, "momentum", err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *Handlers) MomentumChart(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RatingHTTP.MomentumChart")
	defer span.End()

	playerID, ok := uuidParam(w, r, "playerID")
	if !ok {
		return
	}
	png, err := h.service.MomentumChart(ctx, playerID, r.URL.Query().Get("since"))
	if err != nil {
		h.fail(w, r, "momentum_chart", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// Import submits every row of an uploaded match sheet. The body is the raw
// file; its name comes from the filename query value or X-Filename header
// and selects the parser.
func (h *Handlers) Import(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RatingHTTP.Import")
	defer span.End()

	claims, ok := authhandlers.ClaimsFromContext(ctx)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing credentials")
		return
	}

	filename := r.URL.Query().Get("filename")
	if filename == "" {
		filename = r.Header.Get("X-Filename")
	}
	if filename == "" {
		filename = "matches.xlsx"
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "validation", "match sheet too large")
			return
		}
		writeError(w, http.StatusBadRequest, "validation", "could not read body")
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "validation", "empty body")
		return
	}

	report, err := h.service.ImportMatches(ctx, filename, data, claims.PlayerID)
	if err != nil {
		h.fail(w, r, "import", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// fail maps a service error to a status code.
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, ratingdomain.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, "validation", err.Error())
	case errors.Is(err, ratingdomain.ErrPrecondition):
		writeError(w, http.StatusConflict, "precondition", err.Error())
	case errors.Is(err, ratingdb.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case ratingdomain.IsRetryable(err):
		h.logger.ErrorContext(r.Context(), "Rating request failed",
			attr.String("operation", op),
			attr.Error(err),
		)
		w.Header().Set("Retry-After", retryAfterSeconds)
		writeError(w, http.StatusServiceUnavailable, "unavailable", "temporarily unavailable, retry later")
	default:
		h.logger.ErrorContext(r.Context(), "Unexpected rating error",
			attr.String("operation", op),
			attr.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
