package ratingqueue

import (
	"context"
	"errors"
	"log/slog"
	"time"

	ratingservice "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/application"
	ratingdomain "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/domain"
	ratingdb "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/infrastructure/repositories"
	"github.com/PadelPad/UnitedPadelApp-sub000/pkg/observability/attr"
	"github.com/google/uuid"
	"github.com/riverqueue/river"
)

// Finalizer is the part of the rating service the worker drives.
type Finalizer interface {
	Finalize(ctx context.Context, matchID uuid.UUID) (*ratingservice.FinalizeResult, error)
}

// FinalizeMatchWorker runs FinalizeMatchJob.
type FinalizeMatchWorker struct {
	river.WorkerDefaults[FinalizeMatchJob]

	finalizer Finalizer
	logger    *slog.Logger
}

// NewFinalizeMatchWorker creates a new FinalizeMatchWorker.
func NewFinalizeMatchWorker(logger *slog.Logger, finalizer Finalizer) *FinalizeMatchWorker {
	return &FinalizeMatchWorker{
		finalizer: finalizer,
		logger:    logger,
	}
}

// Timeout bounds one attempt.
func (w *FinalizeMatchWorker) Timeout(*river.Job[FinalizeMatchJob]) time.Duration {
	return 30 * time.Second
}

// Work finalizes the match. Refusals cancel the job since retrying cannot
// change the outcome; store failures are returned for River to retry.
func (w *FinalizeMatchWorker) Work(ctx context.Context, job *river.Job[FinalizeMatchJob]) error {
	matchID := job.Args.MatchID

	res, err := w.finalizer.Finalize(ctx, matchID)
	if err != nil {
		if isPermanent(err) {
			w.logger.WarnContext(ctx, "Finalize job cancelled",
				attr.MatchID(matchID),
				attr.Int64("job_id", job.ID),
				attr.Error(err),
			)
			return river.JobCancel(err)
		}
		w.logger.ErrorContext(ctx, "Finalize job failed",
			attr.MatchID(matchID),
			attr.Int64("job_id", job.ID),
			attr.Int("attempt", job.Attempt),
			attr.Error(err),
		)
		return err
	}

	w.logger.InfoContext(ctx, "Finalize job completed",
		attr.MatchID(matchID),
		attr.Int64("job_id", job.ID),
		attr.Bool("noop", res.Noop),
	)
	return nil
}

func isPermanent(err error) bool {
	return errors.Is(err, ratingdomain.ErrPrecondition) ||
		errors.Is(err, ratingdomain.ErrValidation) ||
		errors.Is(err, ratingdb.ErrNotFound)
}
