package ratingservice

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/application/parsers"
	ratingdomain "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/domain"
	ratingdb "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/infrastructure/repositories"
	"github.com/PadelPad/UnitedPadelApp-sub000/pkg/observability/attr"
	ratingmetrics "github.com/PadelPad/UnitedPadelApp-sub000/pkg/observability/metrics/rating"
	"github.com/PadelPad/UnitedPadelApp-sub000/pkg/results"
	"github.com/jonboulle/clockwork"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "RatingService"

// defaultMomentumWindow applies when a momentum query names no start.
const defaultMomentumWindow = 90 * 24 * time.Hour

// RatingService implements the Service interface.
type RatingService struct {
	repo       ratingdb.Repository
	logger     *slog.Logger
	metrics    ratingmetrics.RatingMetrics
	tracer     trace.Tracer
	db         *bun.DB
	clock      clockwork.Clock
	publisher  EventPublisher
	dispatcher FinalizeDispatcher
	parsers    parsers.ParserFactory
}

// NewRatingService creates a new RatingService. publisher and clock may be nil.
func NewRatingService(
	repo ratingdb.Repository,
	logger *slog.Logger,
	metrics ratingmetrics.RatingMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	publisher EventPublisher,
	clock clockwork.Clock,
) *RatingService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = ratingmetrics.NewNoop()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &RatingService{
		repo:      repo,
		logger:    logger,
		metrics:   metrics,
		tracer:    tracer,
		db:        db,
		clock:     clock,
		publisher: publisher,
		parsers:   parsers.NewFactory(),
	}
}

// SetFinalizeDispatcher wires the background finalizer. The queue worker
// itself calls Finalize, so it is attached after both exist.
func (s *RatingService) SetFinalizeDispatcher(d FinalizeDispatcher) {
	s.dispatcher = d
}

func (s *RatingService) now() time.Time {
	return s.clock.Now().UTC()
}

// publish sends a fact after commit. The write already happened, so a
// failure here is logged rather than returned.
func (s *RatingService) publish(ctx context.Context, topic string, payload any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, topic, payload); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish event",
			attr.ExtractCorrelationID(ctx),
			attr.String("topic", topic),
			attr.Error(err),
		)
	}
}

// unwrap converts a wrapped operation result to the public (value, error) shape.
func unwrap[S any](result results.OperationResult[S, error], err error) (S, error) {
	var zero S
	if err != nil {
		return zero, err
	}
	if result.IsFailure() {
		return zero, *result.Failure
	}
	if !result.IsSuccess() {
		return zero, fmt.Errorf("operation returned no result")
	}
	return *result.Success, nil
}

// -----------------------------------------------------------------------------
// Generic Helpers (Defined as functions because methods cannot have type params)
// -----------------------------------------------------------------------------

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
// Infrastructure errors come back as *ratingdomain.PersistenceError.
func withTelemetry[S any, F any](
	s *RatingService,
	ctx context.Context,
	operationName string,
	identifier string,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName, serviceName)

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, serviceName, time.Since(startTime))
	}()

	s.logger.InfoContext(ctx, "Operation triggered", attr.ExtractCorrelationID(ctx), attr.String("operation", operationName))

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.String("identifier", identifier),
				attr.Error(err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)

	if err != nil {
		wrappedErr := &ratingdomain.PersistenceError{Op: operationName, Err: err}
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Error(wrappedErr),
		)
		s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Any("failure_payload", *result.Failure),
		)
	}

	if result.IsSuccess() {
		s.logger.InfoContext(ctx, "Operation completed successfully",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
		)
	}

	s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	return result, nil
}

// runInTx ensures the operation runs within a transaction. A domain failure
// commits nothing because the logic returns before its first write.
func runInTx[S any, F any](
	s *RatingService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (results.OperationResult[S, F], error),
) (results.OperationResult[S, F], error) {
	if s.db == nil {
		return fn(ctx, nil)
	}

	var result results.OperationResult[S, F]
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		return txErr
	})
	return result, err
}
