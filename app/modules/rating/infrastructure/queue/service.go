package ratingqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	ratingdomain "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/domain"
	"github.com/PadelPad/UnitedPadelApp-sub000/pkg/observability/attr"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/uptrace/bun"
)

// Metrics is the operation subset of the rating metrics.
type Metrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)
}

// QueueService interface defines the contract for background finalization.
type QueueService interface {
	// EnqueueFinalize schedules a Finalize for matchID. Duplicate enqueues are absorbed.
	EnqueueFinalize(ctx context.Context, matchID uuid.UUID) error
	// GetMatchJobs returns the finalize jobs of a match, newest first.
	GetMatchJobs(ctx context.Context, matchID uuid.UUID) ([]JobInfo, error)
	// HealthCheck verifies the queue service is healthy
	HealthCheck(ctx context.Context) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Ensure Service implements QueueService
var _ QueueService = (*Service)(nil)

const serviceLabel = "river"

// Service runs rating jobs on River.
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	logger  *slog.Logger
	db      *bun.DB
	metrics Metrics
}

// NewService creates a River client over its own pgx pool. River needs pgx,
// while the repositories stay on bun.
func NewService(ctx context.Context, bunDB *bun.DB, logger *slog.Logger, dsn string, metrics Metrics, finalizer Finalizer) (*Service, error) {
	ctxLogger := logger.With(
		attr.String("component", "river_queue"),
		attr.String("queue", QueueName),
	)

	start := time.Now()
	metrics.RecordOperationAttempt(ctx, "initialize_service", serviceLabel)

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_service", serviceLabel)
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_service", serviceLabel)
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		ctxLogger.Error("Failed to ping database for River", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", serviceLabel)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewFinalizeMatchWorker(ctxLogger, finalizer))

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			QueueName: {MaxWorkers: 10},
		},
		Workers: workers,
		Logger:  ctxLogger,
	})
	if err != nil {
		pool.Close()
		ctxLogger.Error("Failed to create River client", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", serviceLabel)
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	metrics.RecordOperationSuccess(ctx, "initialize_service", serviceLabel)
	metrics.RecordOperationDuration(ctx, "initialize_service", serviceLabel, time.Since(start))
	ctxLogger.Info("Rating queue service initialized")

	return &Service{
		client:  riverClient,
		pool:    pool,
		logger:  ctxLogger,
		db:      bunDB,
		metrics: metrics,
	}, nil
}

// Start starts the River queue service
func (s *Service) Start(ctx context.Context) error {
	s.metrics.RecordOperationAttempt(ctx, "start_service", serviceLabel)
	if err := s.client.Start(ctx); err != nil {
		s.logger.Error("Failed to start River client", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "start_service", serviceLabel)
		return fmt.Errorf("failed to start River client: %w", err)
	}
	s.metrics.RecordOperationSuccess(ctx, "start_service", serviceLabel)
	s.logger.Info("Rating queue service started")
	return nil
}

// Stop waits for running jobs and releases the pool.
func (s *Service) Stop(ctx context.Context) error {
	s.metrics.RecordOperationAttempt(ctx, "stop_service", serviceLabel)
	defer s.pool.Close()

	if err := s.client.Stop(ctx); err != nil {
		s.logger.Error("Failed to stop River client", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "stop_service", serviceLabel)
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	s.metrics.RecordOperationSuccess(ctx, "stop_service", serviceLabel)
	s.logger.Info("Rating queue service stopped")
	return nil
}

// EnqueueFinalize inserts a FinalizeMatchJob.
func (s *Service) EnqueueFinalize(ctx context.Context, matchID uuid.UUID) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "enqueue_finalize", serviceLabel)

	res, err := s.client.Insert(ctx, FinalizeMatchJob{MatchID: matchID}, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to enqueue finalize job",
			attr.ExtractCorrelationID(ctx),
			attr.MatchID(matchID),
			attr.Error(err),
		)
		s.metrics.RecordOperationFailure(ctx, "enqueue_finalize", serviceLabel)
		return fmt.Errorf("failed to enqueue finalize job: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "enqueue_finalize", serviceLabel)
	s.metrics.RecordOperationDuration(ctx, "enqueue_finalize", serviceLabel, time.Since(start))
	s.logger.InfoContext(ctx, "Finalize job enqueued",
		attr.ExtractCorrelationID(ctx),
		attr.MatchID(matchID),
		attr.Int64("job_id", res.Job.ID),
		attr.Bool("duplicate", res.UniqueSkippedAsDuplicate),
	)
	return nil
}

// GetMatchJobs lists the finalize jobs recorded for a match, newest first.
func (s *Service) GetMatchJobs(ctx context.Context, matchID uuid.UUID) ([]JobInfo, error) {
	type riverJobRow struct {
		ID          int64     `bun:"id"`
		Kind        string    `bun:"kind"`
		State       string    `bun:"state"`
		CreatedAt   time.Time `bun:"created_at"`
		Attempt     int16     `bun:"attempt"`
		MaxAttempts int16     `bun:"max_attempts"`
	}

	var jobs []riverJobRow
	err := s.db.NewSelect().
		Table("river_job").
		Column("id", "kind", "state", "created_at", "attempt", "max_attempts").
		Where("kind = ?", FinalizeMatchJob{}.Kind()).
		Where("args->>'match_id' = ?", matchID.String()).
		Order("created_at DESC").
		Scan(ctx, &jobs)
	if err != nil {
		return nil, &ratingdomain.PersistenceError{Op: "GetMatchJobs", Err: err}
	}

	out := make([]JobInfo, len(jobs))
	for i, j := range jobs {
		out[i] = JobInfo{
			ID:          j.ID,
			Kind:        j.Kind,
			MatchID:     matchID.String(),
			State:       j.State,
			CreatedAt:   j.CreatedAt.Format(time.RFC3339),
			Attempt:     int(j.Attempt),
			MaxAttempts: int(j.MaxAttempts),
		}
	}
	return out, nil
}

// HealthCheck verifies the queue service is healthy
func (s *Service) HealthCheck(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("river client is nil")
	}
	if err := s.pool.Ping(ctx); err != nil {
		s.logger.Error("Queue service health check failed", attr.Error(err))
		return fmt.Errorf("queue service health check failed: %w", err)
	}
	return nil
}
