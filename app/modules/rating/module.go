package rating

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	ratingservice "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/application"
	ratingevents "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/events"
	ratinghandlers "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/infrastructure/handlers"
	ratinghttp "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/infrastructure/http"
	ratingqueue "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/infrastructure/queue"
	ratingrealtime "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/infrastructure/realtime"
	ratingdb "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/infrastructure/repositories"
	ratingrouter "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/infrastructure/router"
	ratingmetrics "github.com/PadelPad/UnitedPadelApp-sub000/pkg/observability/metrics/rating"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// EventBus is what the module needs from the event bus.
type EventBus interface {
	message.Publisher
	message.Subscriber
	// Fanout delivers every message to every instance.
	Fanout() message.Subscriber
}

// Options carries the module's settings.
type Options struct {
	DSN            string
	AllowedOrigins []string
	Registry       *prometheus.Registry
}

// Module represents the rating module.
type Module struct {
	RatingService ratingservice.Service
	RatingRouter  *ratingrouter.RatingRouter
	Queue         *ratingqueue.Service

	hub        *ratingrealtime.Hub
	api        *ratinghttp.Handlers
	logger     *slog.Logger
	cancelFunc context.CancelFunc
}

// NewRatingModule creates and initializes a new rating module.
func NewRatingModule(
	ctx context.Context,
	opts Options,
	logger *slog.Logger,
	tracer trace.Tracer,
	eventBus EventBus,
	router *message.Router,
	routerCtx context.Context,
	db *bun.DB,
) (*Module, error) {
	logger.InfoContext(ctx, "rating.NewRatingModule initializing")

	// 1. Metrics
	var metrics ratingmetrics.RatingMetrics = ratingmetrics.NewNoop()
	if opts.Registry != nil {
		metrics = ratingmetrics.NewPrometheus(opts.Registry)
	}

	// 2. Repository and service
	repo := ratingdb.NewRepository(db)
	service := ratingservice.NewRatingService(
		repo,
		logger,
		metrics,
		tracer,
		db,
		ratingevents.NewPublisher(eventBus),
		clockwork.NewRealClock(),
	)

	// 3. Finalize queue. The service enqueues ready matches on it.
	queue, err := ratingqueue.NewService(ctx, db, logger, opts.DSN, metrics, service)
	if err != nil {
		return nil, fmt.Errorf("failed to create rating queue: %w", err)
	}
	service.SetFinalizeDispatcher(queue)

	// 4. Event handlers and router
	handlers := ratinghandlers.NewRatingHandlers(service, logger, tracer)
	ratingRouter := ratingrouter.NewRatingRouter(
		logger,
		router,
		eventBus,
		eventBus,
		tracer,
		metrics,
		opts.Registry,
	)
	if err := ratingRouter.Configure(routerCtx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure rating router: %w", err)
	}

	// 5. Realtime feed
	hub := ratingrealtime.NewHub(logger, opts.AllowedOrigins)
	ratingrealtime.NewRelay(hub, logger).Register(router, eventBus.Fanout())

	return &Module{
		RatingService: service,
		RatingRouter:  ratingRouter,
		Queue:         queue,
		hub:           hub,
		api:           ratinghttp.NewHandlers(service, logger, tracer).WithJobs(queue),
		logger:        logger,
	}, nil
}

// Mount registers the REST API and the websocket feed on r.
func (m *Module) Mount(r chi.Router, guards ratinghttp.Guards) {
	m.api.Mount(r, guards, m.hub)
}

// HealthCheck reports whether background finalization can run.
func (m *Module) HealthCheck(ctx context.Context) error {
	return m.Queue.HealthCheck(ctx)
}

// Run starts the finalize queue and blocks until ctx is done.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.InfoContext(ctx, "Starting rating module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	if err := m.Queue.Start(ctx); err != nil {
		m.logger.ErrorContext(ctx, "Rating queue failed to start", slog.Any("error", err))
		return
	}

	<-ctx.Done()
	m.logger.InfoContext(ctx, "Rating module goroutine stopped")
}

// Close shuts down the rating module.
func (m *Module) Close() error {
	m.logger.Info("Stopping rating module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	var errs []error

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if m.Queue != nil {
		if err := m.Queue.Stop(stopCtx); err != nil {
			errs = append(errs, fmt.Errorf("error stopping rating queue: %w", err))
		}
	}

	if m.hub != nil {
		m.hub.Close()
	}

	if m.RatingRouter != nil {
		if err := m.RatingRouter.Close(); err != nil {
			m.logger.Error("Error closing RatingRouter from module", "error", err)
			errs = append(errs, fmt.Errorf("error closing RatingRouter: %w", err))
		}
	}

	m.logger.Info("Rating module stopped")
	return errors.Join(errs...)
}
