package ratingrouter

import (
	"context"
	"log/slog"
	"os"

	ratingevents "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/events"
	ratinghandlers "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/infrastructure/handlers"
	"github.com/PadelPad/UnitedPadelApp-sub000/pkg/handlerwrapper"
	ratingmetrics "github.com/PadelPad/UnitedPadelApp-sub000/pkg/observability/metrics/rating"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

const (
	TestEnvironmentFlag  = "APP_ENV"
	TestEnvironmentValue = "test"
)

// ModuleMetadataKey tags every message a rating handler touches.
const ModuleMetadataKey = "module"

// RatingRouter handles Watermill handler registration for rating requests.
type RatingRouter struct {
	logger         *slog.Logger
	router         *message.Router
	subscriber     message.Subscriber
	publisher      message.Publisher
	tracer         trace.Tracer
	metrics        ratingmetrics.RatingMetrics
	metricsBuilder *metrics.PrometheusMetricsBuilder
}

// NewRatingRouter creates a new RatingRouter. Router metrics are skipped
// without a registry and in the test environment.
func NewRatingRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber message.Subscriber,
	publisher message.Publisher,
	tracer trace.Tracer,
	handlerMetrics ratingmetrics.RatingMetrics,
	prometheusRegistry *prometheus.Registry,
) *RatingRouter {
	inTestEnv := os.Getenv(TestEnvironmentFlag) == TestEnvironmentValue

	var metricsBuilder *metrics.PrometheusMetricsBuilder
	if prometheusRegistry != nil && !inTestEnv {
		builder := metrics.NewPrometheusMetricsBuilder(prometheusRegistry, "", "")
		metricsBuilder = &builder
	}
	if handlerMetrics == nil {
		handlerMetrics = ratingmetrics.NewNoop()
	}
	return &RatingRouter{
		logger:         logger,
		router:         router,
		subscriber:     subscriber,
		publisher:      publisher,
		tracer:         tracer,
		metrics:        handlerMetrics,
		metricsBuilder: metricsBuilder,
	}
}

// Configure sets up middleware and registers the handlers.
func (r *RatingRouter) Configure(_ context.Context, handlers ratinghandlers.Handlers) error {
	if r.metricsBuilder != nil {
		r.logger.Info("Adding Prometheus router metrics middleware")
		r.metricsBuilder.AddPrometheusRouterMetrics(r.router)
	} else {
		r.logger.Info("Skipping Prometheus router metrics middleware - either in test environment or metrics not configured")
	}

	r.router.AddMiddleware(
		middleware.CorrelationID,
		moduleMetadata("rating"),
		middleware.Recoverer,
		middleware.Retry{MaxRetries: 3}.Middleware,
	)

	r.registerHandlers(handlers)
	return nil
}

// handlerDeps bundles dependencies for handler registration.
type handlerDeps struct {
	router     *message.Router
	subscriber message.Subscriber
	publisher  message.Publisher
	logger     *slog.Logger
	tracer     trace.Tracer
	metrics    ratingmetrics.RatingMetrics
}

// registerHandlers wires request subjects to handler methods.
func (r *RatingRouter) registerHandlers(handlers ratinghandlers.Handlers) {
	deps := handlerDeps{
		router:     r.router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
		metrics:    r.metrics,
	}

	r.logger.Info("Registering rating module handlers",
		slog.String("submit_subject", ratingevents.MatchSubmitRequestedV1),
		slog.String("confirm_subject", ratingevents.MatchConfirmRequestedV1),
		slog.String("reject_subject", ratingevents.MatchRejectRequestedV1),
		slog.String("finalize_subject", ratingevents.MatchFinalizeRequestedV1),
	)

	registerHandler(deps, ratingevents.MatchSubmitRequestedV1, handlers.HandleSubmitRequested)
	registerHandler(deps, ratingevents.MatchConfirmRequestedV1, handlers.HandleConfirmRequested)
	registerHandler(deps, ratingevents.MatchRejectRequestedV1, handlers.HandleRejectRequested)
	registerHandler(deps, ratingevents.MatchFinalizeRequestedV1, handlers.HandleFinalizeRequested)

	r.logger.Info("Rating module handlers registered successfully")
}

// registerHandler is a generic function for type-safe Watermill handler registration.
// Outbound messages carry their subject in metadata, so the publish topic is empty.
func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) {
	handlerName := "rating." + topic

	deps.router.AddHandler(
		handlerName,
		topic,
		deps.subscriber,
		"",
		deps.publisher,
		handlerwrapper.WrapTransformingTyped(
			handlerName,
			deps.logger,
			deps.tracer,
			deps.metrics,
			handler,
		),
	)
}

// moduleMetadata stamps the owning module on inbound messages.
func moduleMetadata(module string) message.HandlerMiddleware {
	return func(h message.HandlerFunc) message.HandlerFunc {
		return func(msg *message.Message) ([]*message.Message, error) {
			if msg.Metadata.Get(ModuleMetadataKey) == "" {
				msg.Metadata.Set(ModuleMetadataKey, module)
			}
			return h(msg)
		}
	}
}

// Close shuts down the router.
func (r *RatingRouter) Close() error {
	return r.router.Close()
}
