package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/PadelPad/UnitedPadelApp-sub000/app/eventbus"
	"github.com/PadelPad/UnitedPadelApp-sub000/app/modules/auth"
	"github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating"
	ratingevents "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/events"
	"github.com/PadelPad/UnitedPadelApp-sub000/config"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"go.opentelemetry.io/otel"
)

const serviceName = "padel-rating"

// App holds the shared infrastructure and the modules built on it.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	DB       *bun.DB
	EventBus *eventbus.EventBus
	Router   *message.Router
	Registry *prometheus.Registry
	Modules  *Modules

	httpServer    *http.Server
	metricsServer *http.Server
	wg            sync.WaitGroup
}

// Modules groups the application modules.
type Modules struct {
	AuthModule   *auth.Module
	RatingModule *rating.Module
}

// NewApp connects to Postgres and NATS and builds every module.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	app := &App{Config: cfg, Logger: logger}

	if err := app.initializeDatabase(ctx); err != nil {
		return nil, err
	}

	bus, err := eventbus.NewEventBus(ctx, eventbus.Config{
		URL:           cfg.NATS.URL,
		NKeySeed:      cfg.NATS.NKeySeed,
		ConsumerGroup: ratingevents.StreamName,
		StreamName:    ratingevents.StreamName,
	}, logger)
	if err != nil {
		app.DB.Close()
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}
	app.EventBus = bus

	if err := bus.EnsureStream(ctx, ratingevents.StreamName, ratingevents.StreamSubjects); err != nil {
		app.closeInfra()
		return nil, err
	}

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 30 * time.Second}, watermill.NewSlogLogger(logger))
	if err != nil {
		app.closeInfra()
		return nil, fmt.Errorf("failed to create Watermill router: %w", err)
	}
	app.Router = router

	app.Registry = prometheus.NewRegistry()
	app.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if err := app.initializeModules(ctx); err != nil {
		app.closeInfra()
		return nil, err
	}

	app.httpServer = &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if cfg.Observability.MetricsAddress != "" {
		app.metricsServer = &http.Server{
			Addr:              cfg.Observability.MetricsAddress,
			Handler:           app.metricsHandler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
	}

	return app, nil
}

func (app *App) initializeDatabase(ctx context.Context) error {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(app.Config.Postgres.DSN)))
	db := bun.NewDB(sqldb, pgdialect.New())

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	app.Logger.InfoContext(ctx, "Connected to Postgres")
	return nil
}

func (app *App) initializeModules(ctx context.Context) error {
	tracer := otel.Tracer(serviceName)

	app.Modules = &Modules{
		AuthModule: auth.NewModule(app.Config, app.Logger),
	}

	ratingModule, err := rating.NewRatingModule(
		ctx,
		rating.Options{
			DSN:            app.Config.Postgres.DSN,
			AllowedOrigins: app.Config.HTTP.AllowedOrigins,
			Registry:       app.Registry,
		},
		app.Logger,
		tracer,
		app.EventBus,
		app.Router,
		ctx,
		app.DB,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize rating module: %w", err)
	}
	app.Modules.RatingModule = ratingModule
	return nil
}

// Run starts the router, the modules and the HTTP listeners, and blocks until
// ctx is done or a listener fails.
func (app *App) Run(ctx context.Context) error {
	errCh := make(chan error, 3)

	go func() {
		if err := app.Router.Run(ctx); err != nil {
			errCh <- fmt.Errorf("watermill router: %w", err)
		}
	}()
	<-app.Router.Running()

	app.wg.Add(1)
	go app.Modules.RatingModule.Run(ctx, &app.wg)

	serve := func(name string, srv *http.Server) {
		app.Logger.InfoContext(ctx, "HTTP listener started", slog.String("name", name), slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("%s listener: %w", name, err)
		}
	}
	go serve("api", app.httpServer)
	if app.metricsServer != nil {
		go serve("metrics", app.metricsServer)
	}

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Close stops the listeners, the modules and the shared infrastructure.
func (app *App) Close() error {
	var errs []error

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	for _, srv := range []*http.Server{app.httpServer, app.metricsServer} {
		if srv == nil {
			continue
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
	}

	if app.Modules != nil && app.Modules.RatingModule != nil {
		if err := app.Modules.RatingModule.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	app.wg.Wait()

	if err := app.closeInfra(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (app *App) closeInfra() error {
	var errs []error
	if app.Router != nil {
		if err := app.Router.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing router: %w", err))
		}
	}
	if app.EventBus != nil {
		if err := app.EventBus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing event bus: %w", err))
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing database: %w", err))
		}
	}
	return errors.Join(errs...)
}
