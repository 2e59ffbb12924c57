package app

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	ratinghttp "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/infrastructure/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// HealthChecker is a dependency /healthz reports on.
type HealthChecker func(ctx context.Context) error

// Handler builds the HTTP surface: probes, metrics and the versioned API.
func (app *App) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", healthHandler(map[string]HealthChecker{
		"postgres": app.DB.PingContext,
		"nats":     func(context.Context) error { return app.EventBus.HealthCheck() },
		"queue":    app.Modules.RatingModule.HealthCheck,
	}))
	if app.metricsServer == nil {
		r.Handle("/metrics", app.metricsHandler())
	}

	authModule := app.Modules.AuthModule
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(authModule.Edge()...)
		app.Modules.RatingModule.Mount(r, ratinghttp.Guards{
			Authenticated: authModule.Authenticated(),
			Recorders:     authModule.Recorders(),
			Organizers:    authModule.Organizers(),
		})
	})

	return otelhttp.NewHandler(r, "http.server",
		otelhttp.WithFilter(func(req *http.Request) bool {
			return req.URL.Path != "/healthz" && req.URL.Path != "/metrics"
		}),
	)
}

func (app *App) metricsHandler() http.Handler {
	return promhttp.HandlerFor(app.Registry, promhttp.HandlerOpts{Registry: app.Registry})
}

// healthHandler answers 200 when every check passes and 503 otherwise.
func healthHandler(checks map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		body := map[string]string{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				body[name] = err.Error()
				continue
			}
			body[name] = "ok"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}
