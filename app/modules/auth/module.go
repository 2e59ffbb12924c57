package auth

import (
	"log/slog"
	"net/http"

	authdomain "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/auth/domain"
	authhandlers "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/auth/infrastructure/handlers"
	authjwt "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/auth/infrastructure/jwt"
	"github.com/PadelPad/UnitedPadelApp-sub000/config"
	"golang.org/x/time/rate"
)

// Module holds the HTTP edge: token validation, rate limiting and CORS.
type Module struct {
	provider authjwt.Provider
	limiter  *authhandlers.IPRateLimiter
	origins  []string
	logger   *slog.Logger
}

// NewModule creates a new auth module.
func NewModule(cfg *config.Config, logger *slog.Logger) *Module {
	logger.Info("Initializing auth module",
		slog.Int("allowed_origins", len(cfg.HTTP.AllowedOrigins)),
		slog.Float64("rate_limit_rps", cfg.HTTP.RateLimitRPS),
	)
	return &Module{
		provider: authjwt.NewProvider(cfg.JWT.Secret, cfg.JWT.Issuer),
		limiter:  authhandlers.NewIPRateLimiter(rate.Limit(cfg.HTTP.RateLimitRPS), cfg.HTTP.RateLimitBurst),
		origins:  cfg.HTTP.AllowedOrigins,
		logger:   logger,
	}
}

// Provider returns the token provider.
func (m *Module) Provider() authjwt.Provider { return m.provider }

// Edge is applied to every API route.
func (m *Module) Edge() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		authhandlers.CORSMiddleware(m.origins),
		authhandlers.RateLimitMiddleware(m.limiter),
	}
}

// Authenticated requires a valid bearer token.
func (m *Module) Authenticated() func(http.Handler) http.Handler {
	return authhandlers.AuthMiddleware(m.provider)
}

// Organizers restricts a route to organizers and admins.
func (m *Module) Organizers() func(http.Handler) http.Handler {
	return authhandlers.RequireRole(authdomain.Role.CanImport)
}

// Recorders restricts a route to roles that may submit and answer matches.
func (m *Module) Recorders() func(http.Handler) http.Handler {
	return authhandlers.RequireRole(authdomain.Role.CanRecord)
}
