package wire

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"consultancy-cms/internal/adaptor"
	"consultancy-cms/internal/usecase"
	"consultancy-cms/pkg/database"
	"consultancy-cms/pkg/middleware"
	"consultancy-cms/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// App holds the router and the resources that must be released on shutdown.
type App struct {
	Router   *chi.Mux
	Service  *usecase.Service
	limiters []*middleware.RateLimiter
}

// Close stops background work owned by the router.
func (a *App) Close() {
	for _, l := range a.limiters {
		l.Close()
	}
}

// Wiring builds handlers from the services and mounts every route.
func Wiring(service *usecase.Service, db database.PgxIface, config *utils.Config, logger *zap.Logger) (*App, error) {
	handler := adaptor.NewHandler(service, config, logger)

	trustProxies, err := middleware.TrustProxies(config.App.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("wiring: %w", err)
	}

	// One limiter per abuse-prone surface so contact spam does not lock
	// out admin login.
	loginLimiter := middleware.NewRateLimiter(rate.Limit(config.RateLimit.RPS), config.RateLimit.Burst)
	contactLimiter := middleware.NewRateLimiter(rate.Limit(config.RateLimit.RPS), config.RateLimit.Burst)

	router := setupRouter(handler, service, db, config, logger, trustProxies, loginLimiter, contactLimiter)

	return &App{
		Router:   router,
		Service:  service,
		limiters: []*middleware.RateLimiter{loginLimiter, contactLimiter},
	}, nil
}

func setupRouter(
	handler *adaptor.Handler,
	service *usecase.Service,
	db database.PgxIface,
	config *utils.Config,
	logger *zap.Logger,
	trustProxies func(http.Handler) http.Handler,
	loginLimiter, contactLimiter *middleware.RateLimiter,
) *chi.Mux {
	r := chi.NewRouter()

	// Client addresses come from forwarding headers only when the peer is a
	// configured proxy (TRUSTED_PROXIES).
	r.Use(trustProxies)
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS(config.App.AllowedOrigins))

	wireAuth(r, handler.Auth, service.Session, loginLimiter, logger)
	wireContent(r, handler.Content, service.Session, logger)
	wireObjects(r, handler.Object, service.Session, logger)
	wirePublic(r, handler.Public, contactLimiter)

	r.Get("/health", health(db, logger))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.ResponseNotFound(w, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.ResponseMethodNotAllowed(w, "Method not allowed")
	})

	return r
}

func health(db database.PgxIface, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			logger.Warn("Health check failed", zap.Error(err))
			utils.ResponseServiceUnavailable(w, "Database unavailable")
			return
		}
		utils.ResponseSuccess(w, "OK", map[string]string{"status": "ok"})
	}
}
