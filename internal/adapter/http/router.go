package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/nnamdi/kobolet/internal/adapter/http/handler"
	"github.com/nnamdi/kobolet/internal/adapter/http/middleware"
	"github.com/nnamdi/kobolet/internal/domain"
	"github.com/nnamdi/kobolet/internal/infrastructure/auth"
	"github.com/nnamdi/kobolet/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AuthHandler     *handler.AuthHandler
	WalletHandler   *handler.WalletHandler
	TransferHandler *handler.TransferHandler
	DepositHandler  *handler.DepositHandler
	APIKeyHandler   *handler.APIKeyHandler
	HealthHandler   *handler.HealthHandler

	JWTManager *auth.JWTManager
	APIKeyUC   *usecase.APIKeyUseCase

	Logger      zerolog.Logger
	RateLimiter *middleware.RateLimiter
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Metrics)
	r.Use(middleware.Recovery)
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes. The webhook authenticates via payload signature, not
		// session credentials.
		r.Post("/auth/register", cfg.AuthHandler.Register)
		r.Post("/wallet/paystack/webhook", cfg.DepositHandler.Webhook)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(cfg.JWTManager, cfg.APIKeyUC))

			r.Route("/auth/me", func(r chi.Router) {
				r.Get("/", cfg.AuthHandler.Me)
				r.Delete("/", cfg.AuthHandler.Delete)
			})

			r.Route("/wallet", func(r chi.Router) {
				r.With(middleware.RequireCapability(domain.CapabilityRead)).
					Get("/me", cfg.WalletHandler.Me)
				r.With(middleware.RequireCapability(domain.CapabilityRead)).
					Get("/balance", cfg.WalletHandler.Balance)
				r.With(middleware.RequireCapability(domain.CapabilityRead)).
					Get("/transactions", cfg.WalletHandler.Transactions)

				r.With(middleware.RequireCapability(domain.CapabilityTransfer)).
					Post("/transfer", cfg.TransferHandler.Transfer)

				r.With(middleware.RequireCapability(domain.CapabilityDeposit)).
					Post("/deposit", cfg.DepositHandler.Initiate)
				r.With(middleware.RequireCapability(domain.CapabilityRead)).
					Get("/deposit/{reference}/status", cfg.DepositHandler.Status)
				r.With(middleware.RequireCapability(domain.CapabilityDeposit)).
					Get("/deposit/{reference}/verify", cfg.DepositHandler.Verify)
			})

			r.Route("/apikeys", func(r chi.Router) {
				r.Post("/", cfg.APIKeyHandler.Create)
				r.Post("/rollover", cfg.APIKeyHandler.Rollover)
				r.Get("/", cfg.APIKeyHandler.List)
				r.Delete("/{id}", cfg.APIKeyHandler.Revoke)
			})
		})
	})

	return r
}
