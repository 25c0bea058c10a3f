package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/privatinsolvenz/lead-dashboard/internal/auth"
	"github.com/privatinsolvenz/lead-dashboard/internal/config"
	"github.com/privatinsolvenz/lead-dashboard/internal/http/handler"
	"github.com/privatinsolvenz/lead-dashboard/internal/http/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	_ "github.com/privatinsolvenz/lead-dashboard/docs" // Import generated swagger docs
)

// readinessTimeout bounds every dependency check of /health/ready
const readinessTimeout = 3 * time.Second

// HealthCheck reports whether a dependency is reachable
type HealthCheck func(ctx context.Context) error

type Router struct {
	cfg                *config.Config
	logger             *zap.Logger
	authMiddleware     *auth.Middleware
	rateLimiter        *middleware.RateLimiter
	checks             map[string]HealthCheck
	leadHandler        *handler.LeadHandler
	webhookHandler     *handler.WebhookHandler
	syncHandler        *handler.SyncHandler
	logHandler         *handler.LogHandler
	integrationHandler *handler.IntegrationHandler
	oauthHandler       *handler.OAuthHandler
	authHandler        *handler.AuthHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	checks map[string]HealthCheck,
	leadHandler *handler.LeadHandler,
	webhookHandler *handler.WebhookHandler,
	syncHandler *handler.SyncHandler,
	logHandler *handler.LogHandler,
	integrationHandler *handler.IntegrationHandler,
	oauthHandler *handler.OAuthHandler,
	authHandler *handler.AuthHandler,
) *Router {
	return &Router{
		cfg:                cfg,
		logger:             logger,
		authMiddleware:     authMiddleware,
		rateLimiter:        rateLimiter,
		checks:             checks,
		leadHandler:        leadHandler,
		webhookHandler:     webhookHandler,
		syncHandler:        syncHandler,
		logHandler:         logHandler,
		integrationHandler: integrationHandler,
		oauthHandler:       oauthHandler,
		authHandler:        authHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))

	// Liveness probe
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Readiness probe, 503 while a dependency is unreachable
	r.Get("/health/ready", rt.ready)

	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes: automation platforms and the intake form cannot hold a session
		r.Group(func(r chi.Router) {
			r.Use(rt.rateLimiter.LimitWebhooks)
			rt.useRequestTimeout(r)

			r.Post("/webhook", rt.webhookHandler.Receive)
			r.Post("/webhook/make", rt.webhookHandler.Make)
			r.Post("/webhook/n8n", rt.webhookHandler.N8n)
			r.Post("/external-form", rt.webhookHandler.ExternalForm)
		})

		// OAuth round trip, guarded by the signed state
		r.Group(func(r chi.Router) {
			r.Use(rt.rateLimiter.LimitByIP)
			rt.useRequestTimeout(r)

			r.Get("/oauth/clickup", rt.oauthHandler.Authorize)
			r.Get("/oauth/clickup/callback", rt.oauthHandler.Callback)
		})

		// Dashboard routes
		r.Group(func(r chi.Router) {
			r.Use(rt.rateLimiter.LimitByIP)
			r.Use(rt.authMiddleware.Authenticate)

			// Long-running routes, no request timeout
			r.Get("/logs/stream", rt.logHandler.Stream)
			r.Post("/sync-all", rt.syncHandler.SyncAll)

			r.Group(func(r chi.Router) {
				rt.useRequestTimeout(r)

				r.Get("/auth/me", rt.authHandler.Me)
				r.Post("/auth/session", rt.authHandler.CreateSession)

				r.Route("/leads", func(r chi.Router) {
					r.Get("/", rt.leadHandler.List)
					r.Post("/", rt.leadHandler.Create)
					r.Get("/stats", rt.leadHandler.Stats)
					r.Get("/{taskId}", rt.leadHandler.GetByTaskID)
					r.Put("/{taskId}", rt.leadHandler.Update)
					r.Delete("/{taskId}", rt.leadHandler.Delete)
					r.Put("/{taskId}/phase", rt.leadHandler.UpdatePhase)
					r.Put("/{taskId}/checklist", rt.leadHandler.UpdateChecklist)
					r.Post("/{taskId}/documents", rt.leadHandler.AddDocument)
					r.Delete("/{taskId}/documents/{documentId}", rt.leadHandler.RemoveDocument)
				})

				r.Post("/sync/{taskId}", rt.syncHandler.SyncLead)

				r.Get("/logs", rt.logHandler.List)

				r.Get("/integration/status", rt.integrationHandler.Status)
				r.Get("/oauth/status", rt.oauthHandler.Status)
			})
		})
	})

	return r
}

// useRequestTimeout cancels the request context after Server.RequestTimeout
func (rt *Router) useRequestTimeout(r chi.Router) {
	if timeout := rt.cfg.Server.RequestTimeoutDuration(); timeout > 0 {
		r.Use(chimw.Timeout(timeout))
	}
}

func (rt *Router) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	checks := make(map[string]interface{}, len(rt.checks))
	allHealthy := true

	for name, check := range rt.checks {
		if err := check(ctx); err != nil {
			rt.logger.Error("Health check failed", zap.String("check", name), zap.Error(err))
			checks[name] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
			continue
		}
		checks[name] = map[string]interface{}{
			"status": "healthy",
		}
	}

	status, code := "healthy", http.StatusOK
	if !allHealthy {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status": status,
		"checks": checks,
	})
}
