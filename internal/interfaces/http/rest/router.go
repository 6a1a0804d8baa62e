// Package rest wires the chi router: middleware chain, public routes,
// authenticated routes, and the admin surface.
package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"pcforge-backend/internal/config"
	"pcforge-backend/internal/interfaces/http/rest/handlers"
	"pcforge-backend/internal/interfaces/http/rest/middleware"
	"pcforge-backend/internal/service/analytics"
	"pcforge-backend/internal/service/builds"
	"pcforge-backend/internal/service/catalog"
	"pcforge-backend/internal/service/social"
	"pcforge-backend/internal/service/users"
	"pcforge-backend/pkg/api"
	"pcforge-backend/pkg/auth"
)

// Services groups everything the router serves.
type Services struct {
	Users     *users.Service
	Catalog   *catalog.Service
	Builds    *builds.Service
	Social    *social.Service
	Analytics *analytics.Service
}

// ConfigSource provides the latest configuration snapshot. The config
// watcher satisfies this, so feature gates follow hot reloads without a
// server restart.
type ConfigSource interface {
	Current() *config.Config
}

// Router builds the HTTP handler tree.
type Router struct {
	services Services
	tokens   *auth.Service
	cfg      ConfigSource
	logger   *zap.Logger
}

// NewRouter creates a router.
func NewRouter(services Services, tokens *auth.Service, cfg ConfigSource, logger *zap.Logger) *Router {
	return &Router{services: services, tokens: tokens, cfg: cfg, logger: logger}
}

// Setup configures all routes and middleware. Routes and CORS are fixed at
// setup; feature flags are consulted per request so reloads take effect.
func (rt *Router) Setup() http.Handler {
	boot := rt.cfg.Current()
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	router.Use(middleware.CircuitBreaker(middleware.DefaultBreakerConfig("api"), rt.logger))
	router.Use(rt.whenEnabled(metricsEnabled, middleware.Metrics))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   boot.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/health", rt.healthCheck)
	router.Method(http.MethodGet, "/metrics", rt.featureGate(metricsEnabled)(promhttp.Handler()))

	authHandler := handlers.NewAuthHandler(rt.services.Users, rt.logger)
	userHandler := handlers.NewUserHandler(rt.services.Users, rt.logger)
	componentHandler := handlers.NewComponentHandler(rt.services.Catalog, rt.logger)
	buildHandler := handlers.NewBuildHandler(rt.services.Builds, rt.logger)
	socialHandler := handlers.NewSocialHandler(rt.services.Social, rt.logger)
	analyticsHandler := handlers.NewAnalyticsHandler(rt.services.Analytics, rt.logger)

	router.Route("/api/v1", func(r chi.Router) {
		// Public surface: no token required.
		r.Group(func(r chi.Router) {
			r.Post("/auth/register", authHandler.Register)
			r.Post("/auth/login", authHandler.Login)
			r.Get("/components", componentHandler.List)
			r.Get("/components/{componentID}", componentHandler.Get)
			r.Get("/builds/public", buildHandler.ListPublic)
			r.Get("/builds/public/{buildID}", buildHandler.GetPublic)
			r.Get("/builds/shared/{token}", buildHandler.GetShared)
		})

		// Authenticated surface.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(rt.tokens))

			r.Get("/users/me", userHandler.Me)
			r.Put("/users/me", userHandler.UpdateBio)
			r.Get("/users/{userID}", userHandler.GetProfile)

			r.Route("/builds", func(r chi.Router) {
				r.Post("/", buildHandler.Create)
				r.Get("/", buildHandler.List)
				r.Post("/validate", buildHandler.CheckComponents)
				r.Get("/{buildID}", buildHandler.Get)
				r.Put("/{buildID}", buildHandler.Update)
				r.Delete("/{buildID}", buildHandler.Delete)
				r.Post("/{buildID}/components", buildHandler.AddComponent)
				r.Delete("/{buildID}/components/{componentID}", buildHandler.RemoveComponent)
				r.Post("/{buildID}/check", buildHandler.Check)
				r.Post("/{buildID}/share", buildHandler.Share)
				r.Put("/{buildID}/visibility", buildHandler.SetVisibility)
			})

			r.Post("/compat/check", buildHandler.CheckComponents)

			r.Group(func(r chi.Router) {
				r.Use(rt.featureGate(socialEnabled))

				r.Post("/builds/{buildID}/like", socialHandler.Like)
				r.Delete("/builds/{buildID}/like", socialHandler.Unlike)
				r.Get("/builds/{buildID}/likes", socialHandler.Likes)
				r.Post("/builds/{buildID}/comments", socialHandler.CreateComment)
				r.Get("/builds/{buildID}/comments", socialHandler.ListComments)
				r.Put("/comments/{commentID}", socialHandler.UpdateComment)
				r.Delete("/comments/{commentID}", socialHandler.DeleteComment)
				r.Post("/users/{userID}/follow", socialHandler.Follow)
				r.Delete("/users/{userID}/follow", socialHandler.Unfollow)
				r.Get("/users/{userID}/follow-stats", socialHandler.FollowStats)
				r.Get("/notifications", socialHandler.ListNotifications)
				r.Post("/notifications/{notificationID}/read", socialHandler.MarkNotificationRead)
			})
		})

		// Admin surface.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(rt.tokens))
			r.Use(middleware.RequireAdmin)

			r.Route("/admin", func(r chi.Router) {
				r.Post("/components", componentHandler.Create)
				r.Put("/components/{componentID}", componentHandler.Update)
				r.Delete("/components/{componentID}", componentHandler.Delete)
				r.Post("/components/{componentID}/movements", componentHandler.RecordMovement)
				r.Get("/components/{componentID}/movements", componentHandler.ListMovements)
				r.Get("/components/{componentID}/price-history", componentHandler.PriceHistory)
				r.Get("/alerts", componentHandler.ListAlerts)
				r.Post("/alerts/{alertID}/resolve", componentHandler.ResolveAlert)
				r.Get("/reorders", componentHandler.ListReorders)
				r.Post("/reorders/{reorderID}/transition", componentHandler.TransitionReorder)

				r.Get("/analytics/popularity", analyticsHandler.Popularity)
				r.Get("/analytics/components/{componentID}/price-trend", analyticsHandler.PriceTrend)
				r.Get("/analytics/builds", analyticsHandler.BuildStats)
			})
		})
	})

	return router
}

func metricsEnabled(c *config.Config) bool { return c.Features.EnableMetrics }
func socialEnabled(c *config.Config) bool  { return c.Features.EnableSocial }

// featureGate hides routes behind a live feature flag. A disabled feature
// reads as 404, the same as if its routes were never registered.
func (rt *Router) featureGate(enabled func(*config.Config) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled(rt.cfg.Current()) {
				api.Error(w, http.StatusNotFound, "not found")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// whenEnabled applies a middleware only while the flag is on.
func (rt *Router) whenEnabled(enabled func(*config.Config) bool, mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		wrapped := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if enabled(rt.cfg.Current()) {
				wrapped.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (rt *Router) healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
