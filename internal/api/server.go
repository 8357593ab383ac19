// Package api provides the HTTP API server and handlers for the Storefront
// application.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/storefrontapp/storefront-server/internal/backup"
	"github.com/storefrontapp/storefront-server/internal/config"
	"github.com/storefrontapp/storefront-server/internal/ratelimit"
	"github.com/storefrontapp/storefront-server/internal/search"
	"github.com/storefrontapp/storefront-server/internal/service"
	"github.com/storefrontapp/storefront-server/internal/store"
)

const apiVersion = "1.0.0"

// Services bundles the domain services the server exposes.
type Services struct {
	Users      *service.UserService
	Categories *service.CategoryService
	Tags       *service.TagService
	Products   *service.ProductService
	Posts      *service.PostService
	Orders     *service.OrderService
	Reviews    *service.ReviewService
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    *store.Store
	services Services
	search   *search.Index
	backups  *backup.Service
	router   *chi.Mux
	api      huma.API
	limiter  *ratelimit.KeyedRateLimiter
	logger   *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(cfg *config.Config, st *store.Store, services Services, searchIndex *search.Index, backups *backup.Service, logger *slog.Logger) *Server {
	s := &Server{
		store:    st,
		services: services,
		search:   searchIndex,
		backups:  backups,
		router:   chi.NewRouter(),
		logger:   logger,
	}

	s.setupMiddleware(cfg)

	RegisterErrorHandler()
	humaConfig := huma.DefaultConfig(cfg.Server.Name, apiVersion)
	humaConfig.DocsPath = "/docs"
	s.api = humachi.New(s.router, humaConfig)

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases server-owned resources.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware(cfg *config.Config) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if cfg.RateLimit.Enabled {
		s.limiter = ratelimit.New(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst)
		s.router.Use(RateLimitMiddleware(s.limiter, s.logger))
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealthCheck)

	s.registerUserRoutes()
	s.registerCategoryRoutes()
	s.registerTagRoutes()
	s.registerProductRoutes()
	s.registerPostRoutes()
	s.registerOrderRoutes()
	s.registerReviewRoutes()
	s.registerSearchRoutes()
	s.registerAdminRoutes()
}
