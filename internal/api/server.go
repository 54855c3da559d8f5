// Package api provides the HTTP API server and handlers for the genrewiki server.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/genrewiki/genrewiki-server/internal/config"
	"github.com/genrewiki/genrewiki-server/internal/ratelimit"
	"github.com/genrewiki/genrewiki-server/internal/service"
	"github.com/genrewiki/genrewiki-server/internal/store"
)

// Version is reported in the OpenAPI document.
const Version = "1.0.0"

// limiterIdleTTL is how long a client's token bucket survives without requests.
const limiterIdleTTL = 10 * time.Minute

// Services groups the business logic services used by the API server.
type Services struct {
	Genre      *service.GenreService
	Correction *service.CorrectionService
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    store.Store
	services *Services
	router   chi.Router
	api      huma.API
	limiter  *ratelimit.KeyedRateLimiter
	logger   *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st store.Store, services *Services, cfg *config.Config, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	s := &Server{
		store:    st,
		services: services,
		router:   router,
		logger:   logger,
	}
	if cfg.RateLimit.RPS > 0 {
		s.limiter = ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst, limiterIdleTTL)
	}

	s.setupMiddleware(cfg.Server.CORSAllowedOrigins)

	humaConfig := huma.DefaultConfig("GenreWiki API", Version)
	humaConfig.Info.Description = "Genre encyclopedia with reviewable corrections"
	s.api = humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s.router.Handle("/metrics", promhttp.Handler())
	s.registerRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases background resources held by the server.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware(allowedOrigins []string) {
	s.router.Use(requestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.observe)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", headerAccountID, headerRequestID},
		ExposedHeaders:   []string{headerRequestID},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if s.limiter != nil {
		s.router.Use(RateLimitMiddleware(s.limiter, s.logger))
	}
}

func (s *Server) registerRoutes() {
	s.registerHealthRoutes()
	s.registerGenreRoutes()
	s.registerTaxonomyRoutes()
	s.registerCorrectionRoutes()
	s.registerChangeRoutes()
	s.registerOverlayRoutes()
}
