// Package api provides the HTTP API server and handlers for the book club dashboard.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/bookclubapp/bookclub-server/internal/http/response"
	"github.com/bookclubapp/bookclub-server/internal/ratelimit"
	"github.com/bookclubapp/bookclub-server/internal/service"
	"github.com/bookclubapp/bookclub-server/internal/validation"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	reportService   *service.ReportService
	pipelineService *service.PipelineService
	searchService   *service.SearchService
	validator       *validation.Validator
	refreshLimiter  *ratelimit.KeyedRateLimiter
	router          *chi.Mux
	api             huma.API
	logger          *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(reportService *service.ReportService, pipelineService *service.PipelineService, searchService *service.SearchService, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	// Middleware must be attached before humachi registers the first
	// route, or chi panics.
	setupMiddleware(router)

	humaConfig := huma.DefaultConfig("Book Club API", "1.0.0")
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	api := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		reportService:   reportService,
		pipelineService: pipelineService,
		searchService:   searchService,
		validator:       validation.New(),
		// A refresh rereads every source file and rebuilds the search
		// index, so one every 10 seconds per client is plenty.
		refreshLimiter: ratelimit.New(0.1, 2),
		router:         router,
		api:            api,
		logger:         logger,
	}

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures middleware stack.
func setupMiddleware(router *chi.Mux) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

// setupRoutes configures all HTTP routes. The JSON API is registered
// through huma; the dashboard page and the refresh trigger stay plain
// chi handlers.
func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerReportRoutes()
	s.registerStatsRoutes()
	s.registerSearchRoutes()

	// Refresh rereads the source files; rate limit it by client IP.
	s.router.Group(func(r chi.Router) {
		r.Use(RateLimitMiddleware(s.refreshLimiter, s.logger))
		r.Post("/api/v1/refresh", s.handleRefresh)
	})

	// Dashboard page.
	s.router.Get("/", s.handleDashboard)
}

// handleRefresh runs the pipeline and replaces the stored snapshot.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	run, err := s.pipelineService.Refresh(ctx)
	if err != nil {
		s.logger.Error("Pipeline refresh failed", "error", err)
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, run, s.logger)
}
