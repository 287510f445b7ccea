// Package api provides the local HTTP control API for autosort.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/listenupapp/autosort/internal/service"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures NewServer.
type Options struct {
	Version        string
	AllowedOrigins []string
	// History is checked by /health; nil reports the component as disabled.
	History Pinger
	// Events, when set, is mounted at GET /api/v1/events.
	Events http.Handler
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	organizer *service.OrganizerService
	history   Pinger
	router    *chi.Mux
	api       huma.API
	logger    *slog.Logger
	startedAt time.Time
}

// NewServer creates the HTTP server with all routes configured.
func NewServer(organizer *service.OrganizerService, opts Options, logger *slog.Logger) *Server {
	if opts.Version == "" {
		opts.Version = "dev"
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}

	router := chi.NewRouter()
	s := &Server{
		organizer: organizer,
		history:   opts.History,
		router:    router,
		logger:    logger,
		startedAt: time.Now(),
	}
	s.setupMiddleware(opts.AllowedOrigins)

	humaConfig := huma.DefaultConfig("autosort API", opts.Version)
	humaConfig.Info.Description = "Control API for the autosort folder organizer"
	s.api = humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerCategoryRoutes()
	s.registerRuleRoutes()
	s.registerOrganizeRoutes()
	s.registerWatchRoutes()
	s.registerHistoryRoutes()

	if opts.Events != nil {
		router.Get("/api/v1/events", opts.Events.ServeHTTP)
	}

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the huma API, for tests and OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

func (s *Server) setupMiddleware(origins []string) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}
