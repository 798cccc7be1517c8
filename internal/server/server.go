package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ziadkadry99/kds-visual/internal/audit"
	"github.com/ziadkadry99/kds-visual/internal/db"
	"github.com/ziadkadry99/kds-visual/internal/observability"
	"github.com/ziadkadry99/kds-visual/internal/species"
	"github.com/ziadkadry99/kds-visual/internal/taxonomy"
	"github.com/ziadkadry99/kds-visual/internal/view"
)

// Config holds server configuration.
type Config struct {
	Port        int
	CORSOrigins []string     // empty allows localhost only
	View        view.Options // defaults for tree endpoints and sessions
}

// Server is the HTTP front of the tree viewer: tree and species APIs, the
// websocket view sessions and the metrics endpoint.
type Server struct {
	cfg        Config
	db         *db.DB
	cache      *taxonomy.Cache
	metrics    *observability.Metrics
	logger     *slog.Logger
	router     chi.Router
	httpServer *http.Server
}

// New creates a server over the species database and the tree document cache.
func New(cfg Config, database *db.DB, cache *taxonomy.Cache, metrics *observability.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:     cfg,
		db:      database,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
	}

	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	r.Use(cors.Handler(corsOptions(s.cfg.CORSOrigins)))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	opts := s.cfg.View
	opts.Metrics = s.metrics
	opts.Logger = s.logger
	view.RegisterRoutes(r, view.NewHandler(s.cache, opts))
	if s.db != nil {
		changes := audit.NewStore(s.db)
		species.RegisterRoutes(r, species.NewStore(s.db), changes)
		audit.RegisterRoutes(r, changes)
	}

	return r
}

// corsOptions allows localhost when origins is empty. Credentials are never
// allowed together with a wildcard origin.
func corsOptions(origins []string) cors.Options {
	opts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if len(origins) > 0 {
		opts.AllowedOrigins = origins
	}
	if slices.Contains(opts.AllowedOrigins, "*") {
		opts.AllowCredentials = false
	}
	return opts
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router { return s.router }

// Database returns the database connection.
func (s *Server) Database() *db.DB { return s.db }

// Cache returns the tree document cache.
func (s *Server) Cache() *taxonomy.Cache { return s.cache }

// ServerConfig returns the server configuration.
func (s *Server) ServerConfig() Config { return s.cfg }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Info("kdsvisual server listening", "addr", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
