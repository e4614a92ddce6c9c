// Package api implements the modelcanvas HTTP API.
//
// The server exposes stored computation graphs and their derived
// products: layouts, rendered artifacts, interactive expand/collapse
// views, and per-node detail lookups. Graph persistence goes through a
// store.Store and layout/render work goes through a pipeline.Runner, so
// the API shares caching behavior with the CLI.
package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/modelcanvas/pkg/cache"
	"github.com/matzehuels/modelcanvas/pkg/graph"
	"github.com/matzehuels/modelcanvas/pkg/pipeline"
	"github.com/matzehuels/modelcanvas/pkg/store"
	"github.com/matzehuels/modelcanvas/pkg/view"
)

// =============================================================================
// Server
// =============================================================================

// Config holds server construction options.
type Config struct {
	// Addr is the listen address, for example ":8080".
	Addr string

	// Store persists uploaded graphs. Required.
	Store store.Store

	// Cache backs the layout and artifact stages. Nil disables caching.
	Cache cache.Cache

	// Logger receives request and pipeline logs. Nil selects the
	// default logger.
	Logger *log.Logger
}

// Server is the HTTP API server. Create it with NewServer; the zero
// value is not usable.
type Server struct {
	store  store.Store
	runner *pipeline.Runner
	logger *log.Logger
	router chi.Router
	http   *http.Server

	// views holds one expansion-state builder per stored graph,
	// constructed lazily on first view access and dropped when the
	// graph is deleted.
	mu    sync.Mutex
	views map[string]*view.Builder
}

// NewServer creates a server around the given store and cache.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		store:  cfg.Store,
		runner: pipeline.NewRunner(cfg.Cache, nil, logger),
		logger: logger,
		views:  make(map[string]*view.Builder),
	}
	s.router = s.routes()
	s.http = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the router, for tests and custom server setups.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe starts the server and blocks until it stops.
func (s *Server) ListenAndServe() error {
	s.logger.Info("api server listening", "addr", s.http.Addr)
	return s.http.ListenAndServe()
}

// Shutdown gracefully stops the server and closes the runner's cache.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.http.Shutdown(ctx)
	if cerr := s.runner.Close(); err == nil {
		err = cerr
	}
	return err
}

// routes builds the route tree.
func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/graphs", func(r chi.Router) {
		r.Post("/", s.handleCreateGraph)
		r.Get("/", s.handleListGraphs)

		r.Route("/{graphID}", func(r chi.Router) {
			r.Get("/", s.handleGetGraph)
			r.Delete("/", s.handleDeleteGraph)
			r.Get("/summary", s.handleSummary)
			r.Get("/layout", s.handleLayout)
			r.Get("/render", s.handleRender)
			r.Get("/nodes/{nodeID}", s.handleNodeDetails)

			r.Route("/view", func(r chi.Router) {
				r.Get("/", s.handleView)
				r.Post("/expand/{elementID}", s.handleExpand)
				r.Post("/collapse/{elementID}", s.handleCollapse)
				r.Post("/toggle/{elementID}", s.handleToggle)
				r.Get("/state", s.handleGetState)
				r.Put("/state", s.handleSetState)
			})
		})
	})

	return r
}

// builderFor returns the expansion-state builder for a stored graph,
// creating it from the stored record on first access.
func (s *Server) builderFor(ctx context.Context, id string) (*view.Builder, error) {
	s.mu.Lock()
	if b, ok := s.views[id]; ok {
		s.mu.Unlock()
		return b, nil
	}
	s.mu.Unlock()

	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	g, err := graph.ToModel(rec.Graph)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.views[id]; ok {
		return b, nil
	}
	b := view.NewBuilder(g)
	s.views[id] = b
	return b, nil
}

// dropBuilder discards the cached builder for a deleted graph.
func (s *Server) dropBuilder(id string) {
	s.mu.Lock()
	delete(s.views, id)
	s.mu.Unlock()
}
