package api

import (
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/conceptgraph/pkg/store"
	"github.com/matzehuels/conceptgraph/pkg/tour"
)

// DefaultMaxSessions bounds the number of live tour sessions.
const DefaultMaxSessions = 1024

// Config configures a Server.
type Config struct {
	Store   store.Store
	Builder *tour.Builder
	Logger  *log.Logger
	// MaxSessions evicts the least recently used session beyond this count.
	MaxSessions int
}

// Server is the HTTP API.
type Server struct {
	store   store.Store
	builder *tour.Builder
	logger  *log.Logger
	router  chi.Router

	mu          sync.Mutex
	sessions    map[string]*session
	maxSessions int
	clock       uint64
}

// New builds a Server and its routes.
func New(cfg Config) *Server {
	s := &Server{
		store:       cfg.Store,
		builder:     cfg.Builder,
		logger:      cfg.Logger,
		sessions:    make(map[string]*session),
		maxSessions: cfg.MaxSessions,
	}
	if s.builder == nil {
		s.builder = tour.NewBuilder()
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.maxSessions <= 0 {
		s.maxSessions = DefaultMaxSessions
	}
	s.router = s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/graphs", func(r chi.Router) {
		r.Use(s.requireStore)
		r.Get("/", s.handleListGraphs)
		r.Post("/", s.handleSaveGraph)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetGraph)
			r.Delete("/", s.handleDeleteGraph)
			r.Get("/path", s.handleGraphPath)
		})
	})

	r.Route("/tours", func(r chi.Router) {
		r.Post("/", s.handleStartTour)
		r.Route("/{sid}", func(r chi.Router) {
			r.Get("/", s.handleGetTour)
			r.Delete("/", s.handleEndTour)
			r.Post("/next", s.handleStep("next"))
			r.Post("/prev", s.handleStep("prev"))
			r.Post("/stop", s.handleStep("stop"))
			r.Post("/jump", s.handleJump)
			r.Post("/move", s.handleMove)
			r.Delete("/nodes/{nid}", s.handleRemoveNode)
		})
	})
	return r
}
