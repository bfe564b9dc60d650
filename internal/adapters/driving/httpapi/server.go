// Package httpapi serves upload sessions, indexing and search over HTTP.
//
// Each session owns a folder and an index identity. Clients create a
// session, upload PDFs into it, then query it; deleting the session
// removes both the files and the index.
package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

// DefaultMaxUploadBytes caps an upload request when Config leaves it unset.
const DefaultMaxUploadBytes = 50 << 20

// ErrMissingService is returned when a required port is nil.
var ErrMissingService = errors.New("httpapi: sessions, index and search services are required")

// Ports aggregates the driving ports the server calls into.
type Ports struct {
	Sessions driving.SessionService
	Index    driving.IndexService
	Search   driving.SearchService

	// Runs is optional; /v1/runs answers with an empty list without it.
	Runs driving.RunService
}

// Config holds server limits and optional extras.
type Config struct {
	// MaxUploadBytes caps the body of a document upload.
	MaxUploadBytes int64

	// MCP, if set, is mounted at /mcp.
	MCP http.Handler
}

// Server is the HTTP API server.
type Server struct {
	router chi.Router
	ports  Ports
	cfg    Config
	log    *slog.Logger
}

// NewServer creates and configures the HTTP server.
func NewServer(ports Ports, cfg Config, log *slog.Logger) (*Server, error) {
	if ports.Sessions == nil || ports.Index == nil || ports.Search == nil {
		return nil, ErrMissingService
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	s := &Server{ports: ports, cfg: cfg, log: log}
	s.setupRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/sessions", s.handleListSessions)
		r.Post("/sessions", s.handleCreateSession)
		r.Get("/sessions/{sessionID}", s.handleGetSession)
		r.Delete("/sessions/{sessionID}", s.handleDeleteSession)
		r.Post("/sessions/{sessionID}/documents", s.handleUpload)
		r.Get("/sessions/{sessionID}/search", s.handleSearch)

		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{runID}", s.handleGetRun)
	})

	if s.cfg.MCP != nil {
		r.Handle("/mcp", s.cfg.MCP)
		r.Handle("/mcp/*", s.cfg.MCP)
	}

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
