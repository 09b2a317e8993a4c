// ABOUTME: Board HTTP server: a chi router exposing the card, focus, comment, and attachment JSON API.
// ABOUTME: Every /api route is authenticated; /health is a public liveness probe.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/2389-research/gridhq/board/core"
	"github.com/2389-research/gridhq/board/server"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Pinger reports database liveness for /api/health.
type Pinger interface {
	Ping(ctx context.Context) (time.Duration, error)
}

// Server serves the board API.
type Server struct {
	board    *core.Board
	identity *server.IdentityProvider
	pinger   Pinger
	logger   *zap.Logger
	router   chi.Router
	addr     string
	version  string
	now      func() time.Time
}

// ServerConfig holds the dependencies of the HTTP server.
type ServerConfig struct {
	Addr     string // listen address (default: "127.0.0.1:8787")
	Version  string // reported by /api/health
	Board    *core.Board
	Identity *server.IdentityProvider
	Pinger   Pinger      // optional
	Logger   *zap.Logger // optional
	Now      func() time.Time
}

// NewServer validates cfg and builds the router.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Board == nil {
		return nil, errors.New("board must not be nil")
	}
	if cfg.Identity == nil {
		return nil, errors.New("identity provider must not be nil")
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	s := &Server{
		board:    cfg.Board,
		identity: cfg.Identity,
		pinger:   cfg.Pinger,
		logger:   cfg.Logger,
		addr:     cfg.Addr,
		version:  cfg.Version,
		now:      cfg.Now,
	}
	s.router = s.buildRouter()
	return s, nil
}

// ServeHTTP delegates to the chi router, satisfying http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// HTTPServer returns an *http.Server for the configured address with
// timeouts that bound slow clients.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}
}

// buildRouter constructs the chi router with all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleLiveness)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.authenticate)

		r.Get("/health", s.handleHealth)
		r.Get("/me", s.handleMe)

		r.Route("/cards", func(r chi.Router) {
			r.Get("/", s.handleCardList)
			r.Post("/", s.handleCardCreate)
			r.Route("/{cardID}", func(r chi.Router) {
				r.Get("/", s.handleCardGet)
				r.Patch("/", s.handleCardUpdate)
				r.Delete("/", s.handleCardDelete)
				r.Post("/archive", s.handleCardArchive)
				r.Get("/comments", s.handleCommentList)
				r.Post("/comments", s.handleCommentCreate)
				r.Get("/attachments", s.handleAttachmentList)
				r.Post("/attachments", s.handleAttachmentUpload)
			})
		})
		r.Get("/attachments/{attachmentID}", s.handleAttachmentDownload)

		r.Get("/focus", s.handleFocusGet)
		r.Put("/focus", s.handleFocusPut)

		r.Get("/board/summary", s.handleSummary)
		r.Get("/board/export", s.handleExport)
	})

	return r
}
