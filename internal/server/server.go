// Package server exposes the permission queue over HTTP so a remote UI can
// approve or deny pending requests.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/openagent-dev/openagent/internal/logging"
	"github.com/openagent-dev/openagent/internal/permission"
	"github.com/openagent-dev/openagent/internal/tool"
)

// Config holds server configuration.
type Config struct {
	Port         int
	EnableCORS   bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Port:         7680,
		EnableCORS:   true,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Server serves the permission queue and tool/model introspection.
type Server struct {
	config  *Config
	router  *chi.Mux
	httpSrv *http.Server
	perms   *permission.Channel
	tools   *tool.Registry
}

// New creates a server bound to a permission channel. The channel is
// switched to queue mode: interactive requests park until a decision
// arrives over POST /permissions/{id}.
func New(cfg *Config, perms *permission.Channel, tools *tool.Registry) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	perms.EnableQueue()

	s := &Server{
		config: cfg,
		router: chi.NewRouter(),
		perms:  perms,
		tools:  tools,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	if s.config.EnableCORS {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST"},
			AllowedHeaders: []string{"Content-Type"},
		}))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/permissions", s.handleListPermissions)
	s.router.Post("/permissions/{id}", s.handleRespondPermission)
	s.router.Get("/tools", s.handleListTools)
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins serving and blocks until the listener fails or Shutdown is
// called.
func (s *Server) Start() error {
	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	logging.Info().Int("port", s.config.Port).Msg("permission server listening")
	err := s.httpSrv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListPermissions(w http.ResponseWriter, r *http.Request) {
	pending := s.perms.Pending()
	if pending == nil {
		pending = []permission.PendingRequest{}
	}
	writeJSON(w, http.StatusOK, pending)
}

func (s *Server) handleRespondPermission(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body struct {
		Granted bool `json:"granted"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	if !s.perms.Respond(id, body.Granted) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no pending request with that id"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "granted": body.Granted})
}

func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tools.Names())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error().Err(err).Msg("failed to encode response")
	}
}
