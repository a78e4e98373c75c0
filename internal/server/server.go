package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"github.com/msoria/hookfetch/internal/config"
	"github.com/msoria/hookfetch/internal/event"
	"github.com/msoria/hookfetch/internal/metrics"
	"github.com/msoria/hookfetch/internal/resolver"
	"github.com/msoria/hookfetch/internal/webhook"
)

// HealthResponse represents the health check response structure.
type HealthResponse struct {
	Status         string `json:"status"`
	Service        string `json:"service"`
	ConfiguredRepo string `json:"configured_repo"`
}

// Server is the HTTP server for hookfetch.
type Server struct {
	cfg          *config.Config
	mux          *http.ServeMux
	httpServer   *httpServer
	httpServerMu sync.RWMutex  // protects httpServer pointer
	ready        chan struct{} // closed when server is ready to accept connections
	resolver     *resolver.Resolver
	log          zerolog.Logger
}

// New creates a new Server with the given config and change resolver.
func New(cfg *config.Config, res *resolver.Resolver, log zerolog.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		mux:      http.NewServeMux(),
		ready:    make(chan struct{}),
		resolver: res,
		log:      log,
	}
	s.routes()
	return s
}

// Ready returns a channel that is closed when the server is ready to accept connections.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// routes sets up the HTTP routes.
func (s *Server) routes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/metrics", s.handleMetrics)
	s.mux.Handle("/webhook", webhook.NewPushHandler(s.cfg.GitHub.WebhookSecret, s.handlePush))
}

// handlePush processes a verified push event and returns the response body.
func (s *Server) handlePush(ctx context.Context, ev *event.PushEvent) (any, error) {
	s.log.Info().
		Str("commit", ev.CommitID).
		Int("added", len(ev.Added)).
		Int("modified", len(ev.Modified)).
		Int("removed", len(ev.Removed)).
		Msg("processing push")

	result := s.resolver.Resolve(ctx, ev)

	s.log.Info().
		Str("commit", ev.CommitID).
		Int("downloaded", result.Summary.CodeFilesDownloaded).
		Msg("push processed")

	return result, nil
}

// handleHealth responds with server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	repo := s.cfg.RepoFullName()
	if repo == "" {
		repo = "not configured"
	}

	health := HealthResponse{
		Status:         "ok",
		Service:        "hookfetch",
		ConfiguredRepo: repo,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}

// handleMetrics responds with current operational metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	m := metrics.Get()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(m)
}
