// Package server provides the HTTP server for the baseball video analyzer.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/analysis"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/compare"
	"github.com/akihiko-nishigaki/baseball-video-analyzer/internal/server/api"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Analyzer  *analysis.Analyzer
	// Landmark is the default sync landmark for comparisons.
	Landmark compare.Landmark
}

// Server represents the HTTP server for the analyzer.
type Server struct {
	config   Config
	mux      *http.ServeMux
	start    time.Time
	playback *PlaybackHandler
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if a := s.config.Analyzer; a != nil {
		videos := api.NewVideoHandler(a)
		s.mux.Handle("/api/videos", videos)
		s.mux.Handle("/api/videos/", videos)

		comparisons := api.NewCompareHandler(a, s.config.Landmark)
		s.mux.Handle("/api/compare", comparisons)
		s.mux.Handle("/api/compare/", comparisons)

		s.playback = NewPlaybackHandler(a)
		s.mux.Handle("/api/playback", s.playback)
		s.mux.Handle("/api/stream", NewStreamHandler(a))
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.playback != nil {
		response["playback_clients"] = s.playback.Clients()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
