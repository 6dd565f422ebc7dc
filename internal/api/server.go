package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/meetnotes/internal/config"
	"github.com/dgallion1/meetnotes/internal/granola"
	"github.com/dgallion1/meetnotes/internal/metrics"
	"github.com/dgallion1/meetnotes/internal/notes"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// StatsSource exposes rolling upstream latency.
type StatsSource interface {
	Stats() granola.StatsSnapshot
}

// Server is the HTTP API server for the notes relay.
type Server struct {
	router  chi.Router
	notes   *notes.Service
	stats   StatsSource
	metrics *metrics.Metrics
	log     *slog.Logger
	cfg     config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(svc *notes.Service, stats StatsSource, m *metrics.Metrics, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		notes:   svc,
		stats:   stats,
		metrics: m,
		log:     log,
		cfg:     cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	if s.metrics != nil {
		r.Use(RequestMetrics(s.metrics))
	}

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Get("/api/meetings", s.handleListMeetings)
		r.Get("/api/meetings/{id}/notes", s.handleGetNotes)
		r.Post("/api/meetings/{id}/note", s.handleDownloadNote)
		r.Post("/api/meetings/{id}/private-notes", s.handleDownloadPrivateNotes)
		r.Post("/api/meetings/{id}/transcript", s.handleDownloadTranscript)
		r.Get("/api/lists", s.handleListMeetingLists)
		r.Get("/api/workspaces", s.handleListWorkspaces)
		r.Get("/api/resolve", s.handleResolveURL)

		r.Post("/api/render", s.handleRender)
		r.Post("/api/transcript/render", s.handleRenderTranscript)
		r.Post("/api/analyze", s.handleAnalyze)

		r.Get("/api/stats/upstream", s.handleUpstreamStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
