package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/user/urlingest/internal/db"
	"github.com/user/urlingest/internal/extract"
	"github.com/user/urlingest/internal/pipeline"
	"github.com/user/urlingest/internal/synthesis"
)

const (
	serviceName   = "url-ingestion"
	defaultLimit  = 20
	shutdownGrace = 10 * time.Second
)

// Processor runs the ingestion pipeline for one visit
type Processor interface {
	Process(ctx context.Context, visit pipeline.Visit) pipeline.Outcome
}

// Server is the HTTP surface the browser extension talks to
type Server struct {
	processor Processor
	store     db.Store
	logger    *slog.Logger
}

func New(processor Processor, store db.Store, logger *slog.Logger) *Server {
	return &Server{
		processor: processor,
		store:     store,
		logger:    logger,
	}
}

// Handler builds the router. CORS is wide open: the caller is a browser
// extension running against a local development server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/", s.handleHealth)
	r.Post("/ingest", s.handleIngest)
	r.Get("/records", s.handleRecords)

	return r
}

// Run serves until ctx is cancelled, then drains connections for a bounded
// grace period.
func (s *Server) Run(ctx context.Context, host string, port int) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", host, port),
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": serviceName,
	})
}

type ingestResponse struct {
	Accepted   bool                `json:"accepted"`
	URL        string              `json:"url"`
	TabID      *int64              `json:"tab_id"`
	Timestamp  string              `json:"timestamp"`
	Extraction *extract.Result     `json:"extraction,omitempty"`
	Analysis   *synthesis.Analysis `json:"analysis,omitempty"`
	Error      string              `json:"error,omitempty"`
}

// handleIngest runs the pipeline for one visit. The status is 200 whether
// the pipeline succeeded or not; callers detect degraded results by the
// presence of the error key. Only an unusable request body gets a 4xx.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var visit pipeline.Visit
	if err := json.NewDecoder(r.Body).Decode(&visit); err != nil {
		renderJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if visit.URL == "" {
		renderJSON(w, http.StatusBadRequest, map[string]string{"error": "url is required"})
		return
	}

	visit = visit.Normalize(time.Now())
	out := s.processor.Process(r.Context(), visit)

	resp := ingestResponse{
		Accepted:  true,
		URL:       visit.URL,
		TabID:     visit.TabID,
		Timestamp: visit.Timestamp,
	}
	if out.Err != "" {
		resp.Error = out.Err
	} else {
		resp.Extraction = &out.Extraction
		resp.Analysis = out.Analysis
	}

	renderJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	records, err := s.store.ListRecent(r.Context(), limit)
	if err != nil {
		s.logger.Error("listing records", "error", err)
		renderJSON(w, http.StatusOK, map[string]string{"error": "read_error: " + err.Error()})
		return
	}

	renderJSON(w, http.StatusOK, records)
}

func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
