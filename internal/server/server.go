// Package server exposes the question answering pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"go.uber.org/zap"

	"motorag/internal/domain"
	"motorag/internal/pipeline"
	"motorag/internal/quality"
)

// maxBatchSize bounds one batch request; larger batches should be split by
// the caller.
const maxBatchSize = 10

// Server wires the engine to the JSON API.
type Server struct {
	engine *pipeline.Engine
	addr   string
	log    *zap.Logger
}

func New(engine *pipeline.Engine, addr string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{engine: engine, addr: addr, log: log}
}

type queryRequest struct {
	Query      string `json:"query"`
	TopK       int    `json:"top_k,omitempty"`
	SkillLevel string `json:"skill_level,omitempty"`
}

type batchRequest struct {
	Queries    []string `json:"queries"`
	TopK       int      `json:"top_k,omitempty"`
	SkillLevel string   `json:"skill_level,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Start runs the HTTP server until the context is canceled.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/query", s.handleQuery)
	mux.HandleFunc("/api/v1/query/batch", s.handleBatch)
	mux.HandleFunc("/api/v1/query/suggestions", s.handleSuggestions)
	mux.HandleFunc("/health", s.handleHealth)

	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.loggingMiddleware(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	s.log.Info("http server starting", zap.String("addr", s.addr))

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	opts, err := toOptions(req.TopK, req.SkillLevel)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result := s.engine.AnswerQuery(r.Context(), req.Query, opts)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Queries) == 0 {
		writeError(w, http.StatusBadRequest, "queries is required")
		return
	}
	if len(req.Queries) > maxBatchSize {
		writeError(w, http.StatusBadRequest, "batch size exceeds limit of 10")
		return
	}
	opts, err := toOptions(req.TopK, req.SkillLevel)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	results := s.engine.BatchQuery(r.Context(), req.Queries, opts)
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// handleSuggestions returns the built-in example queries, optionally
// filtered to one category.
func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	all := quality.CategoryQueries()
	category := r.URL.Query().Get("category")
	if category != "" {
		queries, ok := all[category]
		if !ok {
			writeError(w, http.StatusNotFound, "unknown category")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"category": category, "queries": queries})
		return
	}
	categories := make([]string, 0, len(all))
	for name := range all {
		categories = append(categories, name)
	}
	sort.Strings(categories)
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories, "suggestions": all})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats, err := s.engine.Stats(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "stats": stats})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)))
	})
}

func toOptions(topK int, skillLevel string) (pipeline.QueryOptions, error) {
	skill, err := domain.ParseSkillLevel(skillLevel)
	if err != nil {
		return pipeline.QueryOptions{}, err
	}
	return pipeline.QueryOptions{TopK: topK, SkillLevel: skill}, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
