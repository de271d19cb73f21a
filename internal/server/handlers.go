package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/seisho/internal/models"
	"github.com/hyperjump/seisho/internal/search"
	"github.com/hyperjump/seisho/internal/worker"
)

func (s *Server) handleCrossReference(w http.ResponseWriter, r *http.Request) {
	var req models.CrossReferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	scope, err := search.ProcessCrossReference(&req, s.config.Search.MinQueryLength, s.engine.Engine().Volumes())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("cross reference request", zap.String("query", req.Query), zap.Stringer("scope", scope.Kind))
	resp, ok := await(s, w, r, s.engine.CrossReference(r.Context(), scope, req.Query))
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleProximity(w http.ResponseWriter, r *http.Request) {
	var req models.ProximityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	distance, err := search.ProcessProximity(&req, s.config.Search.DefaultProximityDistance)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	resp, ok := await(s, w, r, s.engine.Proximity(r.Context(), req.Term1, req.Term2, distance))
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBookFrequencies(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeFrequencyRequest(w, r)
	if !ok {
		return
	}
	resp, ok := await(s, w, r, s.engine.BookFrequencies(r.Context(), req.Terms))
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChapterFrequencies(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeFrequencyRequest(w, r)
	if !ok {
		return
	}
	if req.Book == "" {
		s.respondError(w, http.StatusBadRequest, "book is required")
		return
	}
	resp, ok := await(s, w, r, s.engine.ChapterFrequencies(r.Context(), req.Book, req.Terms))
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) decodeFrequencyRequest(w http.ResponseWriter, r *http.Request) (*models.FrequencyRequest, bool) {
	var req models.FrequencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	if err := search.ProcessFrequency(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return &req, true
}

func (s *Server) handleVolumes(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"volumes": s.engine.Engine().Volumes()})
}

func (s *Server) handleLoadVolume(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	st, ok := s.engine.Engine().LoadVolume(r.Context(), name)
	if !ok {
		s.respondError(w, http.StatusNotFound, "volume not found")
		return
	}
	s.respondJSON(w, http.StatusOK, st)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"volumes": s.engine.Engine().Status(),
		"config": map[string]interface{}{
			"source":                     s.config.Corpus.Source,
			"workers":                    s.config.Search.Workers,
			"default_proximity_distance": s.config.Search.DefaultProximityDistance,
			"min_query_length":           s.config.Search.MinQueryLength,
		},
	}
	if s.disk != nil {
		if n, err := s.disk.DiskUsageBytes(); err == nil {
			resp["disk_usage_bytes"] = n
		} else {
			s.logger.Warn("status: disk usage failed", zap.Error(err))
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// await waits for a query future, writing an error response when the request is
// cancelled or the worker pool has shut down.
func await[T any](s *Server, w http.ResponseWriter, r *http.Request, f *worker.Future[T]) (T, bool) {
	val, err := f.Wait(r.Context())
	if err == nil {
		return val, true
	}
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.logger.Debug("request abandoned", zap.String("job_id", f.ID()), zap.Error(err))
		s.respondError(w, http.StatusServiceUnavailable, "request cancelled")
	case errors.Is(err, worker.ErrPoolClosed):
		s.respondError(w, http.StatusServiceUnavailable, "server shutting down")
	default:
		s.logger.Error("query failed", zap.String("job_id", f.ID()), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
	var zero T
	return zero, false
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
