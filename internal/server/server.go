// Package server provides the HTTP API for Seisho.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/hyperjump/seisho/internal/config"
	"github.com/hyperjump/seisho/internal/search"
)

// DiskUsager reports the size of the corpus database.
type DiskUsager interface {
	DiskUsageBytes() (int64, error)
}

// Server is the HTTP server for the Seisho API.
type Server struct {
	engine  *search.AsyncEngine
	config  *config.Config
	disk    DiskUsager
	limiter *rate.Limiter
	logger  *zap.Logger
	server  *http.Server
}

// NewServer creates a server. disk may be nil when the corpus is served from files.
func NewServer(engine *search.AsyncEngine, cfg *config.Config, disk DiskUsager, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	var limiter *rate.Limiter
	if cfg.Server.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Server.RequestsPerSecond), max(cfg.Server.Burst, 1))
	}
	return &Server{
		engine:  engine,
		config:  cfg,
		disk:    disk,
		limiter: limiter,
		logger:  logger,
	}
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/health", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.rateLimit)
		r.Post("/search/crossref", s.handleCrossReference)
		r.Post("/search/proximity", s.handleProximity)
		r.Post("/frequency/books", s.handleBookFrequencies)
		r.Post("/frequency/chapters", s.handleChapterFrequencies)
		r.Get("/volumes", s.handleVolumes)
		r.Post("/volumes/{name}/load", s.handleLoadVolume)
		r.Get("/status", s.handleStatus)
	})
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			s.respondError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}
