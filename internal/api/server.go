package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"pairScope/internal/pairlist"
)

// Pipeline is the part of the manager the server exposes.
type Pipeline interface {
	Pairs() []string
	Statistics() pairlist.Statistics
	Refresh(ctx context.Context) bool
}

type Config struct {
	Addr           string
	RefreshTimeout time.Duration
	Metrics        http.Handler
}

// Server serves the published pair list over HTTP.
type Server struct {
	pipeline Pipeline
	cfg      Config
	router   *mux.Router
	logger   *zap.Logger
}

type pairsResponse struct {
	Pairs     []string  `json:"pairs"`
	Count     int       `json:"count"`
	UpdatedAt time.Time `json:"updated_at"`
}

type refreshResponse struct {
	Published bool     `json:"published"`
	Pairs     []string `json:"pairs"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewServer(pipeline Pipeline, cfg Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RefreshTimeout <= 0 {
		cfg.RefreshTimeout = time.Minute
	}
	s := &Server{
		pipeline: pipeline,
		cfg:      cfg,
		router:   mux.NewRouter(),
		logger:   logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(s.logRequests)

	s.router.HandleFunc("/health", s.health).Methods(http.MethodGet)
	s.router.HandleFunc("/pairs", s.pairs).Methods(http.MethodGet)
	s.router.HandleFunc("/stats", s.stats).Methods(http.MethodGet)
	s.router.HandleFunc("/refresh", s.refresh).Methods(http.MethodPost)
	if s.cfg.Metrics != nil {
		s.router.Handle("/metrics", s.cfg.Metrics).Methods(http.MethodGet)
	}
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	})
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) pairs(w http.ResponseWriter, _ *http.Request) {
	pairs := s.pipeline.Pairs()
	stats := s.pipeline.Statistics()
	s.writeJSON(w, http.StatusOK, pairsResponse{
		Pairs:     pairs,
		Count:     len(pairs),
		UpdatedAt: stats.LastRefreshTime,
	})
}

func (s *Server) stats(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.pipeline.Statistics())
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RefreshTimeout)
	defer cancel()

	published := s.pipeline.Refresh(ctx)
	s.writeJSON(w, http.StatusOK, refreshResponse{Published: published, Pairs: s.pipeline.Pairs()})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()[:8]
		w.Header().Set("X-Request-ID", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.Debug("http request",
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Debug("http response write failed", zap.Int("status", status), zap.Error(err))
	}
}
