// Package http exposes the assessment engine over a chi router.
package http

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wellness-engine/internal/assessment"
	"wellness-engine/internal/common/config"
	"wellness-engine/internal/common/logger"
)

// Server holds the current runner. The runner is swapped atomically once
// reference data finishes loading, so handlers never block on the load.
type Server struct {
	cfg    config.ServerConfig
	logger logger.Logger
	runner atomic.Pointer[assessment.Runner]
	ready  atomic.Bool
}

// NewServer starts not ready; call SetRunner when reference data is in place.
// A runner passed here serves requests immediately.
func NewServer(cfg config.ServerConfig, runner *assessment.Runner, log logger.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		logger: log.WithFields(map[string]interface{}{"component": "http"}),
	}
	if runner != nil {
		s.runner.Store(runner)
	}
	return s
}

// SetRunner installs a runner built over freshly loaded tables and marks the
// server ready.
func (s *Server) SetRunner(r *assessment.Runner) {
	s.runner.Store(r)
	s.ready.Store(true)
}

// MarkReady flags readiness without swapping the runner, for deployments
// with no reference source.
func (s *Server) MarkReady() { s.ready.Store(true) }

func (s *Server) Ready() bool { return s.ready.Load() }

// Router builds the handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, s.requestLogger, middleware.Recoverer)
	if s.cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(config.GetDuration(s.cfg.RequestTimeout)))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/", RootHandler())
	r.Get("/health", HealthHandler())
	r.Get("/ready", ReadyHandler(s))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// original path kept for existing clients
	r.Post("/process-assessment", AssessmentHandler(s, s.cfg.MaxBodyBytes))

	r.Route("/api/v1", func(api chi.Router) {
		api.Post("/assessments", AssessmentHandler(s, s.cfg.MaxBodyBytes))
		api.Post("/ranges/parse", ParseRangeHandler(s.cfg.MaxBodyBytes))
		api.Get("/reference/age-groups", AgeGroupsHandler())
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Info("request handled", map[string]interface{}{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"durationMs": time.Since(start).Milliseconds(),
			"requestId":  middleware.GetReqID(r.Context()),
		})
	})
}

// NewHTTPServer wraps the router with the configured address and timeouts.
func (s *Server) NewHTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.Address(),
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
}
