package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Server serves /metrics and /healthz for the scheduler process.
type Server struct {
	httpServer *http.Server
	logger     *logrus.Entry
}

func NewServer(addr string, gatherer prometheus.Gatherer, health HealthCheck, logger *logrus.Entry) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           Router(gatherer, health),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger.WithField("component", "ops_http"),
	}
}

// Router builds the ops routes.
func Router(gatherer prometheus.Gatherer, health HealthCheck) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if health != nil {
			ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
			defer cancel()
			if err := health(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	return r
}

// Start listens in the background. Listener errors other than a clean shutdown are logged.
func (s *Server) Start() {
	s.logger.WithField("addr", s.httpServer.Addr).Info("Ops HTTP server listening")
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.WithError(err).Error("Ops HTTP server stopped")
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
