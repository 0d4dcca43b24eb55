package v1

import (
	"context"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/config"
)

type Server struct {
	httpServer *http.Server
}

func NewServer(log *slog.Logger, cfg config.HTTP, runner Runner, runsRepo RunsRepository) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
			Handler:      NewRouter(log, runner, runsRepo),
		},
	}
}

func NewRouter(log *slog.Logger, runner Runner, runsRepo RunsRepository) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	h := NewRunsHandler(log, runner, runsRepo)

	r.Get("/health", h.Health)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/runs", h.StartRun)
		r.Get("/runs", h.GetRuns)
		r.Get("/runs/{run_id}", h.GetRun)
	})

	return r
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}

func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
