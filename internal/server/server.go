// Package server exposes optimization runs as asynchronous jobs over a
// JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/optkit-io/optkit/internal/config"
	apperrors "github.com/optkit-io/optkit/internal/errors"
	"github.com/optkit-io/optkit/internal/logging"
	"github.com/optkit-io/optkit/internal/metrics"
	"github.com/optkit-io/optkit/objectives"
	"github.com/optkit-io/optkit/opt"
)

// Server wires the job manager, the worker pool and the HTTP API.
type Server struct {
	cfg     *config.Config
	log     *zap.Logger
	metrics *metrics.Metrics
	manager *Manager
	pool    *Pool
	router  chi.Router
	http    *http.Server
}

// New assembles a server; the worker pool starts immediately, the
// listener only on Start.
func New(cfg *config.Config, log *zap.Logger, met *metrics.Metrics, eng EngineFactory) *Server {
	manager := NewManager(cfg.Optimization.JobCapacity)
	pool := NewPool(
		cfg.Optimization.WorkerCount,
		cfg.Optimization.JobCapacity,
		manager,
		met,
		log,
		eng,
		cfg.Optimization.RunTimeout,
	)

	s := &Server{
		cfg:     cfg,
		log:     log,
		metrics: met,
		manager: manager,
		pool:    pool,
	}
	s.routes()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware(s.log))
	r.Use(apperrors.Recovery(s.log))
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/objectives", s.handleObjectives)
		r.Route("/runs", func(r chi.Router) {
			r.Post("/", s.handleSubmit)
			r.Get("/", s.handleList)
			r.Get("/{id}", s.handleGet)
			r.Delete("/{id}", s.handleCancel)
		})
	})
	s.router = r
}

// Start serves until the listener fails or Shutdown runs.
func (s *Server) Start() error {
	s.http = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.HTTP.Port),
		Handler:      s.router,
		ReadTimeout:  s.cfg.HTTP.ReadTimeout,
		WriteTimeout: s.cfg.HTTP.WriteTimeout,
		IdleTimeout:  s.cfg.HTTP.IdleTimeout,
	}

	s.log.Info("http server listening", zap.Int("port", s.cfg.HTTP.Port))
	if err := s.http.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the listener, cancels in-flight jobs and drains the
// worker pool within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.http != nil {
		err = s.http.Shutdown(ctx)
	}

	s.manager.CancelAll()
	done := make(chan struct{})
	go func() {
		s.pool.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleObjectives(w http.ResponseWriter, _ *http.Request) {
	type objectiveInfo struct {
		Name        string       `json:"name"`
		Description string       `json:"description"`
		Dim         int          `json:"dim"`
		Bounds      [][2]float64 `json:"bounds"`
		Initial     []float64    `json:"initial"`
		BestScore   float64      `json:"bestScore"`
	}

	names := objectives.Names()
	out := make([]objectiveInfo, 0, len(names))
	for _, name := range names {
		p, err := objectives.Lookup(name)
		if err != nil {
			continue
		}
		bounds := make([][2]float64, len(p.Bounds))
		for i, b := range p.Bounds {
			bounds[i] = [2]float64{b.Min(), b.Max()}
		}
		out = append(out, objectiveInfo{
			Name:        p.Name,
			Description: p.Description,
			Dim:         p.Dim,
			Bounds:      bounds,
			Initial:     p.Initial,
			BestScore:   p.BestScore,
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"objectives": out})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := validateRequest(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := s.manager.Submit(req)
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	if !s.pool.Enqueue(job.ID) {
		s.manager.update(job.ID, func(j *Job) {
			j.State = StateFailed
			j.Error = "worker queue full"
		})
		s.writeError(w, http.StatusServiceUnavailable, "worker queue full")
		return
	}

	s.metrics.RunsSubmitted.Inc()
	s.log.Info("job submitted",
		zap.String("job_id", job.ID),
		zap.String("objective", req.Objective),
		zap.String("method", req.Method))
	s.writeJSON(w, http.StatusAccepted, map[string]string{
		"id":    job.ID,
		"state": string(job.State),
	})
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"runs": s.manager.List()})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	job, ok := s.manager.Get(chi.URLParam(r, "id"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}
	s.writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	switch err := s.manager.Cancel(id); {
	case errors.Is(err, ErrNotFound):
		s.writeError(w, http.StatusNotFound, "job not found")
	case errors.Is(err, ErrFinished):
		s.writeError(w, http.StatusConflict, "job already finished")
	default:
		s.log.Info("job cancel requested", zap.String("job_id", id))
		s.writeJSON(w, http.StatusAccepted, map[string]string{
			"id":    id,
			"state": "cancelling",
		})
	}
}

// validateRequest rejects everything a worker could not execute, so
// submission failures surface synchronously as 400s.
func validateRequest(req *RunRequest) error {
	prob, err := objectives.Lookup(req.Objective)
	if err != nil {
		return err
	}
	if _, err := opt.ParseMethod(req.Method); err != nil {
		return err
	}
	switch strings.ToLower(req.Direction) {
	case "min", "minimize", "max", "maximize":
	default:
		return fmt.Errorf("server: direction must be min or max, got %q", req.Direction)
	}
	if len(req.Initial) > 0 && len(req.Initial) != prob.Dim {
		return fmt.Errorf("server: initial guess has %d values, %s takes %d",
			len(req.Initial), prob.Name, prob.Dim)
	}
	if len(req.Bounds) > 0 && len(req.Bounds) != prob.Dim {
		return fmt.Errorf("server: %d bounds for %d parameters of %s",
			len(req.Bounds), prob.Dim, prob.Name)
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("response encoding failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
