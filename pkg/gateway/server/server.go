// Package server wires the gateway's routes and middleware chain.
package server

import (
	"log/slog"
	"net/http"

	"github.com/voxhire/voxhire/pkg/gateway/config"
	"github.com/voxhire/voxhire/pkg/gateway/handlers"
	"github.com/voxhire/voxhire/pkg/gateway/lifecycle"
	"github.com/voxhire/voxhire/pkg/gateway/metrics"
	"github.com/voxhire/voxhire/pkg/gateway/mw"
	"github.com/voxhire/voxhire/pkg/gateway/sessions"
	"github.com/voxhire/voxhire/pkg/store"
)

type Server struct {
	cfg       config.Config
	log       *slog.Logger
	mux       *http.ServeMux
	registry  *sessions.Registry
	metrics   *metrics.Metrics
	store     store.Repository
	lifecycle *lifecycle.State
}

type Dependencies struct {
	Config    config.Config
	Logger    *slog.Logger
	Registry  *sessions.Registry
	Metrics   *metrics.Metrics
	Store     store.Repository
	Lifecycle *lifecycle.State
}

func New(deps Dependencies) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Registry == nil {
		deps.Registry = sessions.NewRegistry()
	}
	if deps.Lifecycle == nil {
		deps.Lifecycle = lifecycle.New()
	}
	s := &Server{
		cfg:       deps.Config,
		log:       deps.Logger,
		mux:       http.NewServeMux(),
		registry:  deps.Registry,
		metrics:   deps.Metrics,
		store:     deps.Store,
		lifecycle: deps.Lifecycle,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.Handle("/healthz", handlers.HealthHandler())
	s.mux.Handle("/readyz", handlers.ReadyHandler(s.lifecycle, s.store, s.registry))
	if s.metrics != nil {
		s.mux.Handle("/metrics", s.metrics.Handler())
	}
	s.mux.Handle("/v1/interview",
		handlers.NewInterviewHandler(s.cfg, s.log, s.registry, s.metrics, s.store, s.lifecycle))
}

// Handler returns the root handler with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = mw.Auth(s.cfg, h)
	h = mw.CORS(s.cfg.CORSAllowedOrigins, h)
	h = mw.Recover(s.log, h)
	h = mw.AccessLog(s.log, h)
	h = mw.RequestID(h)
	return h
}

// Registry exposes the session registry for shutdown coordination.
func (s *Server) Registry() *sessions.Registry { return s.registry }

// Lifecycle exposes the draining state for shutdown coordination.
func (s *Server) Lifecycle() *lifecycle.State { return s.lifecycle }
