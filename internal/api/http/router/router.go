package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dtroode/starboard/internal/api/http/handler"
	"github.com/dtroode/starboard/internal/api/http/middleware"
	"github.com/dtroode/starboard/internal/logger"
)

// Router wires the tier endpoints, health and metrics.
type Router struct {
	primary  handler.DocumentService
	legacy   handler.DocumentService
	registry *prometheus.Registry
	logger   *logger.Logger
}

func New(
	primary handler.DocumentService,
	legacy handler.DocumentService,
	logger *logger.Logger,
) *Router {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Router{
		primary:  primary,
		legacy:   legacy,
		registry: registry,
		logger:   logger,
	}
}

// Register builds the HTTP handler.
func (r *Router) Register() http.Handler {
	logging := middleware.NewLogging(r.logger)
	metrics := middleware.NewMetrics(r.registry)

	mux := chi.NewRouter()
	mux.Use(chimw.RequestID, chimw.RealIP, logging.Handle, chimw.Recoverer, metrics.Handle)

	mux.Get("/health", handler.Health)
	mux.Handle("/metrics", promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))

	r.registerTier(mux, "/api/data", r.primary)
	r.registerTier(mux, "/api/legacy", r.legacy)

	return mux
}

func (r *Router) registerTier(mux chi.Router, path string, service handler.DocumentService) {
	h := handler.NewDocument(service, r.logger)
	mux.Get(path, h.Get)
	mux.Put(path, h.Put)
}
