package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/variant-service/internal/service"
	"github.com/utafrali/variant-service/pkg/health"
	"github.com/utafrali/variant-service/pkg/middleware"
)

const serviceName = "variant"

// RouterConfig tunes the HTTP surface.
type RouterConfig struct {
	CORS        middleware.CORSConfig
	CacheMaxAge int // seconds; 0 disables Cache-Control on reads
}

// NewRouter creates a chi router with all variant service routes registered.
func NewRouter(
	selectionService *service.SelectionService,
	catalogService *service.CatalogService,
	healthHandler *health.Handler,
	logger *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	registerValidations()

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics(serviceName))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	h := NewSelectionHandler(selectionService, catalogService, logger)

	r.Route("/api/v1/products/{productId}", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(cfg.CacheMaxAge))
			r.Get("/selection", h.GetSelection)
			r.Get("/installments", h.GetInstallments)
		})
		r.Post("/selection", h.SelectDimension)

		// Admin operations
		r.Post("/catalog/refresh", h.RefreshCatalog)
	})

	return r
}
