package router

import (
	"net/http"

	"github.com/Abdurahmanit/reusehub/internal/adapter/http/handler"
	"github.com/Abdurahmanit/reusehub/internal/adapter/http/middleware"
	"github.com/Abdurahmanit/reusehub/internal/platform/logger"
	"github.com/Abdurahmanit/reusehub/internal/platform/metrics"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type Handlers struct {
	Listing  *handler.ListingHandler
	Disposal *handler.DisposalHandler
	Health   *handler.HealthHandler
}

type Options struct {
	AllowedOrigins []string
	// Metrics enables request metrics and the /metrics endpoint when set.
	Metrics *metrics.MetricsManager
}

func NewRouter(h Handlers, opts Options, log *logger.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Tracing)
	if opts.Metrics != nil {
		r.Use(middleware.Metrics(opts.Metrics))
	}
	r.Use(middleware.CORS(opts.AllowedOrigins))

	r.Get("/", h.Health.HandleRoot)
	r.Get("/healthz", h.Health.HandleHealthz)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	SetupListingRoutes(r, h.Listing)
	SetupDisposalRoutes(r, h.Disposal)
	return r
}

func SetupListingRoutes(r chi.Router, h *handler.ListingHandler) {
	r.Route("/api/items", func(r chi.Router) {
		r.Get("/", h.HandleListListings)
		r.Post("/", h.HandleCreateListing)
		r.Get("/{id}", h.HandleGetListing)
		r.Put("/{id}/status", h.HandleUpdateStatus)
	})
	r.Get("/api/stats", h.HandleStats)
}

func SetupDisposalRoutes(r chi.Router, h *handler.DisposalHandler) {
	r.Post("/api/disposal-guidance", h.HandleGuidance)
}
