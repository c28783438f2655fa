package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/meridian-mes/meridian-mes/internal/documents"
	"github.com/meridian-mes/meridian-mes/internal/master/companies"
	"github.com/meridian-mes/meridian-mes/internal/master/materials"
	"github.com/meridian-mes/meridian-mes/internal/master/orderitems"
	"github.com/meridian-mes/meridian-mes/internal/movement"
	"github.com/meridian-mes/meridian-mes/internal/observability"
	"github.com/meridian-mes/meridian-mes/internal/routing"
	"github.com/meridian-mes/meridian-mes/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	CompanyHandler   *companies.Handler
	MaterialHandler  *materials.Handler
	OrderItemHandler *orderitems.Handler
	RoutingHandler   *routing.Handler
	MovementHandlers *movement.Handlers
	DocumentHandler  *documents.Handler
	JobHandler       *jobs.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with Meridian defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/master", func(r chi.Router) {
		r.Route("/company", params.CompanyHandler.MountRoutes)
		r.Route("/material", params.MaterialHandler.MountRoutes)
		r.Route("/orderitem", params.OrderItemHandler.MountRoutes)
	})
	r.Route("/routing", params.RoutingHandler.MountRoutes)
	r.Route("/material/in", params.MovementHandlers.MaterialIn.MountRoutes)
	r.Route("/material/out", params.MovementHandlers.MaterialOut.MountRoutes)
	r.Route("/orderitem/in", params.MovementHandlers.OrderItemIn.MountRoutes)
	r.Route("/orderitem/out", params.MovementHandlers.OrderItemOut.MountRoutes)
	r.Route("/documents", params.DocumentHandler.MountRoutes)
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
