package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/neilpimley/McKenziesPharmacy-backend/internal/customers"
	"github.com/neilpimley/McKenziesPharmacy-backend/internal/orders"
	"github.com/neilpimley/McKenziesPharmacy-backend/internal/reminders"
	"github.com/neilpimley/McKenziesPharmacy-backend/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	CustomersHandler *customers.Handler
	OrdersHandler    *orders.Handler
	RemindersHandler *reminders.Handler
	JobsHandler      *jobs.Handler
}

// NewRouter constructs the chi.Router for the pharmacy API.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/customers", params.CustomersHandler.MountRoutes)
	r.Route("/api/orders", params.OrdersHandler.MountRoutes)
	r.Route("/api/reminders", params.RemindersHandler.MountRoutes)
	if params.JobsHandler != nil {
		r.Route("/jobs", params.JobsHandler.MountRoutes)
	}

	return r
}
