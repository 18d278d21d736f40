package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kraftworks/kraft/internal/engine"
	"github.com/kraftworks/kraft/internal/events"
	"github.com/kraftworks/kraft/internal/scoring"
	"github.com/kraftworks/kraft/internal/store"
)

func NewRouter(s store.Store, e *engine.Engine, ev events.Client, defaultStrategy scoring.Strategy, maxPairs int, adminToken string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(120))

	allocate := NewAllocateHandler(s, e, ev, defaultStrategy, maxPairs, logger)
	tasks := NewTasksHandler(s)
	members := NewMembersHandler(s)
	constraints := NewConstraintsHandler(s)
	stats := NewStatsHandler(s)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/allocate", allocate.Run)
		r.Post("/allocate/explain_task", allocate.ExplainTask)

		r.Get("/stats/pre_allocation", stats.PreAllocation)

		r.Post("/tasks", tasks.Create)
		r.Get("/tasks", tasks.List)
		r.Get("/tasks/{id}", tasks.Get)

		r.Get("/members", members.List)
		r.Post("/members", members.Create)

		r.Get("/constraints", constraints.List)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(adminToken))
			r.Post("/constraints", constraints.Create)
		})
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
