package api

import (
	"net/http"

	"github.com/St1cky1/roster/internal/api/handlers"
	"github.com/St1cky1/roster/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

type RouterDeps struct {
	Views  *handlers.Views
	Health *handlers.HealthHandler
	Log    logrus.FieldLogger

	// main передает prometheus.DefaultRegisterer/DefaultGatherer,
	// тесты - отдельный prometheus.NewRegistry()
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

func NewRouter(deps RouterDeps) *chi.Mux {
	metrics := middleware.NewMetrics(deps.Registerer)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(deps.Log))
	r.Use(metrics.Middleware)
	r.Use(chimw.Recoverer)

	v := deps.Views
	r.Get("/", v.Main)

	r.Route("/person-list", func(r chi.Router) {
		r.Get("/", v.PersonList)
		r.Post("/", v.CreatePerson)
		r.Post("/{id}/delete", v.DeletePerson)
	})

	r.Route("/task-list", func(r chi.Router) {
		r.Get("/", v.TaskList)
		r.Post("/", v.CreateTask)
		r.Post("/{id}/done", v.ToggleDone)
		r.Get("/{id}/delete", v.ConfirmDeleteTask)
		r.Post("/{id}/delete", v.DeleteTask)
	})

	r.Get("/healthz", deps.Health.Healthz)
	r.Method(http.MethodGet, "/metrics", middleware.Handler(deps.Gatherer))

	return r
}
