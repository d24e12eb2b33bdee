package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"tasklane/internal/auth"
	categoryhandler "tasklane/internal/http/handlers/category"
	"tasklane/internal/http/handlers/health"
	statshandler "tasklane/internal/http/handlers/stats"
	taghandler "tasklane/internal/http/handlers/tag"
	todohandler "tasklane/internal/http/handlers/todo"
	userhandler "tasklane/internal/http/handlers/user"
	"tasklane/internal/http/responses"
	"tasklane/internal/logging"
)

type Handlers struct {
	Health     *health.Handler
	Users      *userhandler.Handler
	Todos      *todohandler.Handler
	Categories *categoryhandler.Handler
	Tags       *taghandler.Handler
	Stats      *statshandler.Handler
}

func NewRouter(
	logger logging.Logger,
	issuer *auth.Issuer,
	h Handlers,
) chi.Router {
	r := chi.NewRouter()

	useBaseMiddlewares(r, logger)
	r.Use(auth.Middleware(issuer, logger))

	r.Route("/api/v1", func(r chi.Router) {
		// Health
		r.Get("/health", h.Health.Check)

		// User module
		r.Route("/users", func(r chi.Router) {
			r.Post("/register", h.Users.Register)
			r.Post("/login", h.Users.Login)
			r.Get("/{id}", h.Users.GetByID)
			r.Patch("/{id}", h.Users.Update)
			r.Delete("/{id}", h.Users.Delete)
		})

		// Todo module. Batch routes precede the {id} routes so chi does
		// not capture "batch" as an id.
		r.Route("/todos", func(r chi.Router) {
			r.Get("/", h.Todos.List)
			r.Post("/", h.Todos.Create)
			r.Patch("/batch", h.Todos.BatchUpdate)
			r.Delete("/batch", h.Todos.BatchDelete)
			r.Get("/{id}", h.Todos.GetByID)
			r.Patch("/{id}", h.Todos.Update)
			r.Delete("/{id}", h.Todos.Delete)

			r.Put("/{todoID}/tags/{tagID}", h.Tags.Assign)
			r.Delete("/{todoID}/tags/{tagID}", h.Tags.Unassign)
		})

		// Category module
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.Categories.List)
			r.Post("/", h.Categories.Create)
			r.Get("/{id}", h.Categories.GetByID)
			r.Patch("/{id}", h.Categories.Update)
			r.Delete("/{id}", h.Categories.Delete)
		})

		// Tag module
		r.Route("/tags", func(r chi.Router) {
			r.Get("/", h.Tags.List)
			r.Post("/", h.Tags.Create)
			r.Get("/{id}", h.Tags.GetByID)
			r.Delete("/{id}", h.Tags.Delete)
		})

		// Stats
		r.Get("/stats/todos", h.Stats.TodoStats)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		responses.WriteNotFound(w, r)
	})

	return r
}
