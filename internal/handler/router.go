package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter собирает роутер со всеми маршрутами API; extra middleware идет после стандартных
func NewRouter(h *TodoHandler, extra ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(extra...)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok"}`)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", h.State)
		r.Put("/draft", h.SetDraft)
		r.Put("/filter", h.SetFilter)

		r.Route("/todos", func(r chi.Router) {
			r.Get("/", h.List)
			r.Post("/", h.Create)
			r.Post("/move", h.Move)
			r.Post("/clear-completed", h.ClearCompleted)
			r.Post("/{id}/toggle", h.Toggle)
			r.Delete("/{id}", h.Delete)
		})
	})

	return r
}
