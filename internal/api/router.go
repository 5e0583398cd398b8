package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/caseificio/internal/service"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *service.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Route("/cheese-types", func(r chi.Router) {
		r.Get("/", h.ListCheeseTypes)
		r.Post("/", h.CreateCheeseType)
		r.Get("/{id}", h.GetCheeseType)
		r.Put("/{id}", h.UpdateCheeseType)
		r.Delete("/{id}", h.DeleteCheeseType)
	})

	r.Route("/productions", func(r chi.Router) {
		r.Get("/", h.ListProductions)
		r.Post("/", h.CreateProduction)
		r.Get("/{id}", h.GetProduction)
		r.Put("/{id}", h.UpdateProduction)
		r.Delete("/{id}", h.DeleteProduction)
	})

	r.Route("/activities", func(r chi.Router) {
		r.Get("/", h.ListActivities)
		r.Post("/", h.CreateActivity)
		r.Get("/{id}", h.GetActivity)
		r.Put("/{id}", h.UpdateActivity)
		r.Delete("/{id}", h.DeleteActivity)
		r.Post("/{id}/toggle", h.ToggleCompletion)
		r.Get("/{id}/occurrences", h.Occurrences)
	})

	r.Get("/agenda", h.Agenda)
	r.Get("/agenda/range", h.AgendaRange)

	r.Get("/stats/monthly", h.MonthlyStats)
	r.Get("/stats/yearly", h.YearlyStats)
	r.Get("/stats/years", h.Years)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
