package coach

import "github.com/go-chi/chi/v5"

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/", h.Root)
	r.Get("/healthz", h.Health)
	r.Post("/dev/analyze", h.Analyze)
}
