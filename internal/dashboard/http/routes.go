package dashboardhttp

import "github.com/go-chi/chi/v5"

// MountRoutes attaches the dashboard endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/summary", h.handleSummary)
}
