package optionshttp

import "github.com/go-chi/chi/v5"

// MountRoutes attaches the options endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{kind}", h.handleList)
}
