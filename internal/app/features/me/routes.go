// internal/app/features/me/routes.go
package me

import "github.com/go-chi/chi/v5"

// Routes returns the router for the profile endpoints. Mounted behind the
// bearer-token middleware.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeGet)
	r.Put("/", h.ServeUpdate)
	r.Put("/device-token", h.ServeDeviceToken)
	return r
}
