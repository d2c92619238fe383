// internal/app/features/heartbeat/routes.go
package heartbeat

import (
	"github.com/go-chi/chi/v5"
	"github.com/tagauto/tagauto/internal/app/system/auth"
)

// Routes returns the router for heartbeat endpoints.
func Routes(h *Handler, tokens *auth.Manager) chi.Router {
	r := chi.NewRouter()

	// Require a bearer token
	r.Use(tokens.RequireUser)

	r.Post("/", h.ServeHeartbeat)

	return r
}
