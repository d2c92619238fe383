// internal/app/features/auth/routes.go
package auth

import (
	"github.com/go-chi/chi/v5"

	"github.com/tagauto/tagauto/internal/app/system/ratelimit"
)

// Routes returns the router for the credential endpoints. The limiter keeps
// password guessing per client IP in check.
func Routes(h *Handler, limiter *ratelimit.Limiter) chi.Router {
	r := chi.NewRouter()
	r.Use(limiter.Middleware)

	r.Post("/register", h.ServeRegister)
	r.Post("/login", h.ServeLogin)
	r.Post("/reauth", h.ServeReauth)

	return r
}
