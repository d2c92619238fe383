// internal/app/features/account/routes.go
package account

import "github.com/go-chi/chi/v5"

// Routes returns the router for account lifecycle endpoints, mounted behind
// the bearer-token middleware.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Delete("/", h.ServeDelete)
	return r
}
