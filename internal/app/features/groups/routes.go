// internal/app/features/groups/routes.go
package groups

import "github.com/go-chi/chi/v5"

// Routes returns the router for the group endpoints. Mounted behind the
// bearer-token middleware; the invitation-create and car-create subroutes
// are mounted alongside these in the bootstrap router.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.ServeCreate)
	r.Get("/", h.ServeList)
	r.Get("/{groupID}", h.ServeGet)
	r.Delete("/{groupID}", h.ServeDelete)
	r.Delete("/{groupID}/members/{userID}", h.ServeRemoveMember)
	return r
}
