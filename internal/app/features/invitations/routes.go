// internal/app/features/invitations/routes.go
package invitations

import "github.com/go-chi/chi/v5"

// Routes returns the router for the invitee-side endpoints, mounted at
// /invitations behind the bearer-token middleware.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Post("/{invitationID}/accept", h.ServeAccept)
	r.Delete("/{invitationID}", h.ServeDecline)
	return r
}

// GroupRoutes returns the inviter-side router, mounted at
// /groups/{groupID}/invitations.
func GroupRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.ServeCreate)
	return r
}
