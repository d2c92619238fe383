// internal/app/features/ws/routes.go
package ws

import "github.com/go-chi/chi/v5"

// TicketRoutes returns the ticket-issuing router, mounted behind the
// bearer-token middleware.
func TicketRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.ServeTicket)
	return r
}
