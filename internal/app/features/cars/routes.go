// internal/app/features/cars/routes.go
package cars

import "github.com/go-chi/chi/v5"

// Routes returns the router for car endpoints, mounted at /cars behind the
// bearer-token middleware.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Post("/{carID}/claim", h.ServeClaim)
	r.Post("/{carID}/park", h.ServePark)
	r.Put("/{carID}/note", h.ServeNote)
	r.Put("/{carID}", h.ServeUpdate)
	r.Delete("/{carID}", h.ServeDelete)
	return r
}

// GroupRoutes returns the car-creation router, mounted at
// /groups/{groupID}/cars.
func GroupRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.ServeCreate)
	return r
}
