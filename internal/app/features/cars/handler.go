// internal/app/features/cars/handler.go
package cars

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	carstore "github.com/tagauto/tagauto/internal/app/store/cars"
	groupstore "github.com/tagauto/tagauto/internal/app/store/groups"
	"github.com/tagauto/tagauto/internal/app/store/queries/usercars"
	userstore "github.com/tagauto/tagauto/internal/app/store/users"
	"github.com/tagauto/tagauto/internal/app/system/apperr"
	"github.com/tagauto/tagauto/internal/app/system/auth"
	"github.com/tagauto/tagauto/internal/app/system/cascade"
	"github.com/tagauto/tagauto/internal/app/system/events"
	"github.com/tagauto/tagauto/internal/app/system/geocode"
	"github.com/tagauto/tagauto/internal/app/system/httpjson"
	"github.com/tagauto/tagauto/internal/app/system/metrics"
	"github.com/tagauto/tagauto/internal/app/system/sanitize"
	"github.com/tagauto/tagauto/internal/app/system/timeouts"
	"github.com/tagauto/tagauto/internal/domain/models"
)

// Handler serves the vehicle registry: cars in groups, the claim and park
// state machine, and the map-screen listing.
type Handler struct {
	DB      *mongo.Database
	Users   *userstore.Store
	Groups  *groupstore.Store
	Cars    *carstore.Store
	Cascade *cascade.Service
	Events  *events.Broadcaster
	Geo     geocode.Reverser
	Log     *zap.Logger
}

func NewHandler(db *mongo.Database, casc *cascade.Service, ev *events.Broadcaster, geo geocode.Reverser, logger *zap.Logger) *Handler {
	return &Handler{
		DB:      db,
		Users:   userstore.New(db),
		Groups:  groupstore.New(db),
		Cars:    carstore.New(db),
		Cascade: casc,
		Events:  ev,
		Geo:     geo,
		Log:     logger,
	}
}

type createRequest struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// ServeCreate handles POST /groups/{groupID}/cars. New cars start parked
// with no location.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.CurrentUser(r)

	var req createRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	req.Name = sanitize.Text(req.Name)
	if req.Name == "" {
		httpjson.WriteError(w, h.Log, apperr.Validation("car name is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	groupID := chi.URLParam(r, "groupID")
	group, err := h.Groups.GetByID(ctx, groupID)
	if err != nil {
		httpjson.WriteError(w, h.Log, apperr.FromMongo(err, "group"))
		return
	}
	if !group.HasMember(p.UserID) {
		httpjson.WriteError(w, h.Log, apperr.NotFound("group"))
		return
	}

	car, err := h.Cascade.CreateCar(ctx, models.Car{
		Name:    req.Name,
		Icon:    sanitize.Text(req.Icon),
		GroupID: group.ID,
	})
	if err != nil {
		metrics.WorkflowOutcomes.WithLabelValues("car_create", "error").Inc()
		httpjson.WriteError(w, h.Log, apperr.Remote(err))
		return
	}
	metrics.WorkflowOutcomes.WithLabelValues("car_create", "ok").Inc()

	h.Events.CarChanged(events.TypeCarCreated, group.Members, group.ID, car.ID, map[string]any{
		"name": car.Name,
	})
	httpjson.Write(w, http.StatusCreated, car)
}

// ServeList handles GET /cars: every car in every group the caller belongs
// to, annotated with group names for the map screen.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	user, err := h.Users.GetByID(ctx, p.UserID)
	if err != nil {
		httpjson.WriteError(w, h.Log, apperr.FromMongo(err, "user"))
		return
	}
	cars, err := usercars.CarsForUser(ctx, h.DB, user)
	if err != nil {
		httpjson.WriteError(w, h.Log, apperr.Remote(err))
		return
	}
	httpjson.Write(w, http.StatusOK, cars)
}

// ServeClaim handles POST /cars/{carID}/claim. Claims are last-write-wins:
// there is no conflict answer, the latest claimant simply holds the car.
func (h *Handler) ServeClaim(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	car, group, err := h.loadForMember(ctx, r)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	if err := h.Cars.MarkInUse(ctx, car.ID, p.UserID, p.FullName); err != nil {
		metrics.WorkflowOutcomes.WithLabelValues("car_claim", "error").Inc()
		httpjson.WriteError(w, h.Log, apperr.Remote(err))
		return
	}
	metrics.WorkflowOutcomes.WithLabelValues("car_claim", "ok").Inc()

	h.Events.CarChanged(events.TypeCarClaimed, group.Members, group.ID, car.ID, map[string]any{
		"userId":   p.UserID,
		"fullName": p.FullName,
	})
	h.respondWithCar(w, ctx, car.ID)
}

type parkRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ServePark handles POST /cars/{carID}/park: record where the car now
// stands and release whatever claim was on it. Anyone in the group can park
// a car, not just the claimant.
func (h *Handler) ServePark(w http.ResponseWriter, r *http.Request) {
	var req parkRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	if req.Lat < -90 || req.Lat > 90 || req.Lng < -180 || req.Lng > 180 {
		httpjson.WriteError(w, h.Log, apperr.Validation("coordinates out of range"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	car, group, err := h.loadForMember(ctx, r)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	loc := models.GeoPoint{Lat: req.Lat, Lng: req.Lng}
	if err := h.Cars.SetLocationAndRelease(ctx, car.ID, loc); err != nil {
		metrics.WorkflowOutcomes.WithLabelValues("car_park", "error").Inc()
		httpjson.WriteError(w, h.Log, apperr.Remote(err))
		return
	}
	metrics.WorkflowOutcomes.WithLabelValues("car_park", "ok").Inc()

	address := h.resolveAddress(ctx, car.ID, loc)

	h.Events.CarChanged(events.TypeCarParked, group.Members, group.ID, car.ID, map[string]any{
		"lat":     loc.Lat,
		"lng":     loc.Lng,
		"address": address,
	})
	h.respondWithCar(w, ctx, car.ID)
}

// resolveAddress backfills the street address for a parking spot. Lookup
// failures leave the address empty; the coordinates are the durable record.
func (h *Handler) resolveAddress(ctx context.Context, carID string, loc models.GeoPoint) string {
	if h.Geo == nil {
		return ""
	}
	address, err := h.Geo.ReverseGeocode(ctx, loc.Lat, loc.Lng)
	if err != nil {
		h.Log.Warn("reverse geocode failed",
			zap.String("car_id", carID), zap.Error(err))
		return ""
	}
	if err := h.Cars.SetAddress(ctx, carID, address); err != nil {
		h.Log.Warn("failed to store address",
			zap.String("car_id", carID), zap.Error(err))
	}
	return address
}

type noteRequest struct {
	Note string `json:"note"`
}

// ServeNote handles PUT /cars/{carID}/note.
func (h *Handler) ServeNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	car, group, err := h.loadForMember(ctx, r)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	if err := h.Cars.SetNote(ctx, car.ID, sanitize.Text(req.Note)); err != nil {
		httpjson.WriteError(w, h.Log, apperr.Remote(err))
		return
	}
	h.Events.CarChanged(events.TypeCarUpdated, group.Members, group.ID, car.ID, nil)
	h.respondWithCar(w, ctx, car.ID)
}

type updateRequest struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// ServeUpdate handles PUT /cars/{carID}: rename or change the icon.
func (h *Handler) ServeUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	req.Name = sanitize.Text(req.Name)
	if req.Name == "" {
		httpjson.WriteError(w, h.Log, apperr.Validation("car name is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	car, group, err := h.loadForMember(ctx, r)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	if err := h.Cars.SetNameIcon(ctx, car.ID, req.Name, sanitize.Text(req.Icon)); err != nil {
		httpjson.WriteError(w, h.Log, apperr.Remote(err))
		return
	}
	h.Events.CarChanged(events.TypeCarUpdated, group.Members, group.ID, car.ID, map[string]any{
		"name": req.Name,
	})
	h.respondWithCar(w, ctx, car.ID)
}

// ServeDelete handles DELETE /cars/{carID}.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	car, group, err := h.loadForMember(ctx, r)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	if err := h.Cascade.DeleteCar(ctx, car); err != nil {
		metrics.WorkflowOutcomes.WithLabelValues("car_delete", "error").Inc()
		httpjson.WriteError(w, h.Log, apperr.Remote(err))
		return
	}
	metrics.WorkflowOutcomes.WithLabelValues("car_delete", "ok").Inc()

	h.Events.CarChanged(events.TypeCarDeleted, group.Members, group.ID, car.ID, nil)
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// loadForMember resolves {carID} and verifies the caller belongs to the
// car's group. Outsiders get the same not-found as a missing car.
func (h *Handler) loadForMember(ctx context.Context, r *http.Request) (models.Car, models.Group, error) {
	p, _ := auth.CurrentUser(r)

	carID := chi.URLParam(r, "carID")
	car, err := h.Cars.GetByID(ctx, carID)
	if err != nil {
		return models.Car{}, models.Group{}, apperr.FromMongo(err, "car")
	}
	group, err := h.Groups.GetByID(ctx, car.GroupID)
	if err != nil {
		return models.Car{}, models.Group{}, apperr.FromMongo(err, "car")
	}
	if !group.HasMember(p.UserID) {
		return models.Car{}, models.Group{}, apperr.NotFound("car")
	}
	return car, group, nil
}

func (h *Handler) respondWithCar(w http.ResponseWriter, ctx context.Context, id string) {
	car, err := h.Cars.GetByID(ctx, id)
	if err != nil {
		httpjson.WriteError(w, h.Log, apperr.FromMongo(err, "car"))
		return
	}
	httpjson.Write(w, http.StatusOK, car)
}
