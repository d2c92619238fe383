// internal/app/features/me/handler.go
package me

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	userstore "github.com/tagauto/tagauto/internal/app/store/users"
	"github.com/tagauto/tagauto/internal/app/system/apperr"
	"github.com/tagauto/tagauto/internal/app/system/auth"
	"github.com/tagauto/tagauto/internal/app/system/httpjson"
	"github.com/tagauto/tagauto/internal/app/system/sanitize"
	"github.com/tagauto/tagauto/internal/app/system/timeouts"
)

// Handler serves the authenticated user's own profile.
type Handler struct {
	Users *userstore.Store
	Log   *zap.Logger
}

func NewHandler(users *userstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Log: logger}
}

// ServeGet handles GET /me.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.GetByID(ctx, p.UserID)
	if err != nil {
		httpjson.WriteError(w, h.Log, apperr.FromMongo(err, "user"))
		return
	}
	httpjson.Write(w, http.StatusOK, user)
}

type updateRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// ServeUpdate handles PUT /me. Only the name fields are mutable; email and
// id are fixed at registration.
//
// Cars the user currently claims keep the name that was denormalized onto
// them at claim time; the next claim picks up the new name.
func (h *Handler) ServeUpdate(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.CurrentUser(r)

	var req updateRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	req.FirstName = sanitize.Text(req.FirstName)
	req.LastName = sanitize.Text(req.LastName)
	if req.FirstName == "" {
		httpjson.WriteError(w, h.Log, apperr.Validation("first name is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Users.UpdateName(ctx, p.UserID, req.FirstName, req.LastName); err != nil {
		httpjson.WriteError(w, h.Log, apperr.Remote(err))
		return
	}
	user, err := h.Users.GetByID(ctx, p.UserID)
	if err != nil {
		httpjson.WriteError(w, h.Log, apperr.FromMongo(err, "user"))
		return
	}
	httpjson.Write(w, http.StatusOK, user)
}

type deviceTokenRequest struct {
	Token string `json:"token"`
}

// ServeDeviceToken handles PUT /me/device-token. An empty token unregisters
// the device so the account stops receiving pushes.
func (h *Handler) ServeDeviceToken(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.CurrentUser(r)

	var req deviceTokenRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Users.SetDeviceToken(ctx, p.UserID, req.Token); err != nil {
		httpjson.WriteError(w, h.Log, apperr.Remote(err))
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "ok"})
}
