// internal/app/features/heartbeat/handler.go
package heartbeat

import (
	"context"
	"encoding/json"
	"net/http"

	userstore "github.com/tagauto/tagauto/internal/app/store/users"
	"github.com/tagauto/tagauto/internal/app/system/auth"
	"github.com/tagauto/tagauto/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler handles heartbeat requests from mobile clients. A heartbeat keeps
// the client's push registration current; the OS can rotate the device token
// at any time, so clients resend it periodically.
type Handler struct {
	Users *userstore.Store
	Log   *zap.Logger
}

// NewHandler creates a new heartbeat handler.
func NewHandler(users *userstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Log: logger}
}

// heartbeatRequest is the JSON body for the heartbeat endpoint.
type heartbeatRequest struct {
	FCMToken string `json:"fcmToken"`
}

// ServeHeartbeat handles POST /heartbeat. The device token is optional; a
// heartbeat without one is just a liveness signal. Failures are swallowed,
// the client retries on its next beat anyway.
func (h *Handler) ServeHeartbeat(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentUser(r)
	if !ok {
		w.WriteHeader(http.StatusOK) // Silent fail - invalid session
		return
	}

	var req heartbeatRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req) // Ignore error, token is optional
	}
	if req.FCMToken == "" {
		w.WriteHeader(http.StatusOK)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Users.SetDeviceToken(ctx, p.UserID, req.FCMToken); err != nil {
		h.Log.Warn("failed to refresh device token",
			zap.Error(err),
			zap.String("user_id", p.UserID))
	}
	w.WriteHeader(http.StatusOK)
}
