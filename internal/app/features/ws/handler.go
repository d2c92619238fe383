// internal/app/features/ws/handler.go
package ws

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tagauto/tagauto/internal/app/system/auth"
	"github.com/tagauto/tagauto/internal/app/system/events"
	"github.com/tagauto/tagauto/internal/app/system/httpjson"
	"github.com/tagauto/tagauto/internal/app/system/wsticket"
)

// Handler serves the websocket upgrade and the ticket endpoint that
// authenticates it. The upgrade request itself cannot carry a bearer token,
// so clients first POST /ws/ticket with their token and then connect to
// GET /ws?ticket=... within the ticket's lifetime.
type Handler struct {
	Hub     *events.Hub
	Tickets *wsticket.Issuer
	Log     *zap.Logger

	upgrader websocket.Upgrader
}

func NewHandler(hub *events.Hub, tickets *wsticket.Issuer, logger *zap.Logger) *Handler {
	return &Handler{
		Hub:     hub,
		Tickets: tickets,
		Log:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Mobile clients connect from app contexts, not browser pages.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeTicket handles POST /ws/ticket. It runs behind the bearer-token
// middleware and returns a short-lived ticket bound to the caller.
func (h *Handler) ServeTicket(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.CurrentUser(r)

	ticket, err := h.Tickets.Issue(p.UserID)
	if err != nil {
		h.Log.Error("issuing websocket ticket", zap.Error(err))
		httpjson.Write(w, http.StatusInternalServerError, map[string]string{"error": "could not issue ticket"})
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"ticket": ticket})
}

// ServeConnect handles GET /ws. The ticket query parameter identifies the
// caller; a missing or expired ticket is refused before the upgrade.
func (h *Handler) ServeConnect(w http.ResponseWriter, r *http.Request) {
	userID, err := h.Tickets.Redeem(r.URL.Query().Get("ticket"))
	if err != nil {
		httpjson.Write(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.Log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	events.NewClient(h.Hub, conn, userID, h.Log)
}
