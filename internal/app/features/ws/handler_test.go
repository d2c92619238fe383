package ws_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tagauto/tagauto/internal/app/features/ws"
	"github.com/tagauto/tagauto/internal/app/system/auth"
	"github.com/tagauto/tagauto/internal/app/system/events"
	"github.com/tagauto/tagauto/internal/app/system/wsticket"
)

func newHandler(t *testing.T) (*ws.Handler, *events.Hub, context.CancelFunc) {
	t.Helper()
	hub := events.NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	h := ws.NewHandler(hub, wsticket.NewIssuer("0123456789abcdef0123456789abcdef"), zap.NewNop())
	return h, hub, cancel
}

func TestServeTicket(t *testing.T) {
	h, _, cancel := newHandler(t)
	defer cancel()

	req := httptest.NewRequest("POST", "/ws/ticket", nil)
	req = req.WithContext(auth.WithPrincipal(req.Context(), auth.Principal{UserID: "user-1", IssuedAt: time.Now()}))
	rec := httptest.NewRecorder()
	h.ServeTicket(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	var resp struct {
		Ticket string `json:"ticket"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if resp.Ticket == "" {
		t.Fatal("expected a ticket")
	}
}

func TestServeConnect_RejectsBadTicket(t *testing.T) {
	h, _, cancel := newHandler(t)
	defer cancel()

	req := httptest.NewRequest("GET", "/ws?ticket=garbage", nil)
	rec := httptest.NewRecorder()
	h.ServeConnect(rec, req)

	if rec.Code != 401 {
		t.Errorf("status: got %d, want 401", rec.Code)
	}
}

func TestServeConnect_DeliversEvents(t *testing.T) {
	h, hub, cancel := newHandler(t)
	defer cancel()

	srv := httptest.NewServer(http.HandlerFunc(h.ServeConnect))
	defer srv.Close()

	ticket, err := h.Tickets.Issue("user-1")
	if err != nil {
		t.Fatalf("issuing ticket: %v", err)
	}

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?ticket=" + ticket
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dialing: %v", err)
	}
	defer conn.Close()

	// Give the hub a beat to register the client before publishing.
	time.Sleep(50 * time.Millisecond)
	hub.Send([]string{"user-1", "user-2"}, events.Message{
		Type:      events.TypeCarParked,
		Payload:   map[string]any{"carId": "car-1"},
		Timestamp: time.Now(),
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("reading: %v", err)
	}
	if msg.Type != string(events.TypeCarParked) {
		t.Errorf("type: got %q, want %q", msg.Type, events.TypeCarParked)
	}
	if msg.Payload["carId"] != "car-1" {
		t.Errorf("payload: got %v", msg.Payload)
	}
}

func TestServeConnect_OtherUsersHearNothing(t *testing.T) {
	h, hub, cancel := newHandler(t)
	defer cancel()

	srv := httptest.NewServer(http.HandlerFunc(h.ServeConnect))
	defer srv.Close()

	ticket, err := h.Tickets.Issue("bystander")
	if err != nil {
		t.Fatalf("issuing ticket: %v", err)
	}
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?ticket=" + ticket
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dialing: %v", err)
	}
	defer conn.Close()

	time.Sleep(50 * time.Millisecond)
	hub.Send([]string{"someone-else"}, events.Message{Type: events.TypeCarParked, Timestamp: time.Now()})

	conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected no frame for an untargeted user")
	}
}
