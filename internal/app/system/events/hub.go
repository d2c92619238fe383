// internal/app/system/events/hub.go
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Hub tracks connected clients indexed by user id and fans messages out to
// them. One user may hold several connections (phone and tablet).
type Hub struct {
	mu          sync.RWMutex
	userClients map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	outbound   chan targeted

	log *zap.Logger
}

type targeted struct {
	userIDs []string
	frame   []byte
}

// NewHub creates a hub. Call Run before serving connections.
func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		userClients: make(map[string]map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		outbound:    make(chan targeted, 256),
		log:         log,
	}
}

// Run processes registrations and deliveries until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	h.log.Info("event hub started")
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			h.log.Info("event hub stopped")
			return
		case c := <-h.register:
			h.add(c)
		case c := <-h.unregister:
			h.remove(c)
		case t := <-h.outbound:
			h.deliver(t)
		}
	}
}

// Send queues msg for every listed user. Never blocks the caller: if the
// hub's queue is full the message is dropped and logged.
func (h *Hub) Send(userIDs []string, msg Message) {
	if len(userIDs) == 0 {
		return
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	frame, err := json.Marshal(msg)
	if err != nil {
		h.log.Warn("event marshal failed", zap.String("type", string(msg.Type)), zap.Error(err))
		return
	}
	select {
	case h.outbound <- targeted{userIDs: userIDs, frame: frame}:
	default:
		h.log.Warn("event queue full, dropping", zap.String("type", string(msg.Type)))
	}
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.userClients[c.userID] == nil {
		h.userClients[c.userID] = make(map[*Client]bool)
	}
	h.userClients[c.userID][c] = true
	h.log.Debug("client connected", zap.String("user_id", c.userID))
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.userClients[c.userID]; ok {
		if _, ok := set[c]; ok {
			delete(set, c)
			close(c.send)
			if len(set) == 0 {
				delete(h.userClients, c.userID)
			}
		}
	}
}

func (h *Hub) deliver(t targeted) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, uid := range t.userIDs {
		for c := range h.userClients[uid] {
			select {
			case c.send <- t.frame:
			default:
				// Slow consumer; drop the frame rather than stall the hub.
			}
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.userClients {
		for c := range set {
			close(c.send)
		}
	}
	h.userClients = make(map[string]map[*Client]bool)
}
