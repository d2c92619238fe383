// internal/app/system/events/broadcaster.go
package events

import (
	"github.com/tagauto/tagauto/internal/app/system/metrics"
)

// Broadcaster is the publishing facade handed to feature handlers. A nil
// *Broadcaster is valid and drops everything, so features never need to
// guard their publish calls.
type Broadcaster struct {
	hub *Hub
}

// NewBroadcaster wraps a hub.
func NewBroadcaster(hub *Hub) *Broadcaster {
	return &Broadcaster{hub: hub}
}

// Publish sends an event of the given type to the listed users.
func (b *Broadcaster) Publish(t Type, userIDs []string, payload map[string]any) {
	if b == nil || b.hub == nil {
		return
	}
	metrics.EventsPublished.WithLabelValues(string(t)).Inc()
	b.hub.Send(userIDs, Message{Type: t, Payload: payload})
}

// GroupChanged publishes a group-scoped event to the group's members.
func (b *Broadcaster) GroupChanged(t Type, memberIDs []string, groupID string, extra map[string]any) {
	payload := map[string]any{"groupId": groupID}
	for k, v := range extra {
		payload[k] = v
	}
	b.Publish(t, memberIDs, payload)
}

// CarChanged publishes a car-scoped event to the owning group's members.
func (b *Broadcaster) CarChanged(t Type, memberIDs []string, groupID, carID string, extra map[string]any) {
	payload := map[string]any{"groupId": groupID, "carId": carID}
	for k, v := range extra {
		payload[k] = v
	}
	b.Publish(t, memberIDs, payload)
}
