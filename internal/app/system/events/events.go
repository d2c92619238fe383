// internal/app/system/events/events.go

// Package events pushes entity-change messages to connected group members
// over websockets. Services publish after a successful write; clients use
// the stream to refresh state instead of polling.
//
// Delivery is best-effort: a member without an open connection simply
// misses the event and reconciles on next fetch.
package events

import (
	"time"
)

// Type identifies what changed.
type Type string

const (
	TypeInvitationCreated Type = "invitation_created"
	TypeMemberAdded       Type = "member_added"
	TypeMemberRemoved     Type = "member_removed"
	TypeGroupDeleted      Type = "group_deleted"

	TypeCarCreated Type = "car_created"
	TypeCarClaimed Type = "car_claimed"
	TypeCarParked  Type = "car_parked"
	TypeCarUpdated Type = "car_updated"
	TypeCarDeleted Type = "car_deleted"
)

// Message is the JSON frame sent to clients.
type Message struct {
	Type      Type           `json:"type"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}
