// internal/domain/models/invitation.go
package models

import "time"

// Invitation asks the holder of an email address to join a group. It has no
// expiry and is terminal: accepting converts it into a membership and deletes
// it, declining deletes it outright.
//
// GroupName is denormalized so invitation lists can render without loading
// the group.
type Invitation struct {
	ID        string `bson:"_id" json:"id"`
	Email     string `bson:"email" json:"email"`
	GroupID   string `bson:"groupId" json:"groupId"`
	GroupName string `bson:"groupName" json:"groupName"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
