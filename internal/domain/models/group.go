// internal/domain/models/group.go
package models

import "time"

// Group is a set of members sharing a set of cars.
//
// Invariant: a group has at least one member while it exists. When the last
// member leaves, the group and all of its cars are deleted together; a
// zero-member group is never persisted.
//
// Members and Cars are the group's side of two redundant links (the other
// sides live on User.Groups and Car.GroupID); both sides of a link must be
// written together.
type Group struct {
	ID      string   `bson:"_id" json:"id"`
	Name    string   `bson:"name" json:"name"`
	Members []string `bson:"members" json:"members"`
	Cars    []string `bson:"cars" json:"cars"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// HasMember reports whether userID is in the member set.
func (g Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m == userID {
			return true
		}
	}
	return false
}
