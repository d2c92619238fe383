// internal/domain/models/user.go
package models

import (
	"strings"
	"time"
)

// User is a registered account. The document id is the stable identity
// assigned at registration and never changes; only the name fields are
// mutable afterward.
//
// The bson field names match what shipped mobile clients already expect, so
// the data set stays interoperable across app versions.
type User struct {
	ID        string `bson:"_id" json:"id"`
	Email     string `bson:"userEmail" json:"userEmail"`
	FirstName string `bson:"firstName" json:"firstName"`
	LastName  string `bson:"lastName" json:"lastName"`

	// Groups is the user's side of the membership link. The matching
	// Group.Members entry must be written together with it.
	Groups []string `bson:"groups" json:"groups"`

	// FCMToken is the device push token, registered by the mobile client.
	// Empty means the user has no registered device.
	FCMToken string `bson:"fcmToken,omitempty" json:"-"`

	// PasswordHash is the bcrypt hash of the account password.
	PasswordHash []byte `bson:"credentials,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// FullName returns "First Last" with whatever parts are present.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
