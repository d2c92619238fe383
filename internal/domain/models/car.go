// internal/domain/models/car.go
package models

import "time"

// GeoPoint is a WGS84 coordinate.
type GeoPoint struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

// Car is a shared vehicle belonging to exactly one group.
//
// A car is either parked (no claimant) or in use by one member. Claiming is
// last-write-wins: a second claim silently replaces the first. Parking
// (recording a new location) always clears the claim, no matter who parks.
//
// Location is nil until the car has been parked for the first time; there is
// no (0,0) sentinel.
type Car struct {
	ID   string `bson:"_id" json:"id"`
	Name string `bson:"name" json:"name"`
	Icon string `bson:"icon" json:"icon"`

	Location *GeoPoint `bson:"location,omitempty" json:"location"`
	Address  string    `bson:"address" json:"address"`
	Note     string    `bson:"note" json:"note"`

	// GroupID is the car's side of the group link; the group's Cars array
	// must contain this car's id.
	GroupID string `bson:"groupId" json:"groupId"`

	InUse      bool   `bson:"currentlyInUse" json:"currentlyInUse"`
	UsedByID   string `bson:"currentlyUsedById" json:"currentlyUsedById"`
	UsedByName string `bson:"currentlyUsedByFullName" json:"currentlyUsedByFullName"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
