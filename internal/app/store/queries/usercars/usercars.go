// Package usercars provides the read that backs the main map screen: every
// car in every group the user belongs to.
package usercars

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tagauto/tagauto/internal/domain/models"
)

// CarWithGroup is a car annotated with the name of its owning group so the
// client can label markers without loading groups itself.
type CarWithGroup struct {
	models.Car
	GroupName string `json:"groupName"`
}

// CarsForUser fans out from the user's groups array: load each group, then
// each group's cars. A group id that no longer resolves is skipped; the
// reconcile worker cleans those up.
//
// A user with no groups gets an empty slice, not an error.
func CarsForUser(ctx context.Context, db *mongo.Database, user models.User) ([]CarWithGroup, error) {
	out := []CarWithGroup{}
	if len(user.Groups) == 0 {
		return out, nil
	}

	cur, err := db.Collection("groups").Find(ctx, bson.M{"_id": bson.M{"$in": user.Groups}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var groups []models.Group
	if err := cur.All(ctx, &groups); err != nil {
		return nil, err
	}

	for _, g := range groups {
		carCur, err := db.Collection("cars").Find(ctx, bson.M{"groupId": g.ID})
		if err != nil {
			return nil, err
		}
		var cars []models.Car
		if err := carCur.All(ctx, &cars); err != nil {
			carCur.Close(ctx)
			return nil, err
		}
		carCur.Close(ctx)

		for _, c := range cars {
			out = append(out, CarWithGroup{Car: c, GroupName: g.Name})
		}
	}
	return out, nil
}
