// internal/app/store/cars/carstore.go
package carstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tagauto/tagauto/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("cars")}
}

// Create inserts a new parked car. The caller must also link the car into
// the owning group's cars array.
func (s *Store) Create(ctx context.Context, car models.Car) (models.Car, error) {
	now := time.Now().UTC()
	car.ID = uuid.NewString()
	car.InUse = false
	car.UsedByID = ""
	car.UsedByName = ""
	car.CreatedAt = now
	car.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, car); err != nil {
		return models.Car{}, err
	}
	return car, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (models.Car, error) {
	var car models.Car
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&car); err != nil {
		return models.Car{}, err
	}
	return car, nil
}

func (s *Store) ListByGroup(ctx context.Context, groupID string) ([]models.Car, error) {
	cur, err := s.c.Find(ctx, bson.M{"groupId": groupID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	cars := []models.Car{}
	if err := cur.All(ctx, &cars); err != nil {
		return nil, err
	}
	return cars, nil
}

// MarkInUse records a claim. Last write wins: an existing claim by another
// member is overwritten without complaint.
func (s *Store) MarkInUse(ctx context.Context, id, userID, fullName string) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"currentlyInUse":          true,
		"currentlyUsedById":       userID,
		"currentlyUsedByFullName": fullName,
		"updatedAt":               time.Now().UTC(),
	}})
	return err
}

// SetLocationAndRelease records a parking spot and clears the claim in the
// same write. Whoever parks releases the car, even if someone else claimed it.
func (s *Store) SetLocationAndRelease(ctx context.Context, id string, loc models.GeoPoint) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"location":                loc,
		"currentlyInUse":          false,
		"currentlyUsedById":       "",
		"currentlyUsedByFullName": "",
		"updatedAt":               time.Now().UTC(),
	}})
	return err
}

// SetAddress backfills the human-readable address for the last parking spot.
func (s *Store) SetAddress(ctx context.Context, id, address string) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"address":   address,
		"updatedAt": time.Now().UTC(),
	}})
	return err
}

func (s *Store) SetNote(ctx context.Context, id, note string) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"note":      note,
		"updatedAt": time.Now().UTC(),
	}})
	return err
}

func (s *Store) SetNameIcon(ctx context.Context, id, name, icon string) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"name":      name,
		"icon":      icon,
		"updatedAt": time.Now().UTC(),
	}})
	return err
}

// ReleaseClaimsBy clears every claim the given user holds on cars in the
// group. Used when a member leaves so their claims don't dangle.
func (s *Store) ReleaseClaimsBy(ctx context.Context, groupID, userID string) error {
	_, err := s.c.UpdateMany(ctx,
		bson.M{"groupId": groupID, "currentlyUsedById": userID},
		bson.M{"$set": bson.M{
			"currentlyInUse":          false,
			"currentlyUsedById":       "",
			"currentlyUsedByFullName": "",
			"updatedAt":               time.Now().UTC(),
		}})
	return err
}

// Delete removes a car by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id string) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByGroup removes all cars belonging to a group.
// Returns the number of documents deleted.
func (s *Store) DeleteByGroup(ctx context.Context, groupID string) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"groupId": groupID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
