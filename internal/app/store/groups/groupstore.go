// internal/app/store/groups/groupstore.go
package groupstore

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
	return &Store{c: db.Collection("groups")}
}

// Create inserts a new group whose sole member is the founder. The caller
// must also link the group into the founder's groups array.
func (s *Store) Create(ctx context.Context, name, founderID string) (models.Group, error) {
	now := time.Now().UTC()
	g := models.Group{
		ID:        uuid.NewString(),
		Name:      name,
		Members:   []string{founderID},
		Cars:      []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.c.InsertOne(ctx, g); err != nil {
		return models.Group{}, err
	}
	return g, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (models.Group, error) {
	var g models.Group
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		return models.Group{}, err
	}
	return g, nil
}

// GetManyByIDs returns the groups whose ids are in the given set. Missing
// ids are silently absent from the result.
func (s *Store) GetManyByIDs(ctx context.Context, ids []string) ([]models.Group, error) {
	if len(ids) == 0 {
		return []models.Group{}, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	groups := []models.Group{}
	if err := cur.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// AddMember links a user into the group's members array. The caller must
// also add the group to the user's groups array.
func (s *Store) AddMember(ctx context.Context, groupID, userID string) error {
	_, err := s.c.UpdateByID(ctx, groupID, bson.M{
		"$addToSet": bson.M{"members": userID},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	})
	return err
}

// RemoveMember unlinks a user from the group's members array.
func (s *Store) RemoveMember(ctx context.Context, groupID, userID string) error {
	_, err := s.c.UpdateByID(ctx, groupID, bson.M{
		"$pull": bson.M{"members": userID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
	return err
}

// AddCar links a car into the group's cars array. The caller must also set
// the car's groupId.
func (s *Store) AddCar(ctx context.Context, groupID, carID string) error {
	_, err := s.c.UpdateByID(ctx, groupID, bson.M{
		"$addToSet": bson.M{"cars": carID},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	})
	return err
}

// RemoveCar unlinks a car from the group's cars array.
func (s *Store) RemoveCar(ctx context.Context, groupID, carID string) error {
	_, err := s.c.UpdateByID(ctx, groupID, bson.M{
		"$pull": bson.M{"cars": carID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
	return err
}

// Delete removes a group by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id string) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
