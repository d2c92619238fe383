// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tagauto/tagauto/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

var ErrDuplicateEmail = errors.New("an account with this email already exists")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// Create inserts a new user. The email is lowercased so the unique index
// catches case-variant duplicates.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	now := time.Now().UTC()
	u.ID = uuid.NewString()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Groups == nil {
		u.Groups = []string{}
	}
	u.CreatedAt = now
	u.UpdatedAt = now
	_, err := s.c.InsertOne(ctx, u)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	filter := bson.M{"userEmail": strings.ToLower(strings.TrimSpace(email))}
	if err := s.c.FindOne(ctx, filter).Decode(&u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// GetManyByIDs returns the users whose ids are in the given set. Missing ids
// are silently absent from the result.
func (s *Store) GetManyByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) UpdateName(ctx context.Context, id, firstName, lastName string) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"firstName": firstName,
		"lastName":  lastName,
		"updatedAt": time.Now().UTC(),
	}})
	return err
}

// SetDeviceToken records the push token for the user's current device.
// An empty token unregisters the device.
func (s *Store) SetDeviceToken(ctx context.Context, id, token string) error {
	update := bson.M{"$set": bson.M{"updatedAt": time.Now().UTC()}}
	if token == "" {
		update["$unset"] = bson.M{"fcmToken": ""}
	} else {
		update["$set"].(bson.M)["fcmToken"] = token
	}
	_, err := s.c.UpdateByID(ctx, id, update)
	return err
}

// AddGroup links a group into the user's groups array. The caller must also
// add the user to the group's members array.
func (s *Store) AddGroup(ctx context.Context, userID, groupID string) error {
	_, err := s.c.UpdateByID(ctx, userID, bson.M{
		"$addToSet": bson.M{"groups": groupID},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	})
	return err
}

// RemoveGroup unlinks a group from the user's groups array.
func (s *Store) RemoveGroup(ctx context.Context, userID, groupID string) error {
	_, err := s.c.UpdateByID(ctx, userID, bson.M{
		"$pull": bson.M{"groups": groupID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
	return err
}

// RemoveGroupFromAll strips a deleted group's id out of every user document
// that still references it.
func (s *Store) RemoveGroupFromAll(ctx context.Context, groupID string) error {
	_, err := s.c.UpdateMany(ctx,
		bson.M{"groups": groupID},
		bson.M{
			"$pull": bson.M{"groups": groupID},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		})
	return err
}

// Delete removes a user by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id string) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
