// internal/app/store/invitations/invitationstore.go
package invitationstore

import (
	"context"
	"strings"
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
	return &Store{c: db.Collection("invitations")}
}

// Create inserts a pending invitation. The invitee address is lowercased so
// inbox lookups match regardless of how the inviter typed it.
func (s *Store) Create(ctx context.Context, inv models.Invitation) (models.Invitation, error) {
	inv.ID = uuid.NewString()
	inv.Email = strings.ToLower(strings.TrimSpace(inv.Email))
	inv.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, inv); err != nil {
		return models.Invitation{}, err
	}
	return inv, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (models.Invitation, error) {
	var inv models.Invitation
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&inv); err != nil {
		return models.Invitation{}, err
	}
	return inv, nil
}

// ListByEmail returns the pending invitations addressed to the given email.
func (s *Store) ListByEmail(ctx context.Context, email string) ([]models.Invitation, error) {
	filter := bson.M{"email": strings.ToLower(strings.TrimSpace(email))}
	cur, err := s.c.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	invs := []models.Invitation{}
	if err := cur.All(ctx, &invs); err != nil {
		return nil, err
	}
	return invs, nil
}

// ExistsForGroupAndEmail reports whether the address already has a pending
// invitation to the group.
func (s *Store) ExistsForGroupAndEmail(ctx context.Context, groupID, email string) (bool, error) {
	filter := bson.M{
		"groupId": groupID,
		"email":   strings.ToLower(strings.TrimSpace(email)),
	}
	n, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Delete removes an invitation by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id string) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByGroup removes all pending invitations to a group.
// Returns the number of documents deleted.
func (s *Store) DeleteByGroup(ctx context.Context, groupID string) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"groupId": groupID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
