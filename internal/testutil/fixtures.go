package testutil

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tagauto/tagauto/internal/domain/models"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
// Calls stack, so multi-parameter routes can be built up one at a time.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a test user with the given email and no group links.
func (f *Fixtures) CreateUser(ctx context.Context, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:        uuid.NewString(),
		Email:     strings.ToLower(email),
		FirstName: "Test",
		LastName:  "User",
		Groups:    []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateGroup creates a test group whose members are the given users and
// links the group into each member's groups array, keeping both sides of the
// membership consistent the way the application writes them.
func (f *Fixtures) CreateGroup(ctx context.Context, name string, members ...models.User) models.Group {
	f.t.Helper()

	memberIDs := make([]string, 0, len(members))
	for _, m := range members {
		memberIDs = append(memberIDs, m.ID)
	}

	now := time.Now().UTC()
	group := models.Group{
		ID:        uuid.NewString(),
		Name:      name,
		Members:   memberIDs,
		Cars:      []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("groups").InsertOne(ctx, group); err != nil {
		f.t.Fatalf("failed to create test group: %v", err)
	}

	for _, m := range members {
		_, err := f.db.Collection("users").UpdateOne(ctx,
			bson.M{"_id": m.ID},
			bson.M{"$addToSet": bson.M{"groups": group.ID}})
		if err != nil {
			f.t.Fatalf("failed to link group to user: %v", err)
		}
	}

	return group
}

// CreateCar creates a parked test car in the given group and links it into
// the group's cars array.
func (f *Fixtures) CreateCar(ctx context.Context, group models.Group, name string) models.Car {
	f.t.Helper()

	now := time.Now().UTC()
	car := models.Car{
		ID:        uuid.NewString(),
		Name:      name,
		Icon:      "sedan",
		GroupID:   group.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("cars").InsertOne(ctx, car); err != nil {
		f.t.Fatalf("failed to create test car: %v", err)
	}

	_, err := f.db.Collection("groups").UpdateOne(ctx,
		bson.M{"_id": group.ID},
		bson.M{"$addToSet": bson.M{"cars": car.ID}})
	if err != nil {
		f.t.Fatalf("failed to link car to group: %v", err)
	}

	return car
}

// CreateInvitation creates a pending invitation for the given email.
func (f *Fixtures) CreateInvitation(ctx context.Context, group models.Group, email string) models.Invitation {
	f.t.Helper()

	inv := models.Invitation{
		ID:        uuid.NewString(),
		Email:     strings.ToLower(email),
		GroupID:   group.ID,
		GroupName: group.Name,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("invitations").InsertOne(ctx, inv); err != nil {
		f.t.Fatalf("failed to create test invitation: %v", err)
	}
	return inv
}
