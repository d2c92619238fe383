package usercars_test

import (
	"testing"

	"github.com/tagauto/tagauto/internal/app/store/queries/usercars"
	"github.com/tagauto/tagauto/internal/domain/models"
	"github.com/tagauto/tagauto/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func TestCarsForUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUser(ctx, "driver@example.com")
	outsider := fixtures.CreateUser(ctx, "outsider@example.com")

	family := fixtures.CreateGroup(ctx, "Family", user)
	work := fixtures.CreateGroup(ctx, "Work", user)
	other := fixtures.CreateGroup(ctx, "Other", outsider)

	fixtures.CreateCar(ctx, family, "Volvo")
	fixtures.CreateCar(ctx, family, "Tesla")
	fixtures.CreateCar(ctx, work, "Van")
	fixtures.CreateCar(ctx, other, "Hidden")

	// Reload: fixtures updated the groups array after insert.
	user = reload(t, fixtures, user.ID)

	cars, err := usercars.CarsForUser(ctx, db, user)
	if err != nil {
		t.Fatalf("CarsForUser failed: %v", err)
	}
	if len(cars) != 3 {
		t.Fatalf("expected 3 cars, got %d", len(cars))
	}

	names := map[string]string{}
	for _, c := range cars {
		names[c.Name] = c.GroupName
	}
	if names["Volvo"] != "Family" || names["Tesla"] != "Family" {
		t.Errorf("expected family cars to carry the group name, got %v", names)
	}
	if names["Van"] != "Work" {
		t.Errorf("expected work car to carry the group name, got %v", names)
	}
	if _, ok := names["Hidden"]; ok {
		t.Error("expected cars from other groups to be excluded")
	}
}

func TestCarsForUser_NoGroups(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUser(ctx, "loner@example.com")

	cars, err := usercars.CarsForUser(ctx, db, user)
	if err != nil {
		t.Fatalf("CarsForUser failed: %v", err)
	}
	if cars == nil {
		t.Fatal("expected an empty slice, got nil")
	}
	if len(cars) != 0 {
		t.Errorf("expected no cars, got %d", len(cars))
	}
}

func TestCarsForUser_DanglingGroupRef(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUser(ctx, "dangling@example.com")
	group := fixtures.CreateGroup(ctx, "Family", user)
	fixtures.CreateCar(ctx, group, "Volvo")

	user = reload(t, fixtures, user.ID)
	// Simulate a half-finished cascade: the group doc is gone but the
	// user's reference remains.
	if _, err := db.Collection("groups").DeleteOne(ctx, bson.M{"_id": group.ID}); err != nil {
		t.Fatalf("delete group failed: %v", err)
	}

	cars, err := usercars.CarsForUser(ctx, db, user)
	if err != nil {
		t.Fatalf("CarsForUser failed: %v", err)
	}
	if len(cars) != 0 {
		t.Errorf("expected dangling reference to be skipped, got %d cars", len(cars))
	}
}

// reload refetches a user after fixtures have updated its groups array.
func reload(t *testing.T, fixtures *testutil.Fixtures, userID string) models.User {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	var u models.User
	if err := fixtures.DB().Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&u); err != nil {
		t.Fatalf("reload user failed: %v", err)
	}
	return u
}
