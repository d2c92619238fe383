package indexes_test

import (
	"testing"

	"github.com/tagauto/tagauto/internal/app/system/indexes"
	"github.com/tagauto/tagauto/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func TestEnsureAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("first EnsureAll failed: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("second EnsureAll failed: %v", err)
	}
}

func listIndexNames(t *testing.T, coll string) map[string]bool {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	cur, err := db.Collection(coll).Indexes().List(ctx)
	if err != nil {
		t.Fatalf("List indexes failed: %v", err)
	}
	defer cur.Close(ctx)

	names := make(map[string]bool)
	for cur.Next(ctx) {
		var idx bson.M
		if err := cur.Decode(&idx); err != nil {
			continue
		}
		if name, ok := idx["name"].(string); ok {
			names[name] = true
		}
	}
	return names
}

func TestEnsureAll_CreatesExpectedIndexes(t *testing.T) {
	cases := map[string][]string{
		"users":       {"uniq_users_email", "idx_users_groups"},
		"groups":      {"idx_groups_members"},
		"cars":        {"idx_cars_group", "idx_cars_usedby"},
		"invitations": {"idx_invitations_email", "idx_invitations_group_email"},
	}
	for coll, expected := range cases {
		names := listIndexNames(t, coll)
		for _, name := range expected {
			if !names[name] {
				t.Errorf("expected index %q to exist on %s collection", name, coll)
			}
		}
	}
}

func TestEnsureAll_UniqueEmailEnforced(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	if _, err := db.Collection("users").InsertOne(ctx, bson.M{"_id": "u-1", "userEmail": "a@example.com"}); err != nil {
		t.Fatalf("insert user failed: %v", err)
	}
	if _, err := db.Collection("users").InsertOne(ctx, bson.M{"_id": "u-2", "userEmail": "a@example.com"}); err == nil {
		t.Error("expected duplicate key error for unique index on users.userEmail")
	}
}
