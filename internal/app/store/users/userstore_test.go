package userstore_test

import (
	"testing"

	userstore "github.com/tagauto/tagauto/internal/app/store/users"
	"github.com/tagauto/tagauto/internal/app/system/indexes"
	"github.com/tagauto/tagauto/internal/domain/models"
	"github.com/tagauto/tagauto/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{
		Email:     "Anna@Example.com",
		FirstName: "Anna",
		LastName:  "Berg",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == "" {
		t.Error("expected ID to be assigned")
	}
	if created.Email != "anna@example.com" {
		t.Errorf("Email: got %q, want lowercased", created.Email)
	}
	if created.Groups == nil {
		t.Error("expected Groups to be initialized to an empty slice")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestStore_Create_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	store := userstore.New(db)
	if _, err := store.Create(ctx, models.User{Email: "dup@example.com"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	if _, err := store.Create(ctx, models.User{Email: "DUP@example.com"}); err != userstore.ErrDuplicateEmail {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestStore_GetByEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUser(ctx, "finder@example.com")

	found, err := store.GetByEmail(ctx, "  FINDER@example.com ")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if found.ID != user.ID {
		t.Errorf("ID: got %q, want %q", found.ID, user.ID)
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.GetByID(ctx, "missing")
	if err != mongo.ErrNoDocuments {
		t.Errorf("expected mongo.ErrNoDocuments, got %v", err)
	}
}

func TestStore_GetManyByIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fixtures.CreateUser(ctx, "a@example.com")
	b := fixtures.CreateUser(ctx, "b@example.com")

	users, err := store.GetManyByIDs(ctx, []string{a.ID, b.ID, "missing"})
	if err != nil {
		t.Fatalf("GetManyByIDs failed: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("expected 2 users, got %d", len(users))
	}

	empty, err := store.GetManyByIDs(ctx, nil)
	if err != nil {
		t.Fatalf("GetManyByIDs with no ids failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected empty result, got %d users", len(empty))
	}
}

func TestStore_GroupLinks(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUser(ctx, "links@example.com")

	if err := store.AddGroup(ctx, user.ID, "g-1"); err != nil {
		t.Fatalf("AddGroup failed: %v", err)
	}
	// Adding twice must not duplicate the entry.
	if err := store.AddGroup(ctx, user.ID, "g-1"); err != nil {
		t.Fatalf("second AddGroup failed: %v", err)
	}

	found, err := store.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(found.Groups) != 1 || found.Groups[0] != "g-1" {
		t.Errorf("Groups: got %v, want [g-1]", found.Groups)
	}

	if err := store.RemoveGroup(ctx, user.ID, "g-1"); err != nil {
		t.Fatalf("RemoveGroup failed: %v", err)
	}
	found, err = store.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(found.Groups) != 0 {
		t.Errorf("Groups after remove: got %v, want empty", found.Groups)
	}
}

func TestStore_RemoveGroupFromAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fixtures.CreateUser(ctx, "a@example.com")
	b := fixtures.CreateUser(ctx, "b@example.com")
	group := fixtures.CreateGroup(ctx, "Family", a, b)

	if err := store.RemoveGroupFromAll(ctx, group.ID); err != nil {
		t.Fatalf("RemoveGroupFromAll failed: %v", err)
	}

	for _, id := range []string{a.ID, b.ID} {
		found, err := store.GetByID(ctx, id)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if len(found.Groups) != 0 {
			t.Errorf("user %s still references group: %v", id, found.Groups)
		}
	}
}

func TestStore_SetDeviceToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUser(ctx, "device@example.com")

	if err := store.SetDeviceToken(ctx, user.ID, "token-123"); err != nil {
		t.Fatalf("SetDeviceToken failed: %v", err)
	}
	found, _ := store.GetByID(ctx, user.ID)
	if found.FCMToken != "token-123" {
		t.Errorf("FCMToken: got %q, want %q", found.FCMToken, "token-123")
	}

	// Clearing the token unregisters the device.
	if err := store.SetDeviceToken(ctx, user.ID, ""); err != nil {
		t.Fatalf("SetDeviceToken clear failed: %v", err)
	}
	found, _ = store.GetByID(ctx, user.ID)
	if found.FCMToken != "" {
		t.Errorf("FCMToken after clear: got %q, want empty", found.FCMToken)
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUser(ctx, "gone@example.com")

	n, err := store.Delete(ctx, user.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted count: got %d, want 1", n)
	}

	n, err = store.Delete(ctx, user.ID)
	if err != nil {
		t.Fatalf("second Delete failed: %v", err)
	}
	if n != 0 {
		t.Errorf("deleted count on missing user: got %d, want 0", n)
	}
}
