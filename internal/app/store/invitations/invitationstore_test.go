package invitationstore_test

import (
	"testing"

	invitationstore "github.com/tagauto/tagauto/internal/app/store/invitations"
	"github.com/tagauto/tagauto/internal/domain/models"
	"github.com/tagauto/tagauto/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := invitationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Invitation{
		Email:     " Invitee@Example.COM ",
		GroupID:   "g-1",
		GroupName: "Family",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == "" {
		t.Error("expected ID to be assigned")
	}
	if created.Email != "invitee@example.com" {
		t.Errorf("Email: got %q, want lowercased and trimmed", created.Email)
	}
	if created.GroupName != "Family" {
		t.Errorf("GroupName: got %q, want %q", created.GroupName, "Family")
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := invitationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.GetByID(ctx, "missing")
	if err != mongo.ErrNoDocuments {
		t.Errorf("expected mongo.ErrNoDocuments, got %v", err)
	}
}

func TestStore_ListByEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := invitationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, _ = store.Create(ctx, models.Invitation{Email: "me@example.com", GroupID: "g-1", GroupName: "One"})
	_, _ = store.Create(ctx, models.Invitation{Email: "me@example.com", GroupID: "g-2", GroupName: "Two"})
	_, _ = store.Create(ctx, models.Invitation{Email: "other@example.com", GroupID: "g-1", GroupName: "One"})

	invs, err := store.ListByEmail(ctx, "ME@example.com")
	if err != nil {
		t.Fatalf("ListByEmail failed: %v", err)
	}
	if len(invs) != 2 {
		t.Errorf("expected 2 invitations, got %d", len(invs))
	}

	empty, err := store.ListByEmail(ctx, "nobody@example.com")
	if err != nil {
		t.Fatalf("ListByEmail for unknown address failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected no invitations, got %d", len(empty))
	}
}

func TestStore_ExistsForGroupAndEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := invitationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, _ = store.Create(ctx, models.Invitation{Email: "me@example.com", GroupID: "g-1", GroupName: "One"})

	exists, err := store.ExistsForGroupAndEmail(ctx, "g-1", "Me@Example.com")
	if err != nil {
		t.Fatalf("ExistsForGroupAndEmail failed: %v", err)
	}
	if !exists {
		t.Error("expected invitation to be found")
	}

	exists, err = store.ExistsForGroupAndEmail(ctx, "g-2", "me@example.com")
	if err != nil {
		t.Fatalf("ExistsForGroupAndEmail failed: %v", err)
	}
	if exists {
		t.Error("expected no invitation for another group")
	}
}

func TestStore_DeleteByGroup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := invitationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, _ = store.Create(ctx, models.Invitation{Email: "a@example.com", GroupID: "g-1", GroupName: "One"})
	_, _ = store.Create(ctx, models.Invitation{Email: "b@example.com", GroupID: "g-1", GroupName: "One"})
	_, _ = store.Create(ctx, models.Invitation{Email: "c@example.com", GroupID: "g-2", GroupName: "Two"})

	n, err := store.DeleteByGroup(ctx, "g-1")
	if err != nil {
		t.Fatalf("DeleteByGroup failed: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted count: got %d, want 2", n)
	}

	remaining, _ := store.ListByEmail(ctx, "c@example.com")
	if len(remaining) != 1 {
		t.Errorf("expected the other group's invitation to survive, got %d", len(remaining))
	}
}
