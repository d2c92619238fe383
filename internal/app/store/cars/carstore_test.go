package carstore_test

import (
	"testing"

	carstore "github.com/tagauto/tagauto/internal/app/store/cars"
	"github.com/tagauto/tagauto/internal/domain/models"
	"github.com/tagauto/tagauto/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := carstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Car{
		Name:    "Red Volvo",
		Icon:    "wagon",
		GroupID: "g-1",
		// A client cannot smuggle in a claim at creation.
		InUse:    true,
		UsedByID: "u-sneaky",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == "" {
		t.Error("expected ID to be assigned")
	}
	if created.InUse || created.UsedByID != "" || created.UsedByName != "" {
		t.Error("expected a new car to start parked and unclaimed")
	}
	if created.Location != nil {
		t.Errorf("expected Location to be nil for a never-parked car, got %v", created.Location)
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := carstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.GetByID(ctx, "missing")
	if err != mongo.ErrNoDocuments {
		t.Errorf("expected mongo.ErrNoDocuments, got %v", err)
	}
}

func TestStore_ClaimAndPark(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := carstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Car{Name: "Shared", GroupID: "g-1"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.MarkInUse(ctx, created.ID, "u-1", "Anna Berg"); err != nil {
		t.Fatalf("MarkInUse failed: %v", err)
	}
	car, _ := store.GetByID(ctx, created.ID)
	if !car.InUse || car.UsedByID != "u-1" || car.UsedByName != "Anna Berg" {
		t.Errorf("after claim: got %+v", car)
	}

	// A second claim overwrites the first without error.
	if err := store.MarkInUse(ctx, created.ID, "u-2", "Bo Dahl"); err != nil {
		t.Fatalf("second MarkInUse failed: %v", err)
	}
	car, _ = store.GetByID(ctx, created.ID)
	if car.UsedByID != "u-2" || car.UsedByName != "Bo Dahl" {
		t.Errorf("expected last claim to win, got %+v", car)
	}

	// Parking records the location and releases the claim in one write.
	if err := store.SetLocationAndRelease(ctx, created.ID, models.GeoPoint{Lat: 59.91, Lng: 10.75}); err != nil {
		t.Fatalf("SetLocationAndRelease failed: %v", err)
	}
	car, _ = store.GetByID(ctx, created.ID)
	if car.InUse || car.UsedByID != "" || car.UsedByName != "" {
		t.Errorf("expected parking to clear the claim, got %+v", car)
	}
	if car.Location == nil || car.Location.Lat != 59.91 || car.Location.Lng != 10.75 {
		t.Errorf("Location: got %v", car.Location)
	}
}

func TestStore_SetAddressAndNote(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := carstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Car{Name: "Noted", GroupID: "g-1"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.SetAddress(ctx, created.ID, "Karl Johans gate 1"); err != nil {
		t.Fatalf("SetAddress failed: %v", err)
	}
	if err := store.SetNote(ctx, created.ID, "parked on level 2"); err != nil {
		t.Fatalf("SetNote failed: %v", err)
	}

	car, _ := store.GetByID(ctx, created.ID)
	if car.Address != "Karl Johans gate 1" {
		t.Errorf("Address: got %q", car.Address)
	}
	if car.Note != "parked on level 2" {
		t.Errorf("Note: got %q", car.Note)
	}
}

func TestStore_ReleaseClaimsBy(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := carstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a, _ := store.Create(ctx, models.Car{Name: "A", GroupID: "g-1"})
	b, _ := store.Create(ctx, models.Car{Name: "B", GroupID: "g-1"})
	other, _ := store.Create(ctx, models.Car{Name: "C", GroupID: "g-2"})

	_ = store.MarkInUse(ctx, a.ID, "u-1", "Anna")
	_ = store.MarkInUse(ctx, b.ID, "u-2", "Bo")
	_ = store.MarkInUse(ctx, other.ID, "u-1", "Anna")

	if err := store.ReleaseClaimsBy(ctx, "g-1", "u-1"); err != nil {
		t.Fatalf("ReleaseClaimsBy failed: %v", err)
	}

	got, _ := store.GetByID(ctx, a.ID)
	if got.InUse {
		t.Error("expected u-1's claim in g-1 to be released")
	}
	got, _ = store.GetByID(ctx, b.ID)
	if !got.InUse || got.UsedByID != "u-2" {
		t.Error("expected u-2's claim to be untouched")
	}
	got, _ = store.GetByID(ctx, other.ID)
	if !got.InUse {
		t.Error("expected the claim in another group to be untouched")
	}
}

func TestStore_ListByGroup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := carstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, _ = store.Create(ctx, models.Car{Name: "A", GroupID: "g-1"})
	_, _ = store.Create(ctx, models.Car{Name: "B", GroupID: "g-1"})
	_, _ = store.Create(ctx, models.Car{Name: "C", GroupID: "g-2"})

	cars, err := store.ListByGroup(ctx, "g-1")
	if err != nil {
		t.Fatalf("ListByGroup failed: %v", err)
	}
	if len(cars) != 2 {
		t.Errorf("expected 2 cars, got %d", len(cars))
	}

	empty, err := store.ListByGroup(ctx, "g-none")
	if err != nil {
		t.Fatalf("ListByGroup for empty group failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected no cars, got %d", len(empty))
	}
}

func TestStore_DeleteByGroup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := carstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, _ = store.Create(ctx, models.Car{Name: "A", GroupID: "g-1"})
	_, _ = store.Create(ctx, models.Car{Name: "B", GroupID: "g-1"})
	_, _ = store.Create(ctx, models.Car{Name: "C", GroupID: "g-2"})

	n, err := store.DeleteByGroup(ctx, "g-1")
	if err != nil {
		t.Fatalf("DeleteByGroup failed: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted count: got %d, want 2", n)
	}

	remaining, _ := store.ListByGroup(ctx, "g-2")
	if len(remaining) != 1 {
		t.Errorf("expected the other group's car to survive, got %d", len(remaining))
	}
}
