package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/trip-planner/internal/apperror"
	"github.com/sakif/trip-planner/internal/model"
)

func TestTagCRUD(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	trip := createTestTrip(t, db, alice, "Paris Trip", june(1))
	other := createTestTrip(t, db, bob, "Bob Trip", june(1))

	tag := &model.TripTag{TripID: trip.ID, Name: "city", Color: "#ff0000"}
	if err := db.CreateTag(ctx, tag); err != nil {
		t.Fatalf("CreateTag() error = %v", err)
	}
	db.CreateTag(ctx, &model.TripTag{TripID: other.ID, Name: "beach", Color: "#00ff00"})

	found, err := db.GetTagByID(ctx, tag.ID)
	if err != nil {
		t.Fatalf("GetTagByID() error = %v", err)
	}
	if found.Name != "city" || found.TripID != trip.ID {
		t.Errorf("found = %+v", found)
	}

	byTrip, _ := db.ListTagsByTrip(ctx, trip.ID)
	if len(byTrip) != 1 {
		t.Errorf("ListTagsByTrip() returned %d, want 1", len(byTrip))
	}
	byUser, _ := db.ListTagsByUser(ctx, alice.ID)
	if len(byUser) != 1 || byUser[0].Name != "city" {
		t.Errorf("ListTagsByUser() = %+v, want only city", byUser)
	}

	if err := db.DeleteTag(ctx, tag.ID); err != nil {
		t.Fatalf("DeleteTag() error = %v", err)
	}
	if _, err := db.GetTagByID(ctx, tag.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("after delete: error = %v, want ErrNotFound", err)
	}
}
