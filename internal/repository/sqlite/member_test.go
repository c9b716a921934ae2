package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sakif/trip-planner/internal/apperror"
	"github.com/sakif/trip-planner/internal/model"
)

func TestAddMember_MarksTripShared(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	trip := createTestTrip(t, db, alice, "Paris Trip", june(1))

	member := &model.TripMember{TripID: trip.ID, UserID: bob.ID, Role: model.RoleViewer}
	if err := db.AddMember(ctx, member); err != nil {
		t.Fatalf("AddMember() error = %v", err)
	}
	if member.ID == "" {
		t.Error("AddMember() did not set member.ID")
	}

	found, _ := db.GetTripByID(ctx, trip.ID)
	if !found.IsShared {
		t.Error("trip should be marked shared after AddMember")
	}

	members, err := db.ListMembers(ctx, trip.ID)
	if err != nil {
		t.Fatalf("ListMembers() error = %v", err)
	}
	if len(members) != 1 {
		t.Fatalf("ListMembers() returned %d, want 1", len(members))
	}
	if members[0].Username != "bob" || members[0].Role != model.RoleViewer {
		t.Errorf("member = %+v, want bob as viewer", members[0])
	}
}

func TestAddMember_Duplicate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	trip := createTestTrip(t, db, alice, "Paris Trip", june(1))
	addTestMember(t, db, trip, bob, model.RoleViewer)

	err := db.AddMember(ctx, &model.TripMember{TripID: trip.ID, UserID: bob.ID, Role: model.RoleEditor})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("AddMember() error = %v, want ErrConflict", err)
	}

	if n := countRows(t, db, "trip_members", trip.ID); n != 1 {
		t.Errorf("trip_members rows = %d, want 1", n)
	}
	members, _ := db.ListMembers(ctx, trip.ID)
	if members[0].Role != model.RoleViewer {
		t.Errorf("role = %q, want original viewer role kept", members[0].Role)
	}
}

func TestRemoveMember(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	trip := createTestTrip(t, db, alice, "Paris Trip", june(1))
	addTestMember(t, db, trip, bob, model.RoleEditor)

	if err := db.RemoveMember(ctx, trip.ID, bob.ID); err != nil {
		t.Fatalf("RemoveMember() error = %v", err)
	}
	if n := countRows(t, db, "trip_members", trip.ID); n != 0 {
		t.Errorf("trip_members rows = %d, want 0", n)
	}

	if err := db.RemoveMember(ctx, trip.ID, bob.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second RemoveMember() error = %v, want ErrNotFound", err)
	}
}

// The following tests drive AddMember against go-sqlmock to check that a
// failure partway through the share leaves nothing committed.

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return &DB{conn: conn}, mock
}

func TestAddMember_InsertFailureRollsBack(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO trip_members").WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	err := db.AddMember(context.Background(), &model.TripMember{TripID: "t1", UserID: "u2", Role: model.RoleViewer})
	if err == nil {
		t.Fatal("AddMember() expected error, got nil")
	}
	if errors.Is(err, apperror.ErrConflict) {
		t.Errorf("generic insert failure should not be reported as conflict: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestAddMember_UpdateFailureRollsBack(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO trip_members").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE trips SET is_shared = 1").WillReturnError(errors.New("database is locked"))
	mock.ExpectRollback()

	err := db.AddMember(context.Background(), &model.TripMember{TripID: "t1", UserID: "u2", Role: model.RoleEditor})
	if err == nil {
		t.Fatal("AddMember() expected error, got nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestAddMember_CommitsBothStatements(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO trip_members").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE trips SET is_shared = 1").
		WithArgs("t1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := db.AddMember(context.Background(), &model.TripMember{TripID: "t1", UserID: "u2", Role: model.RoleViewer})
	if err != nil {
		t.Fatalf("AddMember() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
