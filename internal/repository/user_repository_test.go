package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/iliyamo/club-events/internal/model"
	"github.com/iliyamo/club-events/internal/testutil"
)

func TestUserCreateAndLookup(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	r := NewUserRepo(db)

	u, err := r.Create(ctx, "  jane@club.com ", "hash", "Jane", model.RoleUser)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.Email != "jane@club.com" {
		t.Fatalf("email not trimmed: %q", u.Email)
	}
	if _, err := r.Create(ctx, "jane@club.com", "hash", "Jane 2", model.RoleUser); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("duplicate: err = %v, want ErrEmailExists", err)
	}

	got, err := r.GetByEmail(ctx, "jane@club.com")
	if err != nil || got.ID != u.ID || got.Role != model.RoleUser {
		t.Fatalf("GetByEmail = %+v, %v", got, err)
	}
	// lookup is exact, not case-folded
	if _, err := r.GetByEmail(ctx, "JANE@club.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("case-different lookup: err = %v", err)
	}
	if _, err := r.GetByID(ctx, 12345); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetByID missing: err = %v", err)
	}
}

func TestUserUpdateRole(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	r := NewUserRepo(db)
	id := testutil.InsertUser(t, db, "a@club.com", "A", "user")

	if err := r.UpdateRole(ctx, id, model.RoleAdmin); err != nil {
		t.Fatal(err)
	}
	// unchanged value is not an error
	if err := r.UpdateRole(ctx, id, model.RoleAdmin); err != nil {
		t.Fatal(err)
	}
	u, _ := r.GetByID(ctx, id)
	if u.Role != model.RoleAdmin {
		t.Fatalf("role = %v", u.Role)
	}
	if err := r.UpdateRole(ctx, 999, model.RoleAdmin); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing user: err = %v", err)
	}
	if err := r.UpdateRole(ctx, id, model.Role(0)); !errors.Is(err, model.ErrUnknownRole) {
		t.Fatalf("zero role: err = %v", err)
	}
}

func TestUserDeleteKeepsBookings(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	users := NewUserRepo(db)
	notes := NewNotificationRepo(db)
	id := testutil.InsertUser(t, db, "gone@club.com", "Gone", "user")
	ev := testutil.InsertEvent(t, db, "Party", 500, 10)

	tx, _ := db.BeginTx(ctx, nil)
	b := model.Booking{UserID: id, EventID: ev, Tickets: 2, TotalPriceCents: 1000, PaymentStatus: model.PaymentCompleted}
	if err := NewBookingRepo(db).CreateTx(ctx, tx, &b); err != nil {
		t.Fatal(err)
	}
	_ = tx.Commit()
	if _, err := notes.Append(ctx, id, "hello", model.NotificationInfo); err != nil {
		t.Fatal(err)
	}

	if err := users.Delete(ctx, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := users.Delete(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second Delete: err = %v", err)
	}
	if n := testutil.Count(t, db, "notifications"); n != 0 {
		t.Fatalf("notifications left = %d", n)
	}
	all, err := NewBookingRepo(db).ListAll(ctx)
	if err != nil || len(all) != 1 {
		t.Fatalf("ListAll = %v, %v", all, err)
	}
	if all[0].UserName != nil || all[0].UserEmail != nil {
		t.Fatalf("deleted user's fields should be empty: %+v", all[0])
	}
}
