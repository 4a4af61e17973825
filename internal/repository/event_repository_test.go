package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/iliyamo/club-events/internal/model"
	"github.com/iliyamo/club-events/internal/testutil"
)

func reserve(t *testing.T, r *EventRepo, eventID uint64, tickets int) (Reservation, error) {
	t.Helper()
	ctx := context.Background()
	tx, err := r.DB().BeginTx(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	res, err := r.ReserveTx(ctx, tx, eventID, tickets)
	if err != nil {
		_ = tx.Rollback()
		return res, err
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}
	return res, nil
}

func TestReserveTxWithinCapacity(t *testing.T) {
	db := testutil.NewDB(t)
	r := NewEventRepo(db)
	id := testutil.InsertEvent(t, db, "Wine Tasting", 2500, 5)

	res, err := reserve(t, r, id, 3)
	if err != nil {
		t.Fatalf("ReserveTx: %v", err)
	}
	if res.Title != "Wine Tasting" || res.PriceCents != 2500 {
		t.Fatalf("reservation = %+v", res)
	}
	if got := testutil.Booked(t, db, id); got != 3 {
		t.Fatalf("booked = %d, want 3", got)
	}

	if _, err := reserve(t, r, id, 2); err != nil {
		t.Fatalf("filling to capacity: %v", err)
	}
	if _, err := reserve(t, r, id, 1); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("err = %v, want ErrCapacityExceeded", err)
	}
	if got := testutil.Booked(t, db, id); got != 5 {
		t.Fatalf("booked = %d after rejected reservation, want 5", got)
	}
}

func TestReserveTxMissingEvent(t *testing.T) {
	db := testutil.NewDB(t)
	r := NewEventRepo(db)
	if _, err := reserve(t, r, 999, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestEventCRUD(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	r := NewEventRepo(db)
	owner := testutil.InsertUser(t, db, "owner@club.com", "Club Owner", "owner")

	ev := model.Event{Title: "Gala", Date: "2026-11-01", Time: "19:30", PriceCents: 10000, Capacity: 2, CreatedBy: &owner}
	if err := r.Create(ctx, &ev); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := r.GetByID(ctx, ev.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.CreatedByName == nil || *got.CreatedByName != "Club Owner" {
		t.Fatalf("created_by_name = %v", got.CreatedByName)
	}
	if got.Booked != 0 || got.Available() != 2 {
		t.Fatalf("booked=%d available=%d", got.Booked, got.Available())
	}

	if _, err := reserve(t, r, ev.ID, 2); err != nil {
		t.Fatal(err)
	}
	ev.Capacity = 1
	if err := r.Update(ctx, ev); !errors.Is(err, ErrCapacityBelowBooked) {
		t.Fatalf("Update below booked: err = %v", err)
	}
	ev.Capacity = 10
	ev.Title = "Grand Gala"
	if err := r.Update(ctx, ev); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ = r.GetByID(ctx, ev.ID)
	if got.Title != "Grand Gala" || got.Capacity != 10 || got.Booked != 2 {
		t.Fatalf("after update: %+v", got)
	}
	if err := r.Update(ctx, model.Event{ID: 4242, Title: "x", Date: "2026-01-01", Time: "10:00", Capacity: 1}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Update missing: err = %v", err)
	}

	list, err := r.List(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("List = %v, %v", list, err)
	}
}

func TestDeleteEventWithBookingsConflicts(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	r := NewEventRepo(db)
	booked := testutil.InsertEvent(t, db, "Booked", 100, 10)
	empty := testutil.InsertEvent(t, db, "Empty", 100, 10)
	user := testutil.InsertUser(t, db, "user@club.com", "John", "user")

	tx, _ := db.BeginTx(ctx, nil)
	b := model.Booking{UserID: user, EventID: booked, Tickets: 1, TotalPriceCents: 100, PaymentStatus: model.PaymentCompleted}
	if err := NewBookingRepo(db).CreateTx(ctx, tx, &b); err != nil {
		t.Fatal(err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}

	if err := r.Delete(ctx, booked); !errors.Is(err, ErrConflict) {
		t.Fatalf("Delete booked: err = %v, want ErrConflict", err)
	}
	if err := r.Delete(ctx, empty); err != nil {
		t.Fatalf("Delete empty: %v", err)
	}
	if err := r.Delete(ctx, empty); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Delete twice: err = %v, want ErrNotFound", err)
	}
	if n := testutil.Count(t, db, "events"); n != 1 {
		t.Fatalf("events = %d, want 1", n)
	}
}
