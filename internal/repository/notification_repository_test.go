package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/iliyamo/club-events/internal/model"
	"github.com/iliyamo/club-events/internal/testutil"
)

func TestNotificationsReadFlow(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	r := NewNotificationRepo(db)
	alice := testutil.InsertUser(t, db, "alice@club.com", "Alice", "user")
	bob := testutil.InsertUser(t, db, "bob@club.com", "Bob", "user")

	first, err := r.Append(ctx, alice, "first", "")
	if err != nil {
		t.Fatal(err)
	}
	if first.Type != model.NotificationInfo {
		t.Fatalf("default type = %q", first.Type)
	}
	second, _ := r.Append(ctx, alice, "second", model.NotificationWarning)
	if _, err := r.Append(ctx, alice, "bad", "urgent"); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("invalid type: err = %v", err)
	}

	list, err := r.ListRecent(ctx, alice, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != second.ID {
		t.Fatalf("ListRecent order: %+v", list)
	}

	// Bob cannot mark Alice's notification.
	if err := r.MarkRead(ctx, first.ID, bob); err != nil {
		t.Fatal(err)
	}
	list, _ = r.ListRecent(ctx, alice, 50)
	for _, n := range list {
		if n.Read {
			t.Fatalf("notification %d marked by another user", n.ID)
		}
	}

	if err := r.MarkRead(ctx, first.ID, alice); err != nil {
		t.Fatal(err)
	}
	if err := r.MarkAllRead(ctx, alice); err != nil {
		t.Fatal(err)
	}
	list, _ = r.ListRecent(ctx, alice, 50)
	for _, n := range list {
		if !n.Read {
			t.Fatalf("notification %d still unread", n.ID)
		}
	}
}

func TestListRecentLimit(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	r := NewNotificationRepo(db)
	u := testutil.InsertUser(t, db, "many@club.com", "Many", "user")
	for i := 0; i < DefaultNotificationLimit+5; i++ {
		if _, err := r.Append(ctx, u, "msg", model.NotificationInfo); err != nil {
			t.Fatal(err)
		}
	}
	list, err := r.ListRecent(ctx, u, DefaultNotificationLimit)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != DefaultNotificationLimit {
		t.Fatalf("len = %d, want %d", len(list), DefaultNotificationLimit)
	}
}

func TestBroadcastReachesMembersOnly(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	r := NewNotificationRepo(db)
	testutil.InsertUser(t, db, "owner@club.com", "Owner", "owner")
	testutil.InsertUser(t, db, "admin@club.com", "Admin", "admin")
	for _, e := range []string{"u1@club.com", "u2@club.com", "u3@club.com"} {
		testutil.InsertUser(t, db, e, "Member", "user")
	}

	n, err := r.Broadcast(ctx, "Pool closed today", model.NotificationWarning)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("broadcast count = %d, want 3", n)
	}
	if got := testutil.Count(t, db, "notifications"); got != 3 {
		t.Fatalf("rows = %d, want 3", got)
	}
	if _, err := r.Broadcast(ctx, "x", "loud"); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("invalid type: err = %v", err)
	}
}
