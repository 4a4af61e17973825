// Package testutil provides in-memory stores and fixtures for package
// tests.
package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/club-events/internal/database"
)

// Password is the clear-text password of every fixture user.
const Password = "password123"

// NewDB opens a private in-memory SQLite database with the schema and
// default settings applied.  It is closed when the test ends.
func NewDB(t testing.TB) *sql.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	ctx := context.Background()
	if err := database.Migrate(ctx, db, database.SQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := database.SeedSettings(ctx, db); err != nil {
		t.Fatalf("seed settings: %v", err)
	}
	return db
}

// InsertUser stores a user with Password and returns its id.  role is
// the stored name: user, admin or owner.
func InsertUser(t testing.TB, db *sql.DB, email, name, role string) uint64 {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	res, err := db.Exec(`INSERT INTO users (email, password_hash, name, role, created_at) VALUES (?,?,?,?,?)`,
		email, string(hash), name, role, time.Now().UTC())
	if err != nil {
		t.Fatalf("insert user %s: %v", email, err)
	}
	id, _ := res.LastInsertId()
	return uint64(id)
}

// InsertEvent stores an event with the given price and capacity and
// returns its id.
func InsertEvent(t testing.TB, db *sql.DB, title string, priceCents int64, capacity int) uint64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO events (title, description, date, time, price_cents, capacity, booked, image_url, created_by, created_at)
		VALUES (?, '', '2026-12-31', '20:00', ?, ?, 0, '', NULL, ?)`, title, priceCents, capacity, time.Now().UTC())
	if err != nil {
		t.Fatalf("insert event %s: %v", title, err)
	}
	id, _ := res.LastInsertId()
	return uint64(id)
}

// Booked returns the booked counter of an event.
func Booked(t testing.TB, db *sql.DB, eventID uint64) int {
	t.Helper()
	var n int
	if err := db.QueryRow(`SELECT booked FROM events WHERE id = ?`, eventID).Scan(&n); err != nil {
		t.Fatalf("read booked: %v", err)
	}
	return n
}

// Count returns SELECT COUNT(*) for the given table.
func Count(t testing.TB, db *sql.DB, table string) int {
	t.Helper()
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}
