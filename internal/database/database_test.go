package database

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestMigrateAndSeed(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := Migrate(ctx, db, SQLite); err != nil {
			t.Fatalf("Migrate run %d: %v", i+1, err)
		}
		if err := SeedSettings(ctx, db); err != nil {
			t.Fatalf("SeedSettings run %d: %v", i+1, err)
		}
	}
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM settings").Scan(&n); err != nil || n != len(DefaultSettings) {
		t.Fatalf("settings = %d, %v", n, err)
	}

	// existing values survive reseeding
	if _, err := db.Exec("UPDATE settings SET value = 'true' WHERE `key` = 'maintenance_mode'"); err != nil {
		t.Fatal(err)
	}
	if err := SeedSettings(ctx, db); err != nil {
		t.Fatal(err)
	}
	var v string
	_ = db.QueryRow("SELECT value FROM settings WHERE `key` = 'maintenance_mode'").Scan(&v)
	if v != "true" {
		t.Fatalf("maintenance_mode overwritten: %q", v)
	}

	created, err := SeedUsers(ctx, db, "password123", bcrypt.MinCost)
	if err != nil || created != 3 {
		t.Fatalf("SeedUsers = %d, %v", created, err)
	}
	if again, err := SeedUsers(ctx, db, "password123", bcrypt.MinCost); err != nil || again != 0 {
		t.Fatalf("second SeedUsers = %d, %v", again, err)
	}
	var hash string
	if err := db.QueryRow("SELECT password_hash FROM users WHERE email = 'owner@club.com'").Scan(&hash); err != nil {
		t.Fatal(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte("password123")) != nil {
		t.Fatal("seeded hash does not match password")
	}
}

func TestSplitStatements(t *testing.T) {
	got := splitStatements("CREATE TABLE a (x INT);\n\n  ;CREATE INDEX i ON a (x);\n")
	if len(got) != 2 || got[1] != "CREATE INDEX i ON a (x)" {
		t.Fatalf("split = %q", got)
	}
}
