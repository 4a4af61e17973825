package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/iliyamo/club-events/internal/model"
	"github.com/iliyamo/club-events/internal/utils"
)

// DefaultSettings are inserted when missing; existing values are kept.
var DefaultSettings = []model.Setting{
	{Key: model.SettingMaintenanceMode, Value: "false"},
	{Key: model.SettingClubName, Value: "Elite Club"},
	{Key: model.SettingClubDescription, Value: "The most exclusive club in town"},
}

// SeedAccount is a demo account created by SeedUsers.
type SeedAccount struct {
	Email string
	Name  string
	Role  model.Role
}

// DemoAccounts share the password passed to SeedUsers.
var DemoAccounts = []SeedAccount{
	{Email: "owner@club.com", Name: "Club Owner", Role: model.RoleOwner},
	{Email: "admin@club.com", Name: "Club Admin", Role: model.RoleAdmin},
	{Email: "user@club.com", Name: "John Doe", Role: model.RoleUser},
}

// SeedSettings inserts DefaultSettings that are not present yet.
func SeedSettings(ctx context.Context, db *sql.DB) error {
	for _, s := range DefaultSettings {
		var n int
		if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM settings WHERE `key` = ?", s.Key).Scan(&n); err != nil {
			return fmt.Errorf("check setting %s: %w", s.Key, err)
		}
		if n > 0 {
			continue
		}
		if _, err := db.ExecContext(ctx, "INSERT INTO settings (`key`, value) VALUES (?, ?)", s.Key, s.Value); err != nil {
			return fmt.Errorf("insert setting %s: %w", s.Key, err)
		}
	}
	return nil
}

// SeedUsers creates DemoAccounts when the users table is empty and
// reports how many rows were inserted.
func SeedUsers(ctx context.Context, db *sql.DB, password string, cost int) (int, error) {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return 0, nil
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	now := time.Now().UTC()
	for _, a := range DemoAccounts {
		if _, err := db.ExecContext(ctx,
			"INSERT INTO users (email, password_hash, name, role, created_at) VALUES (?,?,?,?,?)",
			a.Email, hash, a.Name, a.Role.String(), now); err != nil {
			return 0, fmt.Errorf("insert %s: %w", a.Email, err)
		}
	}
	return len(DemoAccounts), nil
}
