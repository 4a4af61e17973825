package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/club-events/internal/database"
	"github.com/iliyamo/club-events/internal/model"
)

// SettingsRepo is the key/value settings store.
type SettingsRepo struct {
	db      *sql.DB
	dialect database.Dialect
}

// NewSettingsRepo returns a SettingsRepo; the dialect selects the upsert
// statement.
func NewSettingsRepo(db *sql.DB, dialect database.Dialect) *SettingsRepo {
	return &SettingsRepo{db: db, dialect: dialect}
}

// Get returns the value stored under key or ErrNotFound.
func (r *SettingsRepo) Get(ctx context.Context, key string) (string, error) {
	var v string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE `key` = ?", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return v, err
}

// All returns every setting as a map.
func (r *SettingsRepo) All(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT `key`, value FROM settings")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]string{}
	for rows.Next() {
		var s model.Setting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, err
		}
		out[s.Key] = s.Value
	}
	return out, rows.Err()
}

// Set inserts or replaces the value stored under key.
func (r *SettingsRepo) Set(ctx context.Context, key, value string) error {
	var q string
	switch r.dialect {
	case database.MySQL:
		q = "INSERT INTO settings (`key`, value) VALUES (?, ?) ON DUPLICATE KEY UPDATE value = VALUES(value)"
	case database.SQLite:
		q = "INSERT INTO settings (`key`, value) VALUES (?, ?) ON CONFLICT(`key`) DO UPDATE SET value = excluded.value"
	default:
		return fmt.Errorf("settings: unsupported dialect %q", r.dialect)
	}
	if _, err := r.db.ExecContext(ctx, q, key, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// MaintenanceEnabled reports whether maintenance_mode is "true".  A
// missing row means maintenance is off; any other read failure is
// returned so callers never mistake it for either state.
func (r *SettingsRepo) MaintenanceEnabled(ctx context.Context) (bool, error) {
	v, err := r.Get(ctx, model.SettingMaintenanceMode)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read maintenance flag: %w", err)
	}
	return v == "true", nil
}
