package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/club-events/internal/model"
)

// EventRepo is the event ledger.  Booked is only raised through
// ReserveTx; admin updates never touch it.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo returns a new EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// DB exposes the underlying sql.DB so the booking engine can begin a
// transaction spanning several repositories.
func (r *EventRepo) DB() *sql.DB { return r.db }

const eventSelect = `SELECT e.id, e.title, e.description, e.date, e.time, e.price_cents,
       e.capacity, e.booked, e.image_url, e.created_by, u.name, e.created_at
FROM events e
LEFT JOIN users u ON u.id = e.created_by`

// List returns all events ordered by schedule.
func (r *EventRepo) List(ctx context.Context) ([]model.Event, error) {
	rows, err := r.db.QueryContext(ctx, eventSelect+` ORDER BY e.date, e.time, e.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := []model.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// GetByID returns a single event or ErrNotFound.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (model.Event, error) {
	return scanEvent(r.db.QueryRowContext(ctx, eventSelect+` WHERE e.id = ?`, id))
}

// Create inserts a new event with zero tickets booked.  The generated ID
// and creation time are set on e.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
	e.Booked = 0
	e.CreatedAt = time.Now().UTC()
	const q = `INSERT INTO events (title, description, date, time, price_cents, capacity, booked, image_url, created_by, created_at)
               VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, e.Title, e.Description, e.Date, e.Time, e.PriceCents,
		e.Capacity, e.ImageURL, e.CreatedBy, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return nil
}

// Update overwrites the editable fields of an event.  The capacity may
// not drop below the tickets already booked; that check and the write
// happen in one statement so a concurrent booking cannot slip between.
func (r *EventRepo) Update(ctx context.Context, e model.Event) error {
	const q = `UPDATE events SET title = ?, description = ?, date = ?, time = ?, price_cents = ?, capacity = ?, image_url = ?
               WHERE id = ? AND booked <= ?`
	res, err := r.db.ExecContext(ctx, q, e.Title, e.Description, e.Date, e.Time, e.PriceCents,
		e.Capacity, e.ImageURL, e.ID, e.Capacity)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var booked int
	err = r.db.QueryRowContext(ctx, `SELECT booked FROM events WHERE id = ?`, e.ID).Scan(&booked)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if booked > e.Capacity {
		return ErrCapacityBelowBooked
	}
	// row exists and the values were identical
	return nil
}

// Delete removes an event.  Events that still have bookings cannot be
// deleted and yield ErrConflict.
func (r *EventRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	var one int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM events WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	var bookings int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings WHERE event_id = ?`, id).Scan(&bookings); err != nil {
		return err
	}
	if bookings > 0 {
		return ErrConflict
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Reservation is what ReserveTx reports about the event it charged.
type Reservation struct {
	Title      string
	PriceCents int64
}

// ReserveTx raises booked by tickets inside tx if, and only if, the
// result stays within capacity.  The conditional UPDATE takes the row
// lock, so concurrent callers for the same event are serialized and the
// loser sees ErrCapacityExceeded.  Title and price are read after the
// lock so they match the committed booking.
func (r *EventRepo) ReserveTx(ctx context.Context, tx *sql.Tx, eventID uint64, tickets int) (Reservation, error) {
	const q = `UPDATE events SET booked = booked + ? WHERE id = ? AND booked + ? <= capacity`
	res, err := tx.ExecContext(ctx, q, tickets, eventID, tickets)
	if err != nil {
		return Reservation{}, fmt.Errorf("reserve tickets: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Reservation{}, err
	}
	if n == 0 {
		var one int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM events WHERE id = ?`, eventID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return Reservation{}, ErrNotFound
		}
		if err != nil {
			return Reservation{}, err
		}
		return Reservation{}, ErrCapacityExceeded
	}
	var out Reservation
	if err := tx.QueryRowContext(ctx, `SELECT title, price_cents FROM events WHERE id = ?`, eventID).
		Scan(&out.Title, &out.PriceCents); err != nil {
		return Reservation{}, err
	}
	return out, nil
}

// Count returns the number of events.
func (r *EventRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n)
	return n, err
}

func scanEvent(s rowScanner) (model.Event, error) {
	var e model.Event
	var createdBy sql.NullInt64
	var createdByName sql.NullString
	err := s.Scan(&e.ID, &e.Title, &e.Description, &e.Date, &e.Time, &e.PriceCents,
		&e.Capacity, &e.Booked, &e.ImageURL, &createdBy, &createdByName, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Event{}, ErrNotFound
	}
	if err != nil {
		return model.Event{}, err
	}
	if createdBy.Valid {
		id := uint64(createdBy.Int64)
		e.CreatedBy = &id
	}
	if createdByName.Valid {
		name := createdByName.String
		e.CreatedByName = &name
	}
	return e, nil
}
