package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/iliyamo/club-events/internal/model"
)

// BookingRepo stores booking receipts.  Rows are written once and never
// updated.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// CreateTx inserts b within the caller's transaction and populates its
// ID.  BookingDate is set when zero.  The caller must commit or roll
// back the transaction.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	if b.BookingDate.IsZero() {
		b.BookingDate = time.Now().UTC()
	}
	if b.PaymentStatus == "" {
		b.PaymentStatus = model.PaymentPending
	}
	const q = `INSERT INTO bookings (user_id, event_id, tickets, total_price_cents, payment_status, booking_date) VALUES (?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, b.UserID, b.EventID, b.Tickets, b.TotalPriceCents, b.PaymentStatus, b.BookingDate)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

const bookingDetailSelect = `SELECT b.id, b.user_id, b.event_id, b.tickets, b.total_price_cents, b.payment_status, b.booking_date,
       e.title, e.date, e.time, e.image_url, u.name, u.email
FROM bookings b
JOIN events e ON e.id = b.event_id
LEFT JOIN users u ON u.id = b.user_id`

// ListByUser returns the caller's bookings joined with their events,
// newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.BookingDetail, error) {
	return r.list(ctx, bookingDetailSelect+` WHERE b.user_id = ? ORDER BY b.booking_date DESC, b.id DESC`, userID)
}

// ListAll returns every booking with event and user details for the
// admin view.  Bookings of deleted users are kept with empty user fields.
func (r *BookingRepo) ListAll(ctx context.Context) ([]model.BookingDetail, error) {
	return r.list(ctx, bookingDetailSelect+` ORDER BY b.booking_date DESC, b.id DESC`)
}

func (r *BookingRepo) list(ctx context.Context, q string, args ...any) ([]model.BookingDetail, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.BookingDetail{}
	for rows.Next() {
		var d model.BookingDetail
		var userName, userEmail sql.NullString
		if err := rows.Scan(&d.ID, &d.UserID, &d.EventID, &d.Tickets, &d.TotalPriceCents, &d.PaymentStatus, &d.BookingDate,
			&d.EventTitle, &d.EventDate, &d.EventTime, &d.EventImageURL, &userName, &userEmail); err != nil {
			return nil, err
		}
		if userName.Valid {
			s := userName.String
			d.UserName = &s
		}
		if userEmail.Valid {
			s := userEmail.String
			d.UserEmail = &s
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Stats computes the admin dashboard figures.  Revenue is the sum of all
// booking totals in cents; TotalUsers counts only member accounts.
func (r *BookingRepo) Stats(ctx context.Context) (model.Stats, error) {
	var s model.Stats
	const q = `SELECT
  (SELECT COUNT(*) FROM events),
  (SELECT COUNT(*) FROM bookings),
  (SELECT COALESCE(SUM(total_price_cents), 0) FROM bookings),
  (SELECT COUNT(*) FROM users WHERE role = ?)`
	err := r.db.QueryRowContext(ctx, q, model.RoleUser.String()).
		Scan(&s.TotalEvents, &s.TotalBookings, &s.TotalRevenue, &s.TotalUsers)
	if err != nil {
		return model.Stats{}, fmt.Errorf("stats: %w", err)
	}
	return s, nil
}
