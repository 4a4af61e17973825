// Package queue carries the booking.confirmed feed: the payload, a
// publisher used after a booking commits, and a background consumer that
// writes an audit log.
package queue

import (
	"fmt"
	"time"
)

// BookingConfirmedEvent is published after a booking transaction commits.
// It contains enough information for downstream consumers to log or
// notify without querying the primary database.
type BookingConfirmedEvent struct {
	BookingID       uint64    `json:"booking_id"`
	UserID          uint64    `json:"user_id"`
	EventID         uint64    `json:"event_id"`
	EventTitle      string    `json:"event_title"`
	Tickets         int       `json:"tickets"`
	TotalPriceCents int64     `json:"total_price_cents"`
	ConfirmedAt     time.Time `json:"confirmed_at"`
}

// AuditLine renders the event as one line of the booking audit log.
func (ev BookingConfirmedEvent) AuditLine() string {
	return fmt.Sprintf("[%s] Booking confirmed | booking_id=%d | user_id=%d | event_id=%d | event=%q | tickets=%d | total=%d cents\n",
		ev.ConfirmedAt.UTC().Format(time.RFC3339), ev.BookingID, ev.UserID, ev.EventID, ev.EventTitle, ev.Tickets, ev.TotalPriceCents)
}
