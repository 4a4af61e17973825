package model

import "time"

// Payment statuses recorded on bookings.  Settlement is not performed,
// bookings are written as completed.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
)

// Booking is the immutable receipt of a ledger reservation.
// TotalPriceCents is the per-ticket price at booking time multiplied
// by Tickets and is never recomputed.
type Booking struct {
	ID              uint64    `json:"id"`
	UserID          uint64    `json:"user_id"`
	EventID         uint64    `json:"event_id"`
	Tickets         int       `json:"tickets"`
	TotalPriceCents int64     `json:"total_price_cents"`
	PaymentStatus   string    `json:"payment_status"`
	BookingDate     time.Time `json:"booking_date"`
}

// BookingDetail is a booking joined with the event (and for admin
// listings the booking user) for display.
type BookingDetail struct {
	Booking
	EventTitle    string  `json:"event_title"`
	EventDate     string  `json:"event_date"`
	EventTime     string  `json:"event_time"`
	EventImageURL string  `json:"event_image_url"`
	UserName      *string `json:"user_name,omitempty"`
	UserEmail     *string `json:"user_email,omitempty"`
}

// Stats aggregates dashboard numbers for admins.
type Stats struct {
	TotalEvents   int64 `json:"totalEvents"`
	TotalBookings int64 `json:"totalBookings"`
	TotalRevenue  int64 `json:"totalRevenue"`
	TotalUsers    int64 `json:"totalUsers"`
}
