package model

import "time"

// Event is a bookable club event.  Booked counts tickets sold so far
// and is only ever raised by the booking transaction; 0 <= Booked <=
// Capacity holds for every committed row.
//
// Fields:
//
//	ID            – primary key identifier.
//	Title         – event name.
//	Description   – optional long text.
//	Date, Time    – local schedule as entered by admins (YYYY-MM-DD, HH:MM).
//	PriceCents    – price of a single ticket in cents.
//	Capacity      – total tickets available.
//	Booked        – tickets sold.
//	ImageURL      – optional poster image.
//	CreatedBy     – admin/owner who created the event (nil once that user is gone).
//	CreatedByName – display name of CreatedBy, filled on reads.
//	CreatedAt     – creation timestamp.
type Event struct {
	ID            uint64    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	PriceCents    int64     `json:"price_cents"`
	Capacity      int       `json:"capacity"`
	Booked        int       `json:"booked"`
	ImageURL      string    `json:"image_url"`
	CreatedBy     *uint64   `json:"created_by,omitempty"`
	CreatedByName *string   `json:"created_by_name,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Available returns the number of tickets still for sale.
func (e Event) Available() int {
	if e.Booked >= e.Capacity {
		return 0
	}
	return e.Capacity - e.Booked
}
