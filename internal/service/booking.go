package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/club-events/internal/model"
	"github.com/iliyamo/club-events/internal/queue"
	"github.com/iliyamo/club-events/internal/repository"
)

// Publisher receives a message for every committed booking.
type Publisher interface {
	PublishBookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error
}

// CachePurger drops cached event listings after booked counts change.
type CachePurger interface {
	Purge(ctx context.Context) error
}

// BookingEngine executes the booking transaction: ledger reservation,
// booking receipt and success notification commit together or not at
// all.
type BookingEngine struct {
	events        *repository.EventRepo
	bookings      *repository.BookingRepo
	notifications *repository.NotificationRepo
	publisher     Publisher
	cache         CachePurger
	log           zerolog.Logger
	now           func() time.Time
}

// NewBookingEngine wires the engine.  publisher and cache may be nil.
func NewBookingEngine(events *repository.EventRepo, bookings *repository.BookingRepo, notifications *repository.NotificationRepo, publisher Publisher, cache CachePurger, log zerolog.Logger) *BookingEngine {
	return &BookingEngine{
		events:        events,
		bookings:      bookings,
		notifications: notifications,
		publisher:     publisher,
		cache:         cache,
		log:           log,
		now:           time.Now,
	}
}

// Book reserves tickets on eventID for userID.  Losers of a race for the
// last seats get ErrCapacityExceeded; there is no retry.
func (e *BookingEngine) Book(ctx context.Context, userID, eventID uint64, tickets int) (model.Booking, error) {
	if tickets < 1 {
		return model.Booking{}, ErrInvalidTicketCount
	}

	tx, err := e.events.DB().BeginTx(ctx, nil)
	if err != nil {
		return model.Booking{}, fmt.Errorf("begin booking tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := e.events.ReserveTx(ctx, tx, eventID, tickets)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return model.Booking{}, ErrEventNotFound
	case errors.Is(err, repository.ErrCapacityExceeded):
		return model.Booking{}, ErrCapacityExceeded
	case err != nil:
		return model.Booking{}, err
	}

	b := model.Booking{
		UserID:          userID,
		EventID:         eventID,
		Tickets:         tickets,
		TotalPriceCents: int64(tickets) * res.PriceCents,
		PaymentStatus:   model.PaymentCompleted,
		BookingDate:     e.now().UTC(),
	}
	if err := e.bookings.CreateTx(ctx, tx, &b); err != nil {
		return model.Booking{}, err
	}
	msg := fmt.Sprintf("Successfully booked %d ticket(s) for %s", tickets, res.Title)
	if _, err := e.notifications.AppendTx(ctx, tx, userID, msg, model.NotificationSuccess); err != nil {
		return model.Booking{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Booking{}, fmt.Errorf("commit booking: %w", err)
	}
	committed = true

	e.afterCommit(ctx, b, res.Title)
	return b, nil
}

// afterCommit runs the best-effort side effects of a booking.  Failures
// are logged and never undo the booking.
func (e *BookingEngine) afterCommit(ctx context.Context, b model.Booking, title string) {
	if e.publisher != nil {
		ev := queue.BookingConfirmedEvent{
			BookingID:       b.ID,
			UserID:          b.UserID,
			EventID:         b.EventID,
			EventTitle:      title,
			Tickets:         b.Tickets,
			TotalPriceCents: b.TotalPriceCents,
			ConfirmedAt:     b.BookingDate,
		}
		if err := e.publisher.PublishBookingConfirmed(ctx, ev); err != nil {
			e.log.Warn().Err(err).Uint64("booking_id", b.ID).Msg("booking.confirmed not published")
		}
	}
	if e.cache != nil {
		if err := e.cache.Purge(ctx); err != nil {
			e.log.Warn().Err(err).Msg("events cache purge failed")
		}
	}
}
