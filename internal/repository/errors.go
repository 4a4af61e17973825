// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers such as
// services and handlers to distinguish between failure scenarios without
// inspecting driver errors.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when the addressed row does not exist.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when a user with the same email is already
// stored.  Handlers translate this into an HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")

// ErrCapacityExceeded is returned by ReserveTx when the event exists but
// does not have enough unsold tickets left.
var ErrCapacityExceeded = errors.New("capacity exceeded")

// ErrCapacityBelowBooked is returned when an update would set an event's
// capacity below the number of tickets already sold.
var ErrCapacityBelowBooked = errors.New("capacity below booked tickets")

// ErrConflict is returned when a delete cannot be performed because of
// dependent records, such as deleting an event that still has bookings.
// Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrInvalidType is returned for a notification type outside the closed
// set.
var ErrInvalidType = errors.New("invalid notification type")

// isDuplicateKey recognises unique-constraint violations from both
// supported drivers.
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
