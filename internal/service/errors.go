// Package service holds the business operations that span repositories:
// credential handling and the booking transaction.
package service

import "errors"

var (
	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password so callers cannot probe for accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrTokenInvalid       = errors.New("invalid or expired token")
	ErrInvalidInput       = errors.New("invalid input")

	ErrInvalidTicketCount = errors.New("tickets must be at least 1")
	ErrEventNotFound      = errors.New("event not found")
	ErrCapacityExceeded   = errors.New("not enough tickets available")
)
