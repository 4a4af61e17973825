package model

import "time"

// User represents a club account as stored in the `users` table.
//
// Fields:
//
//	ID           – primary key identifier.
//	Email        – unique login address, stored trimmed.
//	PasswordHash – bcrypt hash of the password; never serialized.
//	Name         – display name shown on events and bookings.
//	Role         – owner, admin or user.
//	CreatedAt    – timestamp of creation.
type User struct {
	ID           uint64    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
