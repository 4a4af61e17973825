package model

import (
	"errors"
	"strings"
)

// Role is the closed set of account roles.  The zero value is not a
// valid role so that an unset field never grants access.
type Role uint8

const (
	RoleUser Role = iota + 1
	RoleAdmin
	RoleOwner
)

// ErrUnknownRole is returned by ParseRole for strings outside the set.
var ErrUnknownRole = errors.New("unknown role")

// ParseRole converts the stored/serialized name into a Role.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user":
		return RoleUser, nil
	case "admin":
		return RoleAdmin, nil
	case "owner":
		return RoleOwner, nil
	}
	return 0, ErrUnknownRole
}

// String returns the name used in the database and in session tokens.
func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAdmin:
		return "admin"
	case RoleOwner:
		return "owner"
	}
	return ""
}

// Valid reports whether r is one of the three defined roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleOwner:
		return true
	}
	return false
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, ErrUnknownRole
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
