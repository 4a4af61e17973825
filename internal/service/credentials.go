package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/club-events/internal/model"
	"github.com/iliyamo/club-events/internal/repository"
	"github.com/iliyamo/club-events/internal/utils"
)

// SessionClaim is the decoded, validated content of a session token.
type SessionClaim struct {
	UserID    uint64
	Email     string
	Role      model.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Session is returned by Authenticate and Register.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Claim     SessionClaim
	User      model.User
}

// CredentialVerifier issues and verifies session tokens backed by the
// identity store.
type CredentialVerifier struct {
	users  *repository.UserRepo
	secret string
	ttl    time.Duration
	cost   int
	now    func() time.Time
}

// NewCredentialVerifier wires the verifier.  ttl is the session lifetime
// and cost the bcrypt cost used for new accounts.
func NewCredentialVerifier(users *repository.UserRepo, secret string, ttl time.Duration, cost int) *CredentialVerifier {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CredentialVerifier{users: users, secret: secret, ttl: ttl, cost: cost, now: time.Now}
}

// WithClock replaces the time source; tests use it to expire tokens.
func (v *CredentialVerifier) WithClock(now func() time.Time) *CredentialVerifier {
	cp := *v
	cp.now = now
	return &cp
}

// Authenticate checks email and secret and opens a session.
func (v *CredentialVerifier) Authenticate(ctx context.Context, email, secret string) (Session, error) {
	u, err := v.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("lookup user: %w", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, secret) {
		return Session{}, ErrInvalidCredentials
	}
	return v.issue(u)
}

// Register creates a member account and opens a session for it.
func (v *CredentialVerifier) Register(ctx context.Context, email, secret, name string) (Session, error) {
	u, err := v.Provision(ctx, email, secret, name, model.RoleUser)
	if err != nil {
		return Session{}, err
	}
	return v.issue(u)
}

// Provision creates an account with an explicit role without opening a
// session.  Owners use it to add admins and users.
func (v *CredentialVerifier) Provision(ctx context.Context, email, secret, name string, role model.Role) (model.User, error) {
	email, name = strings.TrimSpace(email), strings.TrimSpace(name)
	if email == "" || secret == "" || name == "" || !role.Valid() {
		return model.User{}, ErrInvalidInput
	}
	hash, err := utils.HashPassword(secret, v.cost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}
	u, err := v.users.Create(ctx, email, hash, name, role)
	if errors.Is(err, repository.ErrEmailExists) {
		return model.User{}, ErrEmailTaken
	}
	if err != nil {
		return model.User{}, err
	}
	return u, nil
}

// Verify validates a raw token and returns its claim.  Any failure,
// including an unknown role, yields ErrTokenInvalid.
func (v *CredentialVerifier) Verify(token string) (SessionClaim, error) {
	claims, err := utils.ParseSessionToken(v.secret, token, v.now())
	if err != nil {
		return SessionClaim{}, ErrTokenInvalid
	}
	id, err := claims.UserID()
	if err != nil {
		return SessionClaim{}, ErrTokenInvalid
	}
	role, err := model.ParseRole(claims.Role)
	if err != nil {
		return SessionClaim{}, ErrTokenInvalid
	}
	sc := SessionClaim{UserID: id, Email: claims.Email, Role: role}
	if claims.IssuedAt != nil {
		sc.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		sc.ExpiresAt = claims.ExpiresAt.Time
	}
	return sc, nil
}

func (v *CredentialVerifier) issue(u model.User) (Session, error) {
	now := v.now().UTC()
	tok, err := utils.NewSessionToken(v.secret, u.ID, u.Email, u.Role.String(), v.ttl, now)
	if err != nil {
		return Session{}, fmt.Errorf("sign session: %w", err)
	}
	return Session{
		Token:     tok.Token,
		ExpiresAt: tok.Exp,
		Claim: SessionClaim{
			UserID:    u.ID,
			Email:     u.Email,
			Role:      u.Role,
			IssuedAt:  now.Truncate(time.Second),
			ExpiresAt: tok.Exp.Truncate(time.Second),
		},
		User: u,
	}, nil
}
