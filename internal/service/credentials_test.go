package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iliyamo/club-events/internal/model"
	"github.com/iliyamo/club-events/internal/repository"
	"github.com/iliyamo/club-events/internal/testutil"
)

const testSecret = "test-secret"

func newVerifier(t *testing.T) *CredentialVerifier {
	db := testutil.NewDB(t)
	return NewCredentialVerifier(repository.NewUserRepo(db), testSecret, 24*time.Hour, 4)
}

func TestRegisterThenAuthenticate(t *testing.T) {
	v := newVerifier(t)
	ctx := context.Background()

	s, err := v.Register(ctx, "new@club.com", "secret1", "Newbie")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if s.User.Role != model.RoleUser || s.Token == "" {
		t.Fatalf("session = %+v", s)
	}
	if d := s.ExpiresAt.Sub(s.Claim.IssuedAt); d < 24*time.Hour-time.Second || d > 24*time.Hour+time.Second {
		t.Fatalf("ttl = %v, want 24h", d)
	}

	if _, err := v.Register(ctx, "new@club.com", "other", "Dup"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("duplicate: err = %v", err)
	}

	s2, err := v.Authenticate(ctx, "new@club.com", "secret1")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	claim, err := v.Verify(s2.Token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claim.UserID != s.User.ID || claim.Email != "new@club.com" || claim.Role != model.RoleUser {
		t.Fatalf("claim = %+v", claim)
	}
}

func TestAuthenticateFailuresLookAlike(t *testing.T) {
	v := newVerifier(t)
	ctx := context.Background()
	if _, err := v.Register(ctx, "x@club.com", "right", "X"); err != nil {
		t.Fatal(err)
	}
	if _, err := v.Authenticate(ctx, "x@club.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: err = %v", err)
	}
	if _, err := v.Authenticate(ctx, "nobody@club.com", "right"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: err = %v", err)
	}
}

func TestProvisionRole(t *testing.T) {
	v := newVerifier(t)
	u, err := v.Provision(context.Background(), "admin2@club.com", "pw1234", "Second Admin", model.RoleAdmin)
	if err != nil {
		t.Fatal(err)
	}
	if u.Role != model.RoleAdmin {
		t.Fatalf("role = %v", u.Role)
	}
	if _, err := v.Provision(context.Background(), "", "pw", "n", model.RoleUser); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty email: err = %v", err)
	}
}

func TestVerifyRejects(t *testing.T) {
	v := newVerifier(t)
	ctx := context.Background()
	s, err := v.Register(ctx, "t@club.com", "pw1234", "T")
	if err != nil {
		t.Fatal(err)
	}

	expired := v.WithClock(func() time.Time { return time.Now().Add(25 * time.Hour) })
	if _, err := expired.Verify(s.Token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expired: err = %v", err)
	}

	other := NewCredentialVerifier(nil, "another-secret", time.Hour, 4)
	if _, err := other.Verify(s.Token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("wrong secret: err = %v", err)
	}

	if _, err := v.Verify("not-a-token"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("garbage: err = %v", err)
	}

	// a correctly signed token carrying an unknown role is still rejected
	claims := jwt.MapClaims{"sub": "1", "email": "t@club.com", "role": "superuser",
		"iat": time.Now().Unix(), "exp": time.Now().Add(time.Hour).Unix()}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := v.Verify(raw); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("unknown role: err = %v", err)
	}

	// algorithm "none" is never accepted
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := v.Verify(none); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("alg none: err = %v", err)
	}
}
