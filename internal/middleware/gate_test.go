package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/club-events/internal/model"
	"github.com/iliyamo/club-events/internal/service"
)

// tokenTable maps raw tokens to claims.
type tokenTable map[string]service.SessionClaim

func (t tokenTable) Verify(raw string) (service.SessionClaim, error) {
	c, ok := t[raw]
	if !ok {
		return service.SessionClaim{}, service.ErrTokenInvalid
	}
	return c, nil
}

type flag struct {
	on    bool
	err   error
	calls int
}

func (f *flag) MaintenanceEnabled(context.Context) (bool, error) {
	f.calls++
	return f.on, f.err
}

var tokens = tokenTable{
	"user":  {UserID: 1, Role: model.RoleUser},
	"admin": {UserID: 2, Role: model.RoleAdmin},
	"owner": {UserID: 3, Role: model.RoleOwner},
}

func run(t *testing.T, g *Gate, p Policy, token string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	reached := false
	e.GET("/x", func(c echo.Context) error {
		reached = true
		if _, ok := ClaimFrom(c); !ok {
			t.Error("claim missing in handler")
		}
		return c.NoContent(http.StatusOK)
	}, g.Require(p))
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, reached
}

func TestGateStatuses(t *testing.T) {
	admins := []model.Role{model.RoleAdmin, model.RoleOwner}
	cases := []struct {
		name        string
		policy      Policy
		maintenance bool
		token       string
		status      int
		code        string
	}{
		{"no token", Policy{}, false, "", http.StatusUnauthorized, "unauthenticated"},
		{"bad token", Policy{}, false, "forged", http.StatusForbidden, "invalid_token"},
		{"member ok", Policy{}, false, "user", http.StatusOK, ""},
		{"member on admin route", Policy{Roles: admins}, false, "user", http.StatusForbidden, "forbidden"},
		{"admin on owner route", Policy{Roles: []model.Role{model.RoleOwner}}, false, "admin", http.StatusForbidden, "forbidden"},
		{"admin ok", Policy{Roles: admins}, false, "admin", http.StatusOK, ""},
		{"member during maintenance", Policy{}, true, "user", http.StatusServiceUnavailable, "maintenance"},
		{"admin during maintenance", Policy{Roles: admins}, true, "admin", http.StatusServiceUnavailable, "maintenance"},
		{"owner during maintenance", Policy{}, true, "owner", http.StatusOK, ""},
		{"skip maintenance", Policy{SkipMaintenance: true}, true, "user", http.StatusOK, ""},
		{"forbidden before maintenance", Policy{Roles: admins}, true, "user", http.StatusForbidden, "forbidden"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := NewGate(tokens, &flag{on: tc.maintenance}, zerolog.Nop())
			rec, reached := run(t, g, tc.policy, tc.token)
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tc.status, rec.Body)
			}
			if reached != (tc.status == http.StatusOK) {
				t.Fatalf("handler reached = %v", reached)
			}
			if tc.code == "" {
				return
			}
			var body map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body["code"] != tc.code {
				t.Fatalf("code = %v, want %s", body["code"], tc.code)
			}
			if _, ok := body["error"].(string); !ok {
				t.Fatalf("error message missing: %v", body)
			}
			if tc.status == http.StatusServiceUnavailable && body["maintenance"] != true {
				t.Fatalf("maintenance flag missing: %v", body)
			}
		})
	}
}

func TestGateSettingsFailureIsInternal(t *testing.T) {
	g := NewGate(tokens, &flag{err: errors.New("db gone")}, zerolog.Nop())
	rec, reached := run(t, g, Policy{}, "user")
	if rec.Code != http.StatusInternalServerError || reached {
		t.Fatalf("status = %d reached = %v", rec.Code, reached)
	}
}

func TestOwnerSkipsSettingsRead(t *testing.T) {
	f := &flag{err: errors.New("db gone")}
	g := NewGate(tokens, f, zerolog.Nop())
	rec, _ := run(t, g, Policy{}, "owner")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if f.calls != 0 {
		t.Fatalf("settings read %d times for owner", f.calls)
	}
}

func TestGateRejectsNonBearerScheme(t *testing.T) {
	g := NewGate(tokens, &flag{}, zerolog.Nop())
	e := echo.New()
	e.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, g.Require(Policy{}))
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(echo.HeaderAuthorization, "Basic dXNlcjpwdw==")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}
