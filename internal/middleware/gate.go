package middleware // middleware provides shared request processing for handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/club-events/internal/model"
	"github.com/iliyamo/club-events/internal/service"
)

// claimKey is the echo context key holding the authenticated claim.
const claimKey = "session_claim"

// GateErrorKind classifies why a request was stopped by the gate.
type GateErrorKind uint8

const (
	Unauthenticated GateErrorKind = iota + 1
	InvalidToken
	Forbidden
	UnderMaintenance
	GateInternal
)

// GateError is returned by a Stage to stop the pipeline.
type GateError struct {
	Kind GateErrorKind
	Err  error // underlying cause for GateInternal
}

func (e *GateError) Error() string {
	switch e.Kind {
	case Unauthenticated:
		return "authentication required"
	case InvalidToken:
		return "invalid or expired token"
	case Forbidden:
		return "insufficient permissions"
	case UnderMaintenance:
		return "the club is under maintenance, please try again later"
	case GateInternal:
		return "internal server error"
	}
	return "gate error"
}

func (e *GateError) Unwrap() error { return e.Err }

// Status maps the kind to an HTTP status code.
func (e *GateError) Status() int {
	switch e.Kind {
	case Unauthenticated:
		return http.StatusUnauthorized
	case InvalidToken, Forbidden:
		return http.StatusForbidden
	case UnderMaintenance:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// Code is the machine-readable error code sent to clients.
func (e *GateError) Code() string {
	switch e.Kind {
	case Unauthenticated:
		return "unauthenticated"
	case InvalidToken:
		return "invalid_token"
	case Forbidden:
		return "forbidden"
	case UnderMaintenance:
		return "maintenance"
	}
	return "internal"
}

// Stage is one step of the gate pipeline.  A nil result continues.
type Stage func(c echo.Context) *GateError

// TokenVerifier decodes bearer tokens.
type TokenVerifier interface {
	Verify(token string) (service.SessionClaim, error)
}

// MaintenanceSource reports the global maintenance flag.
type MaintenanceSource interface {
	MaintenanceEnabled(ctx context.Context) (bool, error)
}

// Policy describes what a route group requires.  An empty Roles slice
// admits every authenticated role.
type Policy struct {
	Roles           []model.Role
	SkipMaintenance bool
}

// Gate builds the authentication, authorization and maintenance
// pipeline for protected routes.
type Gate struct {
	verifier TokenVerifier
	settings MaintenanceSource
	log      zerolog.Logger
}

func NewGate(verifier TokenVerifier, settings MaintenanceSource, log zerolog.Logger) *Gate {
	return &Gate{verifier: verifier, settings: settings, log: log}
}

// Require returns middleware running the stages in their fixed order:
// authenticate, authorize, then (unless skipped) maintenance.
func (g *Gate) Require(p Policy) echo.MiddlewareFunc {
	stages := []Stage{g.Authenticate(), g.Authorize(p.Roles...)}
	if !p.SkipMaintenance {
		stages = append(stages, g.Maintenance())
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			for _, stage := range stages {
				if gerr := stage(c); gerr != nil {
					return g.reject(c, gerr)
				}
			}
			return next(c)
		}
	}
}

// Authenticate reads the bearer token and stores the verified claim in
// the context.
func (g *Gate) Authenticate() Stage {
	return func(c echo.Context) *GateError {
		auth := c.Request().Header.Get(echo.HeaderAuthorization)
		raw, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			return &GateError{Kind: Unauthenticated}
		}
		claim, err := g.verifier.Verify(strings.TrimSpace(raw))
		if err != nil {
			return &GateError{Kind: InvalidToken}
		}
		c.Set(claimKey, claim)
		return nil
	}
}

// Authorize admits only the given roles; with no roles every valid role
// passes.
func (g *Gate) Authorize(roles ...model.Role) Stage {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c echo.Context) *GateError {
		claim, ok := ClaimFrom(c)
		if !ok || !claim.Role.Valid() {
			return &GateError{Kind: Forbidden}
		}
		if len(allowed) > 0 && !allowed[claim.Role] {
			return &GateError{Kind: Forbidden}
		}
		return nil
	}
}

// Maintenance rejects non-owners while maintenance_mode is on.  A
// failure to read the flag is an internal error, never a pass.
func (g *Gate) Maintenance() Stage {
	return func(c echo.Context) *GateError {
		claim, ok := ClaimFrom(c)
		if !ok {
			return &GateError{Kind: Forbidden}
		}
		switch claim.Role {
		case model.RoleOwner:
			return nil
		case model.RoleAdmin, model.RoleUser:
			on, err := g.settings.MaintenanceEnabled(c.Request().Context())
			if err != nil {
				return &GateError{Kind: GateInternal, Err: err}
			}
			if on {
				return &GateError{Kind: UnderMaintenance}
			}
			return nil
		default:
			return &GateError{Kind: Forbidden}
		}
	}
}

func (g *Gate) reject(c echo.Context, gerr *GateError) error {
	if gerr.Kind == GateInternal {
		g.log.Error().Err(gerr.Err).Str("path", c.Path()).Msg("gate failure")
	}
	body := echo.Map{"error": gerr.Error(), "code": gerr.Code()}
	if gerr.Kind == UnderMaintenance {
		body["maintenance"] = true
	}
	return c.JSON(gerr.Status(), body)
}

// ClaimFrom returns the claim stored by Authenticate.
func ClaimFrom(c echo.Context) (service.SessionClaim, bool) {
	claim, ok := c.Get(claimKey).(service.SessionClaim)
	return claim, ok
}
