package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/club-events/internal/middleware"
	"github.com/iliyamo/club-events/internal/model"
	"github.com/iliyamo/club-events/internal/repository"
	"github.com/iliyamo/club-events/internal/service"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Verifier *service.CredentialVerifier
	Users    *repository.UserRepo
	Log      zerolog.Logger
}

func NewAuthHandler(v *service.CredentialVerifier, u *repository.UserRepo, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{Verifier: v, Users: u, Log: log}
}

// ----- DTOs -----

type registerReq struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Name     string `json:"name" validate:"required,max=100"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userPart struct {
	ID    uint64     `json:"id"`
	Email string     `json:"email"`
	Name  string     `json:"name"`
	Role  model.Role `json:"role"`
}

type authResp struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      userPart  `json:"user"`
}

func toUserPart(u model.User) userPart {
	return userPart{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

// Register creates a member account and returns a session.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	s, err := h.Verifier.Register(c.Request().Context(), req.Email, req.Password, req.Name)
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
	case errors.Is(err, service.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email, password and name are required"})
	case err != nil:
		return internalError(c, h.Log, err, "register failed")
	}
	return c.JSON(http.StatusCreated, authResp{Token: s.Token, ExpiresAt: s.ExpiresAt, User: toUserPart(s.User)})
}

// Login verifies credentials and returns a session.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	s, err := h.Verifier.Authenticate(c.Request().Context(), req.Email, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	if err != nil {
		return internalError(c, h.Log, err, "login failed")
	}
	return c.JSON(http.StatusOK, authResp{Token: s.Token, ExpiresAt: s.ExpiresAt, User: toUserPart(s.User)})
}

// Me returns the account behind the caller's token.
func (h *AuthHandler) Me(c echo.Context) error {
	claim, ok := middleware.ClaimFrom(c)
	if !ok {
		return unauthorized(c)
	}
	u, err := h.Users.GetByID(c.Request().Context(), claim.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	if err != nil {
		return internalError(c, h.Log, err, "load user failed")
	}
	return c.JSON(http.StatusOK, toUserPart(u))
}
