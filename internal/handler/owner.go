package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/club-events/internal/middleware"
	"github.com/iliyamo/club-events/internal/model"
	"github.com/iliyamo/club-events/internal/repository"
	"github.com/iliyamo/club-events/internal/service"
)

// OwnerHandler serves the owner-only settings and user management
// endpoints.
type OwnerHandler struct {
	Settings *repository.SettingsRepo
	Users    *repository.UserRepo
	Verifier *service.CredentialVerifier
	Log      zerolog.Logger
}

func NewOwnerHandler(settings *repository.SettingsRepo, users *repository.UserRepo, v *service.CredentialVerifier, log zerolog.Logger) *OwnerHandler {
	return &OwnerHandler{Settings: settings, Users: users, Verifier: v, Log: log}
}

type settingReq struct {
	Value *string `json:"value" validate:"required"`
}

type maintenanceReq struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

type createUserReq struct {
	Email    string     `json:"email" validate:"required,email,max=255"`
	Password string     `json:"password" validate:"required,min=6,max=72"`
	Name     string     `json:"name" validate:"required,max=100"`
	Role     model.Role `json:"role"`
}

type roleReq struct {
	Role model.Role `json:"role"`
}

// GetSettings handles GET /v1/owner/settings.
func (h *OwnerHandler) GetSettings(c echo.Context) error {
	all, err := h.Settings.All(c.Request().Context())
	if err != nil {
		return internalError(c, h.Log, err, "load settings failed")
	}
	return c.JSON(http.StatusOK, all)
}

// UpdateSetting handles PUT /v1/owner/settings/:key.
func (h *OwnerHandler) UpdateSetting(c echo.Context) error {
	key := c.Param("key")
	if key == "" || len(key) > 100 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid setting key"})
	}
	var req settingReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	if key == model.SettingMaintenanceMode && *req.Value != "true" && *req.Value != "false" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "maintenance_mode must be \"true\" or \"false\""})
	}
	if err := h.Settings.Set(c.Request().Context(), key, *req.Value); err != nil {
		return internalError(c, h.Log, err, "update setting failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Setting updated successfully"})
}

// SetMaintenance handles POST /v1/owner/maintenance.
func (h *OwnerHandler) SetMaintenance(c echo.Context) error {
	var req maintenanceReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	enabled := *req.Enabled
	if err := h.Settings.Set(c.Request().Context(), model.SettingMaintenanceMode, strconv.FormatBool(enabled)); err != nil {
		return internalError(c, h.Log, err, "toggle maintenance failed")
	}
	state := "disabled"
	if enabled {
		state = "enabled"
	}
	h.Log.Info().Bool("maintenance_mode", enabled).Msg("maintenance mode changed")
	return c.JSON(http.StatusOK, echo.Map{"message": "Maintenance mode " + state, "maintenance_mode": enabled})
}

// ListUsers handles GET /v1/owner/users.
func (h *OwnerHandler) ListUsers(c echo.Context) error {
	users, err := h.Users.List(c.Request().Context())
	if err != nil {
		return internalError(c, h.Log, err, "list users failed")
	}
	return c.JSON(http.StatusOK, users)
}

// CreateUser handles POST /v1/owner/users; the role defaults to user.
func (h *OwnerHandler) CreateUser(c echo.Context) error {
	var req createUserReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	if req.Role == 0 {
		req.Role = model.RoleUser
	}
	return h.provision(c, req.Email, req.Password, req.Name, req.Role)
}

// CreateAdmin handles POST /v1/owner/admins.
func (h *OwnerHandler) CreateAdmin(c echo.Context) error {
	var req registerReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	return h.provision(c, req.Email, req.Password, req.Name, model.RoleAdmin)
}

func (h *OwnerHandler) provision(c echo.Context, email, password, name string, role model.Role) error {
	u, err := h.Verifier.Provision(c.Request().Context(), email, password, name, role)
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
	case errors.Is(err, service.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email, password and name are required"})
	case err != nil:
		return internalError(c, h.Log, err, "create user failed")
	}
	return c.JSON(http.StatusCreated, toUserPart(u))
}

// UpdateRole handles PUT /v1/owner/users/:id/role.
func (h *OwnerHandler) UpdateRole(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	var req roleReq
	if err := c.Bind(&req); err != nil || !req.Role.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role"})
	}
	err := h.Users.UpdateRole(c.Request().Context(), id, req.Role)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	if err != nil {
		return internalError(c, h.Log, err, "update role failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User role updated successfully"})
}

// DeleteUser handles DELETE /v1/owner/users/:id.  Owners cannot delete
// their own account.
func (h *OwnerHandler) DeleteUser(c echo.Context) error {
	claim, ok := middleware.ClaimFrom(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	if id == claim.UserID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot delete yourself"})
	}
	err := h.Users.Delete(c.Request().Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	if err != nil {
		return internalError(c, h.Log, err, "delete user failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User deleted successfully"})
}
