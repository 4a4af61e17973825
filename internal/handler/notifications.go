package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/club-events/internal/middleware"
	"github.com/iliyamo/club-events/internal/repository"
)

type NotificationHandler struct {
	Notifications *repository.NotificationRepo
	Log           zerolog.Logger
}

func NewNotificationHandler(n *repository.NotificationRepo, log zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{Notifications: n, Log: log}
}

type broadcastReq struct {
	Message string `json:"message" validate:"required,max=1000"`
	Type    string `json:"type" validate:"omitempty,oneof=info success warning error"`
}

// List handles GET /v1/notifications: the 50 most recent, newest first.
func (h *NotificationHandler) List(c echo.Context) error {
	claim, ok := middleware.ClaimFrom(c)
	if !ok {
		return unauthorized(c)
	}
	list, err := h.Notifications.ListRecent(c.Request().Context(), claim.UserID, repository.DefaultNotificationLimit)
	if err != nil {
		return internalError(c, h.Log, err, "list notifications failed")
	}
	return c.JSON(http.StatusOK, list)
}

// MarkRead handles PUT /v1/notifications/:id/read.  Ids belonging to
// other users are accepted and ignored.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	claim, ok := middleware.ClaimFrom(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid notification id"})
	}
	if err := h.Notifications.MarkRead(c.Request().Context(), id, claim.UserID); err != nil {
		return internalError(c, h.Log, err, "mark read failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Notification marked as read"})
}

// MarkAllRead handles PUT /v1/notifications/read-all.
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	claim, ok := middleware.ClaimFrom(c)
	if !ok {
		return unauthorized(c)
	}
	if err := h.Notifications.MarkAllRead(c.Request().Context(), claim.UserID); err != nil {
		return internalError(c, h.Log, err, "mark all read failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "All notifications marked as read"})
}

// Broadcast handles POST /v1/admin/notifications/broadcast.
func (h *NotificationHandler) Broadcast(c echo.Context) error {
	var req broadcastReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	n, err := h.Notifications.Broadcast(c.Request().Context(), strings.TrimSpace(req.Message), req.Type)
	if errors.Is(err, repository.ErrInvalidType) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid notification type"})
	}
	if err != nil {
		return internalError(c, h.Log, err, "broadcast failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Notification broadcast successfully", "count": n})
}
