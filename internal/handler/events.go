package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/club-events/internal/middleware"
	"github.com/iliyamo/club-events/internal/model"
	"github.com/iliyamo/club-events/internal/repository"
	"github.com/iliyamo/club-events/internal/service"
)

// EventHandler serves the event catalogue to members and the event
// management endpoints to admins.
type EventHandler struct {
	Events *repository.EventRepo
	Cache  service.CachePurger
	Log    zerolog.Logger
}

func NewEventHandler(events *repository.EventRepo, cache service.CachePurger, log zerolog.Logger) *EventHandler {
	return &EventHandler{Events: events, Cache: cache, Log: log}
}

type eventReq struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Time        string `json:"time" validate:"required,datetime=15:04"`
	PriceCents  int64  `json:"price_cents" validate:"gte=0"`
	Capacity    int    `json:"capacity" validate:"gte=1"`
	ImageURL    string `json:"image_url" validate:"omitempty,max=500"`
}

func (r eventReq) toModel() model.Event {
	return model.Event{
		Title:       strings.TrimSpace(r.Title),
		Description: r.Description,
		Date:        r.Date,
		Time:        r.Time,
		PriceCents:  r.PriceCents,
		Capacity:    r.Capacity,
		ImageURL:    strings.TrimSpace(r.ImageURL),
	}
}

// List handles GET /v1/events.
func (h *EventHandler) List(c echo.Context) error {
	events, err := h.Events.List(c.Request().Context())
	if err != nil {
		return internalError(c, h.Log, err, "list events failed")
	}
	return c.JSON(http.StatusOK, events)
}

// Get handles GET /v1/events/:id.
func (h *EventHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	ev, err := h.Events.GetByID(c.Request().Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	}
	if err != nil {
		return internalError(c, h.Log, err, "get event failed")
	}
	return c.JSON(http.StatusOK, ev)
}

// Create handles POST /v1/admin/events.
func (h *EventHandler) Create(c echo.Context) error {
	claim, ok := middleware.ClaimFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var req eventReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	ev := req.toModel()
	creator := claim.UserID
	ev.CreatedBy = &creator
	if err := h.Events.Create(c.Request().Context(), &ev); err != nil {
		return internalError(c, h.Log, err, "create event failed")
	}
	h.purge(c)
	return c.JSON(http.StatusCreated, echo.Map{"id": ev.ID, "message": "Event created successfully"})
}

// Update handles PUT /v1/admin/events/:id.
func (h *EventHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var req eventReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	ev := req.toModel()
	ev.ID = id
	err := h.Events.Update(c.Request().Context(), ev)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	case errors.Is(err, repository.ErrCapacityBelowBooked):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "capacity cannot be lower than tickets already booked"})
	case err != nil:
		return internalError(c, h.Log, err, "update event failed")
	}
	h.purge(c)
	return c.JSON(http.StatusOK, echo.Map{"message": "Event updated successfully"})
}

// Delete handles DELETE /v1/admin/events/:id.  Events with bookings are
// kept and answered with 409.
func (h *EventHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	err := h.Events.Delete(c.Request().Context(), id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "event has bookings and cannot be deleted"})
	case err != nil:
		return internalError(c, h.Log, err, "delete event failed")
	}
	h.purge(c)
	return c.JSON(http.StatusOK, echo.Map{"message": "Event deleted successfully"})
}

func (h *EventHandler) purge(c echo.Context) {
	if h.Cache == nil {
		return
	}
	if err := h.Cache.Purge(c.Request().Context()); err != nil {
		h.Log.Warn().Err(err).Msg("events cache purge failed")
	}
}
