package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/club-events/internal/middleware"
	"github.com/iliyamo/club-events/internal/repository"
	"github.com/iliyamo/club-events/internal/service"
)

// BookingHandler exposes the booking engine and booking listings.
type BookingHandler struct {
	Engine   *service.BookingEngine
	Bookings *repository.BookingRepo
	Log      zerolog.Logger
}

func NewBookingHandler(engine *service.BookingEngine, bookings *repository.BookingRepo, log zerolog.Logger) *BookingHandler {
	return &BookingHandler{Engine: engine, Bookings: bookings, Log: log}
}

type bookReq struct {
	EventID uint64 `json:"eventId" validate:"required"`
	Tickets int    `json:"tickets"`
}

type bookResp struct {
	BookingID  uint64 `json:"bookingId"`
	EventID    uint64 `json:"eventId"`
	Tickets    int    `json:"tickets"`
	TotalPrice int64  `json:"totalPrice"`
}

// Create handles POST /v1/bookings.
func (h *BookingHandler) Create(c echo.Context) error {
	claim, ok := middleware.ClaimFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var req bookReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	b, err := h.Engine.Book(c.Request().Context(), claim.UserID, req.EventID, req.Tickets)
	switch {
	case errors.Is(err, service.ErrInvalidTicketCount):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrEventNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	case errors.Is(err, service.ErrCapacityExceeded):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "not enough tickets available"})
	case err != nil:
		return internalError(c, h.Log, err, "booking failed")
	}
	return c.JSON(http.StatusOK, bookResp{
		BookingID:  b.ID,
		EventID:    b.EventID,
		Tickets:    b.Tickets,
		TotalPrice: b.TotalPriceCents,
	})
}

// Mine handles GET /v1/bookings/mine.
func (h *BookingHandler) Mine(c echo.Context) error {
	claim, ok := middleware.ClaimFrom(c)
	if !ok {
		return unauthorized(c)
	}
	list, err := h.Bookings.ListByUser(c.Request().Context(), claim.UserID)
	if err != nil {
		return internalError(c, h.Log, err, "list bookings failed")
	}
	return c.JSON(http.StatusOK, list)
}

// ListAll handles GET /v1/admin/bookings.
func (h *BookingHandler) ListAll(c echo.Context) error {
	list, err := h.Bookings.ListAll(c.Request().Context())
	if err != nil {
		return internalError(c, h.Log, err, "list all bookings failed")
	}
	return c.JSON(http.StatusOK, list)
}

// Stats handles GET /v1/admin/stats.
func (h *BookingHandler) Stats(c echo.Context) error {
	s, err := h.Bookings.Stats(c.Request().Context())
	if err != nil {
		return internalError(c, h.Log, err, "stats failed")
	}
	return c.JSON(http.StatusOK, s)
}
