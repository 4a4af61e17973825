package handler // handler defines http handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// unauthorized answers a request that reached a gated handler without a
// claim.  Routes are always mounted behind the gate, so this only
// happens on a wiring bug.
func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required", "code": "unauthenticated"})
}

// parseID reads a positive integer path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

// bindAndValidate binds the body into dst and runs the validator.  On
// failure the 400 response has already been written and ok is false.
func bindAndValidate(c echo.Context, dst any) (ok bool, err error) {
	if err := c.Bind(dst); err != nil {
		return false, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(dst); err != nil {
		return false, c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return true, nil
}

// internalError logs err and answers with a generic 500.
func internalError(c echo.Context, log zerolog.Logger, err error, msg string) error {
	log.Error().Err(err).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg(msg)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
}
