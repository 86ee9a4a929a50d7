// Package handler implements the HTTP endpoints.  Handlers parse and
// validate input, call the repositories or the booking service, and
// translate error kinds to status codes.  They assume JWT and role
// middleware already ran on protected routes.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-reservation/internal/repository"
	"github.com/iliyamo/room-reservation/internal/schedule"
	"github.com/iliyamo/room-reservation/internal/service"
)

// getUserID extracts the authenticated user id stored by the JWT
// middleware.  The claim may decode as several numeric types, so a
// type switch normalizes it to uint64.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// getRole returns the role claim stored by the JWT middleware.
func getRole(c echo.Context) string {
	if r, ok := c.Get("role").(string); ok {
		return r
	}
	return ""
}

// writeError maps a service or repository error to an HTTP response:
// invalid input -> 400, ownership violations -> 403, missing or
// soft-deleted records -> 404, slot and name conflicts plus illegal
// transitions -> 409, everything else -> 500.  The conflict message is
// distinct from "not found" so clients can retry with another time
// slot instead of fixing the request.
func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, schedule.ErrInvalidRange):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid input: start time must be before end time"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrRoomNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
	case errors.Is(err, repository.ErrBookingNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case errors.Is(err, repository.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	case errors.Is(err, schedule.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "time slot unavailable"})
	case errors.Is(err, repository.ErrRoomNameExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "room name already exists"})
	case errors.Is(err, repository.ErrEmailExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
	case errors.Is(err, service.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, echo.Map{"error": "invalid status transition"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

// pathID parses a numeric path parameter, rejecting zero.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
