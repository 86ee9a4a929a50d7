package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-reservation/internal/model"
	"github.com/iliyamo/room-reservation/internal/service"
)

// BookingHandler serves the booking endpoints on top of BookingService.
type BookingHandler struct {
	Svc *service.BookingService
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(svc *service.BookingService) *BookingHandler {
	if svc == nil {
		panic("nil service passed to NewBookingHandler")
	}
	return &BookingHandler{Svc: svc}
}

type createBookingReq struct {
	RoomID    uint64 `json:"room_id"`
	StartTime string `json:"start_time"` // RFC 3339
	EndTime   string `json:"end_time"`   // RFC 3339
}

// Create handles POST /v1/bookings.
func (h *BookingHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.RoomID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "room_id is required"})
	}
	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_time must be RFC 3339"})
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_time must be RFC 3339"})
	}

	booking, err := h.Svc.CreateBooking(c.Request().Context(), req.RoomID, userID, start, end)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, booking)
}

// ListMine handles GET /v1/bookings and returns the caller's bookings,
// most recent first.
func (h *BookingHandler) ListMine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookings, err := h.Svc.ListForUser(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, bookings)
}

// ListAll handles GET /v1/admin/bookings.
func (h *BookingHandler) ListAll(c echo.Context) error {
	bookings, err := h.Svc.ListAll(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, bookings)
}

// Cancel handles DELETE /v1/bookings/:id.  Owners can cancel their own
// bookings; admins can cancel anyone's.
func (h *BookingHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	cancelled, err := h.Svc.CancelBooking(c.Request().Context(), id, userID, getRole(c))
	if err != nil {
		return writeError(c, err)
	}
	if !cancelled {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Confirm handles POST /v1/admin/bookings/:id/confirm.
func (h *BookingHandler) Confirm(c echo.Context) error {
	return h.transition(c, model.BookingConfirmed)
}

// Complete handles POST /v1/admin/bookings/:id/complete.
func (h *BookingHandler) Complete(c echo.Context) error {
	return h.transition(c, model.BookingCompleted)
}

func (h *BookingHandler) transition(c echo.Context, next model.BookingStatus) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var (
		booking *model.Booking
		err     error
	)
	switch next {
	case model.BookingConfirmed:
		booking, err = h.Svc.ConfirmBooking(c.Request().Context(), id)
	case model.BookingCompleted:
		booking, err = h.Svc.CompleteBooking(c.Request().Context(), id)
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unsupported transition"})
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, booking)
}
