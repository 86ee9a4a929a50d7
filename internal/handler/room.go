package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-reservation/internal/model"
	"github.com/iliyamo/room-reservation/internal/repository"
)

// RoomHandler serves the room inventory endpoints.  Reads are public;
// create, update and delete are mounted under the admin group.
type RoomHandler struct {
	Rooms *repository.RoomRepo
}

// NewRoomHandler constructs a RoomHandler.
func NewRoomHandler(rooms *repository.RoomRepo) *RoomHandler {
	if rooms == nil {
		panic("nil repository passed to NewRoomHandler")
	}
	return &RoomHandler{Rooms: rooms}
}

type createRoomReq struct {
	Name   string `json:"name"`
	Status string `json:"status"` // optional, defaults to available
}

type updateRoomReq struct {
	Name   *string `json:"name"`
	Status *string `json:"status"`
}

// Create handles POST /v1/admin/rooms.
func (h *RoomHandler) Create(c echo.Context) error {
	var req createRoomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	status := model.RoomAvailable
	if req.Status != "" {
		if !model.ValidRoomStatus(req.Status) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room status"})
		}
		status = model.RoomStatus(req.Status)
	}

	room, err := h.Rooms.Create(c.Request().Context(), req.Name, status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, room)
}

// List handles GET /v1/rooms.  ?active=true restricts to available
// rooms; ?status=booked filters on a specific status.
func (h *RoomHandler) List(c echo.Context) error {
	activeOnly := c.QueryParam("active") == "true"
	status := c.QueryParam("status")
	if status != "" && !model.ValidRoomStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room status"})
	}
	rooms, err := h.Rooms.List(c.Request().Context(), activeOnly, status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, rooms)
}

// Get handles GET /v1/rooms/:id.
func (h *RoomHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	room, err := h.Rooms.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, room)
}

// Update handles PATCH /v1/admin/rooms/:id.  Partial update of name
// and/or status.
func (h *RoomHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	var req updateRoomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Name == nil && req.Status == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to update"})
	}
	var name *string
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		if trimmed == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name cannot be empty"})
		}
		name = &trimmed
	}
	var status *model.RoomStatus
	if req.Status != nil {
		if !model.ValidRoomStatus(*req.Status) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room status"})
		}
		s := model.RoomStatus(*req.Status)
		status = &s
	}

	room, err := h.Rooms.Update(c.Request().Context(), id, name, status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, room)
}

// Delete handles DELETE /v1/admin/rooms/:id.  Soft delete only; the
// room's booking history stays intact.
func (h *RoomHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	room, err := h.Rooms.SoftDelete(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, room)
}
