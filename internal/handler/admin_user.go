package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-reservation/internal/repository"
)

// AdminUserHandler serves the admin-only user management endpoints.
type AdminUserHandler struct {
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
}

// NewAdminUserHandler constructs an AdminUserHandler.
func NewAdminUserHandler(users *repository.UserRepo, tokens *repository.TokenRepo) *AdminUserHandler {
	if users == nil || tokens == nil {
		panic("nil repository passed to NewAdminUserHandler")
	}
	return &AdminUserHandler{Users: users, Tokens: tokens}
}

// List handles GET /v1/admin/users and returns all active accounts.
func (h *AdminUserHandler) List(c echo.Context) error {
	users, err := h.Users.ListActive(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// Delete handles DELETE /v1/admin/users/:id.  The account is
// soft-deleted and every outstanding refresh token is revoked so the
// user cannot mint new access tokens.
func (h *AdminUserHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	ctx := c.Request().Context()
	deleted, err := h.Users.SoftDelete(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	if !deleted {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	if err := h.Tokens.RevokeAllForUser(ctx, id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
