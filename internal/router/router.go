package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/room-reservation/internal/config"
	"github.com/iliyamo/room-reservation/internal/handler"
	"github.com/iliyamo/room-reservation/internal/middleware"
)

// RegisterPublic registers the endpoints that need no authentication:
// the health probe, the auth flows and read-only room inventory.
func RegisterPublic(e *echo.Echo, auth *handler.AuthHandler, rooms *handler.RoomHandler) {
	e.GET("/healthz", handler.Health)

	a := e.Group("/v1/auth")
	a.POST("/register", auth.Register)
	a.POST("/login", auth.Login)
	a.POST("/refresh", auth.Refresh)
	a.POST("/logout", auth.Logout)

	e.GET("/v1/rooms", rooms.List)
	e.GET("/v1/rooms/:id", rooms.Get)
}

// RegisterUser registers booking endpoints for authenticated users.
// Both regular users and admins may create and manage their own
// bookings.  The group is rate limited per caller when Redis is
// available.
func RegisterUser(e *echo.Echo, auth *handler.AuthHandler, bookings *handler.BookingHandler, jwtSecret string, rl config.RateLimitConfig, rdb *redis.Client) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("user", "admin"),
		middleware.RateLimit(rl, rdb),
	)
	g.GET("/me", auth.Me)
	g.POST("/bookings", bookings.Create)
	g.GET("/bookings", bookings.ListMine)
	g.DELETE("/bookings/:id", bookings.Cancel)
}

// RegisterAdmin registers the admin surface: room inventory writes,
// booking oversight and user management.
func RegisterAdmin(e *echo.Echo, rooms *handler.RoomHandler, bookings *handler.BookingHandler, users *handler.AdminUserHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("admin"),
	)
	g.POST("/rooms", rooms.Create)
	g.PATCH("/rooms/:id", rooms.Update)
	g.DELETE("/rooms/:id", rooms.Delete)

	g.GET("/bookings", bookings.ListAll)
	g.POST("/bookings/:id/confirm", bookings.Confirm)
	g.POST("/bookings/:id/complete", bookings.Complete)

	g.GET("/users", users.List)
	g.DELETE("/users/:id", users.Delete)
}
