// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"database/sql"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/hotel-reservation/internal/handler"
	"github.com/iliyamo/hotel-reservation/internal/middleware"
	"github.com/iliyamo/hotel-reservation/internal/model"
)

// RegisterOps registers the unauthenticated operational endpoints:
// liveness, readiness and Prometheus metrics.
func RegisterOps(e *echo.Echo, db *sql.DB) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterPublic registers unauthenticated browse endpoints so guests
// can inspect hotels and rooms before signing in.
func RegisterPublic(e *echo.Echo, hotels *handler.HotelHandler, rooms *handler.RoomHandler) {
	e.GET("/v1/hotels/:id", hotels.GetHotel)
	e.GET("/v1/hotels/:id/rooms", rooms.ListRooms)
}

// RegisterBooking registers the guest-facing booking endpoints. All of
// them require a valid access token; any role may book.
func RegisterBooking(e *echo.Echo, b *handler.BookingHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))

	g.POST("/rooms/:id/bookings", b.CreateBooking)
	g.GET("/my-bookings", b.ListMyBookings)
	g.GET("/bookings/:id", b.GetBooking)
	g.POST("/bookings/:id/cancel", b.CancelBooking)
}

// RegisterOwner registers hotel management endpoints restricted to the
// OWNER and ADMIN roles: hotel and room CRUD, booking status
// transitions and booking lists per hotel or room.
func RegisterOwner(e *echo.Echo, hotels *handler.HotelHandler, rooms *handler.RoomHandler, bookings *handler.OwnerBookingHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleOwner, model.RoleAdmin))

	g.POST("/owner/hotels", hotels.CreateHotel)
	g.GET("/owner/hotels", hotels.ListMyHotels)
	g.POST("/owner/hotels/:id/rooms", rooms.CreateRoom)
	g.PATCH("/owner/rooms/:id", rooms.UpdateRate)
	g.PATCH("/owner/rooms/:id/status", rooms.UpdateStatus)

	g.PATCH("/bookings/:id/status", bookings.UpdateStatus)
	g.GET("/owner/hotels/:id/bookings", bookings.ListHotelBookings)
	g.GET("/owner/rooms/:id/bookings", bookings.ListRoomBookings)
}

// RegisterVault registers the encrypted document endpoints. Documents
// are personal: any authenticated role may manage its own.
func RegisterVault(e *echo.Echo, d *handler.DocumentHandler, jwtSecret string) {
	g := e.Group("/v1/documents")
	g.Use(middleware.JWTAuth(jwtSecret))

	g.POST("", d.Upload)
	g.GET("/:id", d.Download)
	g.GET("/:id/link", d.Link)
	g.DELETE("/:id", d.Delete)
}
