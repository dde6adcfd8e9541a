package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/service"
)

// BookingHandler serves the guest-facing booking endpoints. All methods
// assume JWT authentication ran earlier in the chain.
type BookingHandler struct {
	Reservations *service.ReservationService
}

// NewBookingHandler constructs a BookingHandler. The service must be non-nil.
func NewBookingHandler(reservations *service.ReservationService) *BookingHandler {
	if reservations == nil {
		panic("nil service passed to NewBookingHandler")
	}
	return &BookingHandler{Reservations: reservations}
}

// createBookingRequest is the body of POST /v1/rooms/:id/bookings.
// CheckIn and CheckOut are RFC3339 instants; the stay is the half-open
// range [checkIn, checkOut).
type createBookingRequest struct {
	CheckIn   time.Time        `json:"checkIn" validate:"required"`
	CheckOut  time.Time        `json:"checkOut" validate:"required"`
	Occupants []model.Occupant `json:"occupants" validate:"required,min=1,dive"`
}

// CreateBooking handles POST /v1/rooms/:id/bookings. On success it
// returns 201 with the committed booking; an interval that overlaps a
// live booking of the same room yields 409.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	roomID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	var body createBookingRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := validate.Struct(body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	booking, err := h.Reservations.RequestBooking(c.Request().Context(), service.BookingRequest{
		RoomID:    roomID,
		UserID:    p.UserID,
		CheckIn:   body.CheckIn,
		CheckOut:  body.CheckOut,
		Occupants: body.Occupants,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, booking)
}

// ListMyBookings handles GET /v1/my-bookings and returns the caller's
// bookings, newest first.
func (h *BookingHandler) ListMyBookings(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookings, err := h.Reservations.ListBookingsForUser(c.Request().Context(), p.UserID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": bookings})
}

// GetBooking handles GET /v1/bookings/:id. Guests see their own
// bookings, hotel owners the bookings of their hotels, admins all.
func (h *BookingHandler) GetBooking(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	booking, err := h.Reservations.GetBooking(c.Request().Context(), bookingID, p)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, booking)
}

// CancelBooking handles POST /v1/bookings/:id/cancel. A guest may
// cancel their own booking while it is PENDING or CONFIRMED.
func (h *BookingHandler) CancelBooking(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	booking, err := h.Reservations.CancelOwnBooking(c.Request().Context(), bookingID, p)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, booking)
}
