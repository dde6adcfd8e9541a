package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/repository"
	"github.com/iliyamo/hotel-reservation/internal/service"
)

// OwnerBookingHandler serves booking management endpoints for hotel
// owners: status transitions and per-hotel / per-room booking lists.
type OwnerBookingHandler struct {
	Reservations *service.ReservationService
	BookingRepo  *repository.BookingRepo
	HotelRepo    *repository.HotelRepo
	RoomRepo     *repository.RoomRepo
}

// NewOwnerBookingHandler constructs an OwnerBookingHandler and panics
// if any dependency is nil.
func NewOwnerBookingHandler(reservations *service.ReservationService, bookings *repository.BookingRepo, hotels *repository.HotelRepo, rooms *repository.RoomRepo) *OwnerBookingHandler {
	if reservations == nil || bookings == nil || hotels == nil || rooms == nil {
		panic("nil dependency passed to NewOwnerBookingHandler")
	}
	return &OwnerBookingHandler{Reservations: reservations, BookingRepo: bookings, HotelRepo: hotels, RoomRepo: rooms}
}

// UpdateStatus handles PATCH /v1/bookings/:id/status. Only the owner
// of the booking's hotel (or an admin) may move a booking through the
// state machine; an illegal transition yields 409.
func (h *OwnerBookingHandler) UpdateStatus(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	var body struct {
		Status string `json:"status" validate:"required"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	status := model.BookingStatus(body.Status)
	if !model.ValidStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}

	booking, err := h.Reservations.Transition(c.Request().Context(), bookingID, status, p)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, booking)
}

// ListHotelBookings handles GET /v1/owner/hotels/:id/bookings.
func (h *OwnerBookingHandler) ListHotelBookings(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	hotelID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := h.authorizeHotel(c.Request().Context(), hotelID, p); err != nil {
		return writeServiceError(c, err)
	}
	bookings, err := h.BookingRepo.ListByHotel(c.Request().Context(), hotelID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": bookings})
}

// ListRoomBookings handles GET /v1/owner/rooms/:id/bookings.
func (h *OwnerBookingHandler) ListRoomBookings(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	roomID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	room, err := h.RoomRepo.GetByID(c.Request().Context(), roomID)
	if err != nil {
		return writeServiceError(c, err)
	}
	if err := h.authorizeHotel(c.Request().Context(), room.HotelID, p); err != nil {
		return writeServiceError(c, err)
	}
	bookings, err := h.BookingRepo.ListByRoom(c.Request().Context(), roomID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": bookings})
}

// authorizeHotel returns ErrForbidden unless the caller owns the hotel
// or holds the admin role.
func (h *OwnerBookingHandler) authorizeHotel(ctx context.Context, hotelID uint64, p model.Principal) error {
	if p.IsAdmin() {
		return nil
	}
	ownerID, err := h.HotelRepo.OwnerOf(ctx, hotelID)
	if err != nil {
		return err
	}
	if ownerID != p.UserID {
		return service.ErrForbidden
	}
	return nil
}
