package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/repository"
	"github.com/iliyamo/hotel-reservation/internal/service"
)

// RoomHandler serves room CRUD for hotel owners plus public room
// listing per hotel.
type RoomHandler struct {
	RoomRepo  *repository.RoomRepo
	HotelRepo *repository.HotelRepo
}

// NewRoomHandler constructs a RoomHandler and panics on nil dependencies.
func NewRoomHandler(rooms *repository.RoomRepo, hotels *repository.HotelRepo) *RoomHandler {
	if rooms == nil || hotels == nil {
		panic("nil repository passed to NewRoomHandler")
	}
	return &RoomHandler{RoomRepo: rooms, HotelRepo: hotels}
}

// CreateRoom handles POST /v1/owner/hotels/:id/rooms.
func (h *RoomHandler) CreateRoom(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	hotelID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := h.authorizeHotel(c, hotelID, p); err != nil {
		return writeServiceError(c, err)
	}

	var body struct {
		RoomType         string `json:"roomType" validate:"max=64"`
		Capacity         int    `json:"capacity" validate:"omitempty,min=1,max=16"`
		NightlyRateCents int64  `json:"nightlyRateCents" validate:"required,gt=0"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := validate.Struct(body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if body.Capacity == 0 {
		body.Capacity = 2
	}

	room := &model.Room{
		HotelID:          hotelID,
		RoomType:         body.RoomType,
		Capacity:         body.Capacity,
		NightlyRateCents: body.NightlyRateCents,
	}
	if err := h.RoomRepo.Create(c.Request().Context(), room); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, room)
}

// ListRooms handles GET /v1/hotels/:id/rooms.
func (h *RoomHandler) ListRooms(c echo.Context) error {
	hotelID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	rooms, err := h.RoomRepo.ListByHotel(c.Request().Context(), hotelID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"rooms": rooms})
}

// UpdateRate handles PATCH /v1/owner/rooms/:id. The rate applies to
// new bookings only; committed totals never change retroactively.
func (h *RoomHandler) UpdateRate(c echo.Context) error {
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
	if err := h.authorizeHotel(c, room.HotelID, p); err != nil {
		return writeServiceError(c, err)
	}

	var body struct {
		RoomType         string `json:"roomType" validate:"max=64"`
		NightlyRateCents int64  `json:"nightlyRateCents" validate:"required,gt=0"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := validate.Struct(body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	if err := h.RoomRepo.UpdateRate(c.Request().Context(), roomID, body.NightlyRateCents, body.RoomType); err != nil {
		return writeServiceError(c, err)
	}
	updated, err := h.RoomRepo.GetByID(c.Request().Context(), roomID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// UpdateStatus handles PATCH /v1/owner/rooms/:id/status. The status
// flag is informational; it never blocks or grants availability.
func (h *RoomHandler) UpdateStatus(c echo.Context) error {
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
	if err := h.authorizeHotel(c, room.HotelID, p); err != nil {
		return writeServiceError(c, err)
	}

	var body struct {
		Status string `json:"status" validate:"required"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	status := model.RoomStatus(body.Status)
	switch status {
	case model.RoomAvailable, model.RoomOccupied, model.RoomMaintenance, model.RoomReserved:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}

	if err := h.RoomRepo.UpdateStatus(c.Request().Context(), roomID, status); err != nil {
		return writeServiceError(c, err)
	}
	updated, err := h.RoomRepo.GetByID(c.Request().Context(), roomID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *RoomHandler) authorizeHotel(c echo.Context, hotelID uint64, p model.Principal) error {
	if p.IsAdmin() {
		return nil
	}
	ownerID, err := h.HotelRepo.OwnerOf(c.Request().Context(), hotelID)
	if err != nil {
		return err
	}
	if ownerID != p.UserID {
		return service.ErrForbidden
	}
	return nil
}
