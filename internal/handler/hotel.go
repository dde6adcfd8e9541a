package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/repository"
)

// HotelHandler serves hotel CRUD for owners plus public hotel lookup.
type HotelHandler struct {
	HotelRepo *repository.HotelRepo
}

// NewHotelHandler constructs a HotelHandler. The repository must be non-nil.
func NewHotelHandler(hotels *repository.HotelRepo) *HotelHandler {
	if hotels == nil {
		panic("nil repository passed to NewHotelHandler")
	}
	return &HotelHandler{HotelRepo: hotels}
}

// CreateHotel handles POST /v1/owner/hotels. The short public code is
// generated server-side; a generation collision is retried internally.
func (h *HotelHandler) CreateHotel(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var body struct {
		Name string `json:"name" validate:"required,max=255"`
		City string `json:"city" validate:"required,max=128"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := validate.Struct(body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	hotel := &model.Hotel{OwnerID: p.UserID, Name: body.Name, City: body.City}
	if err := h.HotelRepo.Create(c.Request().Context(), hotel); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, hotel)
}

// ListMyHotels handles GET /v1/owner/hotels.
func (h *HotelHandler) ListMyHotels(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	hotels, err := h.HotelRepo.ListByOwner(c.Request().Context(), p.UserID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"hotels": hotels})
}

// GetHotel handles GET /v1/hotels/:id.
func (h *HotelHandler) GetHotel(c echo.Context) error {
	hotelID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	hotel, err := h.HotelRepo.GetByID(c.Request().Context(), hotelID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, hotel)
}
