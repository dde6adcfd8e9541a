// Package handler exposes the HTTP surface of the reservation engine.
// Handlers stay thin: they bind and validate request bodies, resolve
// the authenticated principal and translate service errors to status
// codes. All decisions live in the service layer.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/middleware"
	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/repository"
	"github.com/iliyamo/hotel-reservation/internal/service"
)

// validate checks struct tags on request bodies.
var validate = validator.New()

// principal returns the authenticated caller placed in context by the
// JWT middleware. Routes registered without that middleware have no
// principal and get an error.
func principal(c echo.Context) (model.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return model.Principal{}, errors.New("no principal in context")
	}
	return p, nil
}

// pathID parses the named path parameter as a positive integer ID.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}

// writeServiceError maps service and repository sentinel errors onto
// HTTP responses. Unknown errors become an opaque 500 so internals
// never leak to clients.
func writeServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, service.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrTransientStore), errors.Is(err, service.ErrTransientObjectStore):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "temporarily unavailable, retry"})
	case errors.Is(err, service.ErrIntegrity):
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "stored document failed integrity verification"})
	case errors.Is(err, service.ErrReconciliation):
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "document partially deleted, flagged for reconciliation"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
