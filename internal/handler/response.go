package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"nuance/backend/internal/service"
)

// OwnerContextKey is where the auth middleware stores the owner identifier.
const OwnerContextKey = "owner"

type errorResponse struct {
	Error string `json:"error"`
}

func writeServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalid):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: "resource not found"})
	case errors.Is(err, service.ErrUpstreamTimeout):
		return c.JSON(http.StatusGatewayTimeout, errorResponse{Error: "provider call timed out"})
	case errors.Is(err, service.ErrUpstream):
		return c.JSON(http.StatusBadGateway, errorResponse{Error: "provider call failed"})
	default:
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// Error returns a JSON error response with the given status and message
func Error(c echo.Context, status int, message string) error {
	return c.JSON(status, errorResponse{Error: message})
}

// ownerID returns the authenticated owner set by the auth middleware.
func ownerID(c echo.Context) string {
	owner, _ := c.Get(OwnerContextKey).(string)
	return owner
}
