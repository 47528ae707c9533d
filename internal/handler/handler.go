// Package handler exposes the services over HTTP with gin.
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"solarflow/internal/access"
	"solarflow/internal/middleware"
	"solarflow/internal/service"
	"solarflow/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// respondError maps service errors onto status codes. Unexpected errors are
// logged and answered with a generic 500.
func respondError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, response.Invalid(http.StatusBadRequest, verr.Fields))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Resource not found"))
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid email or password"))
	case errors.Is(err, service.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authentication required"))
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: insufficient permissions"))
	case errors.Is(err, service.ErrInsufficientStock):
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, "Insufficient stock"))
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, "Resource already exists"))
	default:
		_ = c.Error(err)
		slog.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method, "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Internal server error"))
	}
}

// bindJSON binds and validates the body, answering 400 itself on failure
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		if fields := fieldErrors(err); fields != nil {
			c.JSON(http.StatusBadRequest, response.Invalid(http.StatusBadRequest, fields))
		} else {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		}
		return false
	}
	return true
}

func caller(c *gin.Context) access.Caller {
	caller, _ := middleware.CallerFrom(c)
	return caller
}

// pathID parses :id; malformed ids answer 404
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := service.ParseID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return uuid.Nil, false
	}
	return id, true
}

// queryID parses an optional uuid query filter; malformed values answer 400
func queryID(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Invalid(http.StatusBadRequest, map[string]string{name: "must be a valid uuid"}))
		return nil, false
	}
	return &id, true
}
