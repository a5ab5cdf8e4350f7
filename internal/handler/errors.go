package handler

import (
	"errors"
	"net/http"

	"payroll/internal/service"
	"payroll/pkg/response"

	"github.com/gin-gonic/gin"
)

// writeError maps the service sentinel errors onto HTTP status codes. Anything
// unrecognized is a 500.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, service.ErrConfigurationMissing):
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, response.Error(status, err.Error()))
}

// currentUserID pulls the authenticated user id set by the auth middleware.
func currentUserID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// currentUserRole pulls the authenticated role set by the auth middleware.
func currentUserRole(c *gin.Context) string {
	if v, ok := c.Get("userRole"); ok {
		if role, ok := v.(string); ok {
			return role
		}
	}
	return ""
}
