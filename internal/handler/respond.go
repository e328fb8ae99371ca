package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/William19D/rv-parks-for-sale-sub001/internal/apperr"
)

// writeError maps the service error taxonomy onto HTTP responses in one
// place: validation errors name the field with a 400, authorization
// failures get a 403 so the client can show access-denied instead of a form
// error, missing records get a 404, anything else is a 500.
func writeError(c *gin.Context, err error) {
	if ve, ok := apperr.AsValidation(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "field": ve.Field})
		return
	}
	switch {
	case errors.Is(err, apperr.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
