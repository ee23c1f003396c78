package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"salescrm/internal/pkg/apperr"
)

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// FromError writes the envelope for the shared error taxonomy.
// Store messages are passed through verbatim.
func FromError(c *gin.Context, err error) {
	var verr *apperr.ValidationError
	var remote *apperr.RemoteError
	switch {
	case errors.As(err, &verr):
		ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Validation failed", verr.Fields)
	case errors.Is(err, apperr.ErrValidation):
		Error(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, apperr.ErrAuthentication):
		Error(c, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
	case errors.Is(err, apperr.ErrNotFound):
		Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, apperr.ErrConflict):
		Error(c, http.StatusConflict, "CONFLICT", err.Error())
	case errors.As(err, &remote):
		Error(c, http.StatusInternalServerError, "REMOTE_ERROR", remote.Error())
	default:
		Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}
