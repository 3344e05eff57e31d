package middleware

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/temcen/giftengine/internal/validation"
	"github.com/temcen/giftengine/pkg/models"
)

const maxBodyBytes = 1 << 20

// ValidationMiddleware checks request bodies against JSON schemas before
// they reach a handler.
type ValidationMiddleware struct {
	validator *validation.SchemaValidator
}

func NewValidationMiddleware(validator *validation.SchemaValidator) *ValidationMiddleware {
	return &ValidationMiddleware{
		validator: validator,
	}
}

// ValidateGiftEngineRequest rejects bodies whose fields have the wrong
// shape. The body is restored for the handler.
func (vm *ValidationMiddleware) ValidateGiftEngineRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		bodyBytes, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "Invalid request",
				Message: "Failed to read request body",
			})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))

		result := vm.validator.ValidateGiftEngineRequest(bodyBytes)
		if !result.Valid {
			c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "Invalid request",
				Message: result.Summary(),
			})
			return
		}

		c.Next()
	}
}
