package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/temcen/giftengine/internal/services"
	"github.com/temcen/giftengine/pkg/models"
)

// RateLimit throttles by authenticated user when known, otherwise by client
// ip. Preflight requests never reach it.
func RateLimit(rateLimitService *services.RateLimitService, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rateLimitService.Enabled() {
			c.Next()
			return
		}

		clientKey := "ip:" + c.ClientIP()
		if userID, ok := GetUserID(c); ok {
			clientKey = "user:" + userID.String()
		}

		allowed, info := rateLimitService.IsAllowed(c.Request.Context(), clientKey)
		if info != nil {
			c.Header("X-RateLimit-Limit", strconv.Itoa(info.Limit))
			c.Header("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
			c.Header("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime, 10))
		}

		if !allowed {
			logger.WithFields(logrus.Fields{
				"client": clientKey,
				"path":   c.Request.URL.Path,
			}).Warn("Rate limit exceeded")

			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse{
				Error:   "Too many requests",
				Message: "Rate limit exceeded. Please try again later.",
			})
			return
		}

		c.Next()
	}
}
