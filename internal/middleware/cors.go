package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/temcen/giftengine/internal/config"
)

// CORS answers every OPTIONS request with 200 and no body. When the allowed
// origins include "*", the allow headers are written on every response,
// errors included, whether or not the client sent an Origin header.
func CORS(cfg *config.Config) gin.HandlerFunc {
	corsCfg := cfg.Security.CORS
	allowAll := len(corsCfg.AllowedOrigins) == 0 || containsWildcard(corsCfg.AllowedOrigins)

	config := cors.Config{
		AllowMethods:              corsCfg.AllowedMethods,
		AllowHeaders:              corsCfg.AllowedHeaders,
		ExposeHeaders:             []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", RequestIDHeader, SessionIDHeader},
		OptionsResponseStatusCode: http.StatusOK,
		MaxAge:                    12 * time.Hour,
	}
	if allowAll {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = corsCfg.AllowedOrigins
	}
	handler := cors.New(config)

	allowMethods := strings.Join(corsCfg.AllowedMethods, ", ")
	allowHeaders := strings.Join(corsCfg.AllowedHeaders, ", ")

	return func(c *gin.Context) {
		if allowAll {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", "*")
			h.Set("Access-Control-Allow-Methods", allowMethods)
			h.Set("Access-Control-Allow-Headers", allowHeaders)
		}

		handler(c)
		if c.IsAborted() {
			return
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
