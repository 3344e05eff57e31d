package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/temcen/giftengine/pkg/models"
)

const (
	SessionIDHeader = "X-Session-ID"
	RequestIDHeader = "X-Request-ID"

	sessionKey   = "session"
	requestIDKey = "request_id"
)

// Session builds the request's SessionContext. The session id comes from the
// client when it sends one and is echoed back so a browser can keep it; the
// request id is always fresh unless a proxy already assigned it. Cross-origin
// callers can only send X-Session-ID when security.cors.allowed_headers
// lists it.
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		sessionID := c.GetHeader(SessionIDHeader)
		if sessionID == "" {
			sessionID = uuid.New().String()
		}

		c.Set(requestIDKey, requestID)
		c.Set(sessionKey, models.SessionContext{
			SessionID: sessionID,
			RequestID: requestID,
			ClientIP:  c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		})
		c.Header(RequestIDHeader, requestID)
		c.Header(SessionIDHeader, sessionID)
		c.Next()
	}
}

// GetSession returns the request's SessionContext, with the authenticated
// user filled in when there is one.
func GetSession(c *gin.Context) models.SessionContext {
	session, ok := c.Get(sessionKey)
	if !ok {
		session = models.SessionContext{ClientIP: c.ClientIP(), UserAgent: c.Request.UserAgent()}
	}
	s := session.(models.SessionContext)
	if userID, ok := GetUserID(c); ok {
		s.UserID = userID.String()
	}
	return s
}
