package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader is the header used to propagate request identifiers.
	RequestIDHeader = "X-Request-ID"
	// CtxRequestIDKey is the gin context key holding the request id.
	CtxRequestIDKey = "requestID"
)

// RequestID assigns each request a unique identifier. An inbound X-Request-ID
// header is honoured so that callers can correlate across services; otherwise
// a fresh UUID is generated. The id is echoed on the response and stored in
// the request context for access logging and error payloads.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(CtxRequestIDKey, id)
		c.Request.Header.Set(RequestIDHeader, id)
		c.Header(RequestIDHeader, id)

		c.Next()
	}
}

// RequestIDFromContext returns the request id assigned by the RequestID
// middleware, or an empty string when the middleware is not installed.
func RequestIDFromContext(c *gin.Context) string {
	if id, ok := c.Get(CtxRequestIDKey); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}
