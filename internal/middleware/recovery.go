package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dropbuddy/dropbuddy/pkg/errors"
	"github.com/dropbuddy/dropbuddy/pkg/logger"
	"github.com/dropbuddy/dropbuddy/pkg/response"
)

// Recovery converts panics into a 500 response and logs the error.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.WithModule("http").Error("panic",
					zap.String("path", c.Request.URL.Path),
					zap.String("request_id", RequestIDFromContext(c)),
					zap.Any("error", r),
				)
				// Avoid leaking internals to clients
				response.Error(c, errors.ErrInternalServer)
				c.Abort()
			}
		}()
		c.Next()
	}
}

// NotFoundHandler returns a JSON 404 for unknown routes, including the
// requested path and the request id so failures are traceable in logs.
func NotFoundHandler(c *gin.Context) {
	message := fmt.Sprintf("Route %s not found", c.Request.URL.Path)
	if id := RequestIDFromContext(c); id != "" {
		message = fmt.Sprintf("%s (request id %s)", message, id)
	}
	response.Error(c, errors.ErrNotFound.WithMessage(message))
}
