package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	HeaderXRequestID = "X-Request-ID"
	ContextRequestID = "request_id"
)

type requestIDKey struct{}

// RequestID tags every request with a correlation id. An id supplied by
// the caller is kept, otherwise a fresh one is generated. The id is
// echoed in the response and carried on the request context so the
// service layer can include it in log entries.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderXRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}

		c.Set(ContextRequestID, rid)
		c.Request = c.Request.WithContext(
			context.WithValue(c.Request.Context(), requestIDKey{}, rid))
		c.Writer.Header().Set(HeaderXRequestID, rid)
		c.Next()
	}
}

// RequestIDFromContext returns the correlation id carried by ctx, or ""
// when the request never passed through RequestID.
func RequestIDFromContext(ctx context.Context) string {
	rid, _ := ctx.Value(requestIDKey{}).(string)
	return rid
}
