package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/medlinx/clinic-api/pkg/httputil"
)

// Recovery converts handler panics into an opaque 500 envelope instead
// of tearing down the connection. The panic value and stack are logged
// with the request's correlation id.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			log.Error().
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Str("request_id", c.GetString(ContextRequestID)).
				Msg("recovered from panic")

			c.AbortWithStatusJSON(http.StatusInternalServerError, httputil.Response{
				Success: false,
				Error: &httputil.Error{
					Code:    http.StatusInternalServerError,
					Message: "internal server error",
				},
			})
		}()
		c.Next()
	}
}
