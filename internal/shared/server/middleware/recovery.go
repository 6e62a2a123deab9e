package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"nextcv/internal/shared/server/respond"
	"nextcv/internal/shared/telemetry"
)

// Recovery recovers from panics and returns a standardized error response.
// http.ErrAbortHandler is re-raised so the server can drop the connection.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}
			reqID := RequestIDFromContext(c)
			telemetry.Error("panic", map[string]any{
				"request_id": reqID,
				"error":      fmt.Sprint(rec),
				"stack":      string(debug.Stack()),
				"path":       c.Request.URL.Path,
				"method":     c.Request.Method,
			})
			if c.Writer.Written() {
				c.Abort()
				return
			}
			respond.Error(c, http.StatusInternalServerError, "internal", "something went wrong", gin.H{"requestId": reqID})
		}()
		c.Next()
	}
}
