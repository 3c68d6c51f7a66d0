// Package middleware provides HTTP middleware components.
package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"warebase/internal/core/apperror"
	"warebase/internal/core/reqctx"
	"warebase/pkg/logger"
)

// Recovery middleware recovers from panics and returns a 500 error.
// The error middleware has already unwound by the time a panic is
// recovered, so the response is written here directly. Stack traces
// go to the log, never to the client.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error(c.Request.Context(), "panic recovered",
					"error", rec,
					"stack", string(debug.Stack()),
				)

				if !c.Writer.Written() {
					c.JSON(http.StatusInternalServerError, gin.H{
						"code":    apperror.CodeInternal,
						"message": "Internal server error",
						"details": map[string]any{
							"request_id": reqctx.GetRequestID(c.Request.Context()),
						},
					})
				}
				c.Abort()
			}
		}()
		c.Next()
	}
}
