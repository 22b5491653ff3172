package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/fyodorov-ai/tsiolkovsky/common/helper"
	"github.com/fyodorov-ai/tsiolkovsky/common/tracing"
)

// RequestId exposes the per-request trace id to handlers and clients.
// It must run after the logger middleware.
func RequestId() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := tracing.GetTraceID(c)
		if id != "" {
			c.Set(helper.RequestIdKey, id)
			c.Header(helper.RequestIdKey, id)
		}
		c.Next()
	}
}
