package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/fyodorov-ai/tsiolkovsky/common/metrics"
)

// PanicRecover turns a handler panic into a 500 response.
func PanicRecover() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if recovered := recover(); recovered != nil {
				gmw.GetLogger(c).Error("panic recovered",
					zap.String("panic", fmt.Sprintf("%v", recovered)),
					zap.ByteString("stack", debug.Stack()))
				metrics.GlobalRecorder.RecordError("panic", "http")
				AbortWithError(c, http.StatusInternalServerError, errors.Errorf("panic detected: %v", recovered))
			}
		}()
		c.Next()
	}
}

// NoRoute answers unknown paths.
func NoRoute(c *gin.Context) {
	AbortWithError(c, http.StatusNotFound, errors.Errorf("route %s %s not found", c.Request.Method, c.Request.URL.Path))
}
