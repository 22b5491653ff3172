package middleware

import (
	"net/http"
	"strings"

	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/fyodorov-ai/tsiolkovsky/common/helper"
)

const (
	// ErrorTypeServer marks failures raised outside the handlers.
	ErrorTypeServer = "server_error"
	// ErrorTypeNotFound marks unknown routes.
	ErrorTypeNotFound = "not_found"
)

// AbortWithError aborts the request with an error message
func AbortWithError(c *gin.Context, statusCode int, err error) {
	logger := gmw.GetLogger(c)
	if shouldLogAsWarning(statusCode, err) {
		logger.Warn("server abort",
			zap.Int("status_code", statusCode),
			zap.Error(err))
	} else {
		logger.Error("server abort",
			zap.Int("status_code", statusCode),
			zap.Error(err))
	}

	errType := ErrorTypeServer
	if statusCode == http.StatusNotFound {
		errType = ErrorTypeNotFound
	}

	c.JSON(statusCode, gin.H{
		"error": gin.H{
			"message": helper.MessageWithRequestId(err.Error(), c.GetString(helper.RequestIdKey)),
			"type":    errType,
		},
	})
	c.Abort()
}

// shouldLogAsWarning determines whether an abort should be logged as WARN.
// Client-caused failures are warnings, server-side failures are errors.
func shouldLogAsWarning(statusCode int, err error) bool {
	if statusCode >= 400 && statusCode < 500 {
		return true
	}

	if err == nil {
		return false
	}

	switch {
	case strings.Contains(err.Error(), "context canceled"):
		return true
	default:
		return false
	}
}
