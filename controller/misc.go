package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fyodorov-ai/tsiolkovsky/common"
)

// Index answers the service banner.
func Index(c *gin.Context) {
	c.String(http.StatusOK, common.Banner)
}

// Health answers liveness checks.
func Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}
