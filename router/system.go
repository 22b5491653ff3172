package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fyodorov-ai/tsiolkovsky/common/config"
	"github.com/fyodorov-ai/tsiolkovsky/controller"
)

// SetSystemRouter registers liveness and metrics endpoints.
func SetSystemRouter(router *gin.Engine) {
	router.GET("/health", controller.Health)
	if config.EnablePrometheusMetrics {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}
