package router

import (
	"github.com/gin-gonic/gin"

	"github.com/fyodorov-ai/tsiolkovsky/controller"
)

// SetApiRouter registers the tool and health check routes.
func SetApiRouter(router *gin.Engine, ctl *controller.Controller) {
	router.GET("/", controller.Index)

	toolRoute := router.Group("/tools")
	{
		toolRoute.POST("", ctl.CreateTool)
		toolRoute.POST("/yaml", ctl.CreateToolFromYAML)
		toolRoute.GET("", ctl.ListTools)
		toolRoute.GET("/:id", ctl.GetTool)
		toolRoute.GET("/:id/plugin", ctl.GetToolPlugin)
		toolRoute.PUT("/:id", ctl.UpdateTool)
		toolRoute.DELETE("/:id", ctl.DeleteTool)
		toolRoute.POST("/:id/health", ctl.SaveHealthCheck)
		toolRoute.GET("/:id/health", ctl.GetHealthChecks)
	}
}
