package router

import (
	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/fyodorov-ai/tsiolkovsky/common/config"
	"github.com/fyodorov-ai/tsiolkovsky/common/logger"
	"github.com/fyodorov-ai/tsiolkovsky/controller"
	"github.com/fyodorov-ai/tsiolkovsky/middleware"
)

// NewEngine builds the gin engine with the global middleware chain and every route.
func NewEngine(ctl *controller.Controller) *gin.Engine {
	server := gin.New()
	server.Use(otelgin.Middleware(config.OpenTelemetryServiceName))
	server.Use(gmw.NewLoggerMiddleware(
		gmw.WithLevel(logger.Level()),
		gmw.WithLogger(logger.Logger.Named("gin")),
	))
	server.Use(middleware.RequestId())
	server.Use(middleware.PanicRecover())
	server.Use(middleware.CORS())
	if config.EnableGzip {
		server.Use(gzip.Gzip(gzip.DefaultCompression))
	}
	server.Use(middleware.Metrics())

	SetRouter(server, ctl)
	return server
}

// SetRouter registers every route on router.
func SetRouter(router *gin.Engine, ctl *controller.Controller) {
	SetApiRouter(router, ctl)
	SetSystemRouter(router)
	router.NoRoute(middleware.NoRoute)
}
