package middleware

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/fyodorov-ai/tsiolkovsky/common/config"
	"github.com/fyodorov-ai/tsiolkovsky/common/helper"
)

// CORS allows browser clients from the configured origins.
func CORS() gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	cfg.ExposeHeaders = []string{helper.RequestIdKey}
	cfg.MaxAge = 12 * time.Hour

	if len(config.CORSAllowedOrigins) == 0 || slices.Contains(config.CORSAllowedOrigins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = config.CORSAllowedOrigins
	}
	return cors.New(cfg)
}
