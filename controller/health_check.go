package controller

import (
	"net/http"

	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/fyodorov-ai/tsiolkovsky/common"
	"github.com/fyodorov-ai/tsiolkovsky/model"
)

// HealthReportRequest is the body of a health report. The tool comes from the path.
type HealthReportRequest struct {
	HealthStatus string `json:"health_status"`
	APIURL       string `json:"api_url"`
}

// SaveHealthCheck records a health report for the tool in the path.
func (ctl *Controller) SaveHealthCheck(c *gin.Context) {
	var req HealthReportRequest
	if !decodeBody(c, "save health check", common.BodyFormatJSON, &req) {
		return
	}

	update, err := model.NewHealthUpdate(c.Param("id"), req.HealthStatus, req.APIURL)
	if err != nil {
		respondError(c, "save health check", err)
		return
	}

	check, err := model.SaveHealthCheck(gmw.Ctx(c), ctl.store, update)
	if err != nil {
		respondError(c, "save health check", err)
		return
	}

	gmw.GetLogger(c).Info("health check saved",
		zap.Int("tool_id", check.ToolID),
		zap.String("health_status", check.HealthStatus),
		zap.Bool("api_url_changed", update.UpdatesTool()))
	c.JSON(http.StatusCreated, check)
}

// GetHealthChecks lists the health history of a tool, most recent first.
func (ctl *Controller) GetHealthChecks(c *gin.Context) {
	ctx := gmw.Ctx(c)
	tool, err := model.GetTool(ctx, ctl.store, c.Param("id"))
	if err != nil {
		respondErrorMessage(c, "get health checks", err)
		return
	}

	checks, err := model.GetHealthChecks(ctx, ctl.store, tool.Id)
	if err != nil {
		respondErrorMessage(c, "get health checks", err)
		return
	}
	c.JSON(http.StatusOK, checks)
}
