package controller

import (
	"net/http"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v3"

	"github.com/fyodorov-ai/tsiolkovsky/common"
	"github.com/fyodorov-ai/tsiolkovsky/model"
)

// CreateTool creates a tool from a JSON body, or YAML when Content-Type says so.
func (ctl *Controller) CreateTool(c *gin.Context) {
	var fields model.ToolFields
	if !decodeBody(c, "create tool", "", &fields) {
		return
	}
	ctl.createTool(c, fields)
}

// CreateToolFromYAML creates a tool from a YAML document.
func (ctl *Controller) CreateToolFromYAML(c *gin.Context) {
	var fields model.ToolFields
	if !decodeBody(c, "create tool from yaml", common.BodyFormatYAML, &fields) {
		return
	}
	ctl.createTool(c, fields)
}

func (ctl *Controller) createTool(c *gin.Context, fields model.ToolFields) {
	tool, err := model.CreateTool(gmw.Ctx(c), ctl.store, fields)
	if err != nil {
		respondError(c, "create tool", err)
		return
	}

	gmw.GetLogger(c).Info("tool created",
		zap.Int("tool_id", tool.Id),
		zap.String("name_for_ai", tool.NameForAI))
	c.JSON(http.StatusCreated, gin.H{"tool": tool})
}

// ListTools returns every tool.
func (ctl *Controller) ListTools(c *gin.Context) {
	tools, err := model.ListTools(gmw.Ctx(c), ctl.store)
	if err != nil {
		respondErrorMessage(c, "list tools", err)
		return
	}
	c.JSON(http.StatusOK, tools)
}

// GetTool returns one tool.
func (ctl *Controller) GetTool(c *gin.Context) {
	tool, err := model.GetTool(gmw.Ctx(c), ctl.store, c.Param("id"))
	if err != nil {
		respondError(c, "get tool", err)
		return
	}
	c.JSON(http.StatusOK, tool)
}

// GetToolPlugin renders a tool as a plugin manifest, in YAML when ?format=yaml.
func (ctl *Controller) GetToolPlugin(c *gin.Context) {
	tool, err := model.GetTool(gmw.Ctx(c), ctl.store, c.Param("id"))
	if err != nil {
		respondError(c, "get tool plugin", err)
		return
	}

	manifest := tool.ToPlugin()
	if c.Query("format") != "yaml" {
		c.JSON(http.StatusOK, manifest)
		return
	}

	out, err := yaml.Marshal(manifest)
	if err != nil {
		respondError(c, "get tool plugin", errors.Wrap(err, "marshal plugin manifest"))
		return
	}
	c.Data(http.StatusOK, "application/x-yaml; charset=utf-8", out)
}

// UpdateTool merges a partial JSON or YAML body into the tool.
func (ctl *Controller) UpdateTool(c *gin.Context) {
	var patch model.ToolPatch
	if !decodeBody(c, "update tool", "", &patch) {
		return
	}

	tool, err := model.UpdateTool(gmw.Ctx(c), ctl.store, c.Param("id"), &patch)
	if err != nil {
		respondError(c, "update tool", err)
		return
	}

	gmw.GetLogger(c).Info("tool updated", zap.Int("tool_id", tool.Id))
	c.JSON(http.StatusOK, tool)
}

// DeleteTool removes a tool. Unknown ids still answer 204.
func (ctl *Controller) DeleteTool(c *gin.Context) {
	if err := model.DeleteTool(gmw.Ctx(c), ctl.store, c.Param("id")); err != nil {
		respondErrorMessage(c, "delete tool", err)
		return
	}

	gmw.GetLogger(c).Info("tool deleted", zap.String("tool_id", c.Param("id")))
	c.Status(http.StatusNoContent)
}
