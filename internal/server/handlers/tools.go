package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/voiceweather/weather-agent/internal/lookup"
	"github.com/voiceweather/weather-agent/internal/server/utils"
	"github.com/voiceweather/weather-agent/internal/tool"
	"go.uber.org/zap"
)

type ToolsHandler struct {
	registry *tool.Registry
	recorder LookupRecorder
	logger   *zap.Logger
}

func NewToolsHandler(registry *tool.Registry, recorder LookupRecorder, logger *zap.Logger) *ToolsHandler {
	return &ToolsHandler{
		registry: registry,
		recorder: recorder,
		logger:   logger,
	}
}

// ListTools exposes the registered tool schemas so a host runtime can
// advertise them to its reasoning layer.
func (h *ToolsHandler) ListTools(c *gin.Context) {
	tools := h.registry.List()

	infos := make([]ToolInfo, 0, len(tools))
	for _, t := range tools {
		infos = append(infos, ToolInfo{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}

	c.JSON(http.StatusOK, ToolListResponse{Tools: infos})
}

func (h *ToolsHandler) InvokeTool(c *gin.Context) {
	ctx := utils.GetContextFromGinContext(c)
	requestID := utils.GetRequestIDFromGinContext(c)

	reqLogger := h.logger.With(zap.String("request_id", requestID))

	name := c.Param("name")
	t, ok := h.registry.Get(name)
	if !ok {
		reqLogger.Warn("Unknown tool requested", zap.String("tool", name))
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "Unknown tool: " + name,
			Code:  "TOOL_NOT_FOUND",
		})
		return
	}

	args := make(map[string]any)
	if err := c.ShouldBindJSON(&args); err != nil && !errors.Is(err, io.EOF) {
		reqLogger.Warn("Invalid tool arguments", zap.String("tool", name), zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Tool arguments must be a JSON object",
			Code:  "INVALID_ARGS",
		})
		return
	}

	reqLogger.Info("Invoking tool", zap.String("tool", name))

	result, err := t.Execute(ctx, args)
	if h.recorder != nil && name == "lookup_weather" {
		h.recorder.RecordLookup(name, err)
	}
	if err != nil {
		kind := lookup.KindOf(err)
		reqLogger.Warn("Tool execution failed",
			zap.String("tool", name),
			zap.String("kind", string(kind)),
			zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error: err.Error(),
			Code:  string(kind),
		})
		return
	}

	c.JSON(http.StatusOK, ToolInvokeResponse{Result: result})
}
