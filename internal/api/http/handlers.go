package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/grafy/internal/api/middleware"
	"github.com/GriffinCanCode/grafy/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/grafy/internal/presets"
	"github.com/GriffinCanCode/grafy/internal/providers/calculus/common"
	"github.com/GriffinCanCode/grafy/internal/service"
	"github.com/GriffinCanCode/grafy/internal/shared/types"
	"github.com/GriffinCanCode/grafy/internal/shared/utils"
)

// Version is reported by the root endpoint
const Version = "0.3.0"

// Handlers contains all HTTP handlers
type Handlers struct {
	registry *service.Registry
	library  *presets.Library
	cache    *common.Cache
	metrics  *HandlerMetrics
	tracer   *tracing.Tracer
	logger   *zap.Logger
}

// NewHandlers creates a new handler set. cache may be nil.
func NewHandlers(
	registry *service.Registry,
	library *presets.Library,
	cache *common.Cache,
	metrics *HandlerMetrics,
	tracer *tracing.Tracer,
	logger *zap.Logger,
) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		registry: registry,
		library:  library,
		cache:    cache,
		metrics:  metrics,
		tracer:   tracer,
		logger:   logger,
	}
}

// Root handles the service banner
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "Grafy Surface Analysis",
		"version": Version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	body := gin.H{
		"status":           "healthy",
		"service_registry": h.registry.Stats(),
		"presets":          h.library.Len(),
		"uptime_seconds":   h.metrics.Uptime(),
	}
	if h.cache != nil {
		body["expression_cache"] = h.cache.Stats()
	}
	c.JSON(http.StatusOK, body)
}

// ListServices lists all available services
func (h *Handlers) ListServices(c *gin.Context) {
	categoryStr := c.Query("category")
	if err := utils.ValidateCategory(categoryStr, false); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var category *types.Category
	if categoryStr != "" {
		cat := types.Category(categoryStr)
		category = &cat
	}

	c.JSON(http.StatusOK, gin.H{
		"services": h.registry.List(category),
		"stats":    h.registry.Stats(),
	})
}

// DiscoverServices ranks services against a free-text intent
func (h *Handlers) DiscoverServices(c *gin.Context) {
	var req types.DiscoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.ValidateIntent(req.Intent); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"intent":   req.Intent,
		"services": h.registry.Discover(strings.ToLower(req.Intent), req.Limit),
	})
}

// ExecuteService executes a service tool
func (h *Handlers) ExecuteService(c *gin.Context) {
	var req types.ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.ValidateToolID(req.ToolID, "tool_id", true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.ValidateParams(req.Params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, ok := h.registry.Tool(req.ToolID); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "tool not found: " + req.ToolID})
		return
	}

	requestID := middleware.GetRequestID(c)
	clientIP := c.ClientIP()
	appCtx := &types.Context{RequestID: &requestID, ClientIP: &clientIP}

	span, ctx := h.tracer.StartSpan(c.Request.Context(), req.ToolID)
	span.SetTag("tool", req.ToolID)
	done := h.metrics.TrackExecution(req.ToolID)

	result, err := h.registry.Execute(ctx, req.ToolID, req.Params, appCtx)

	status := "success"
	switch {
	case err != nil:
		status = "error"
		span.SetError(err)
	case !result.Success:
		status = "failure"
		span.SetTag("failure", *result.Error)
	}
	done(status)
	span.Finish()
	h.tracer.Submit(span)

	if err != nil {
		h.logger.Warn("tool execution failed",
			zap.String("tool_id", req.ToolID),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		c.JSON(executeStatus(err), gin.H{"error": err.Error()})
		return
	}

	// Encode before writing so a bad value cannot leave an empty 200
	body, err := sonic.ConfigStd.Marshal(result)
	if err != nil {
		h.logger.Error("tool result not encodable",
			zap.String("tool_id", req.ToolID),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "tool result could not be encoded"})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// ListPresets lists preset surfaces, optionally filtered by tag
func (h *Handlers) ListPresets(c *gin.Context) {
	tag := strings.ToLower(strings.TrimSpace(c.Query("tag")))
	list := h.library.List()
	if tag != "" {
		filtered := make([]presets.Preset, 0, len(list))
		for _, p := range list {
			for _, t := range p.Tags {
				if strings.EqualFold(t, tag) {
					filtered = append(filtered, p)
					break
				}
			}
		}
		list = filtered
	}

	c.JSON(http.StatusOK, gin.H{
		"presets": list,
		"count":   len(list),
	})
}

// GetPreset returns one preset by ID
func (h *Handlers) GetPreset(c *gin.Context) {
	id := c.Param("id")
	if err := utils.ValidateID(id, "id", true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.library.Get(id)
	if err != nil {
		if errors.Is(err, presets.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"preset": p})
}

func executeStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidToolID):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrServiceNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
