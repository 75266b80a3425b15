package handler

import (
	"net/http"

	"github.com/YyItRoad/ai-trade/internal/models"
	"github.com/YyItRoad/ai-trade/internal/service"
	"github.com/YyItRoad/ai-trade/internal/xe"
	"github.com/go-orz/orz"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AnalysisHandler 分析记录查询与手动触发HTTP处理器
type AnalysisHandler struct {
	logger          *zap.Logger
	analysisService *service.AnalysisService
}

func NewAnalysisHandler(logger *zap.Logger, analysisService *service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{
		logger:          logger,
		analysisService: analysisService,
	}
}

// Page 分页查询分析历史
// GET /api/analysis
func (h *AnalysisHandler) Page(c echo.Context) error {
	ctx := c.Request().Context()

	page, pageSize := pageParams(c)
	items, total, err := h.analysisService.FindAnalysisPage(ctx, page, pageSize, c.QueryParam("asset"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orz.Map{
		"items": items,
		"total": total,
	})
}

// TriggerRequest 手动触发分析请求
type TriggerRequest struct {
	Symbol string           `json:"symbol" validate:"required"`
	Type   models.AssetType `json:"type"`
}

// Trigger 手动触发一次分析，任务在后台执行
// POST /api/analysis/trigger
func (h *AnalysisHandler) Trigger(c echo.Context) error {
	ctx := c.Request().Context()

	var req TriggerRequest
	if err := c.Bind(&req); err != nil {
		return xe.ErrInvalidParams
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.analysisService.TriggerAnalysis(ctx, req.Symbol, req.Type); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "分析任务已提交",
	})
}

// RegisterRoutes 注册路由
func (h *AnalysisHandler) RegisterRoutes(g *echo.Group) {
	analysis := g.Group("/analysis")
	analysis.GET("", h.Page)
	analysis.POST("/trigger", h.Trigger)
}
