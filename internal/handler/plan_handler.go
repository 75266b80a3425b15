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

// PlanHandler 交易计划HTTP处理器
type PlanHandler struct {
	logger      *zap.Logger
	planService *service.PlanService
}

func NewPlanHandler(logger *zap.Logger, planService *service.PlanService) *PlanHandler {
	return &PlanHandler{
		logger:      logger,
		planService: planService,
	}
}

// Page 分页查询交易计划
// GET /api/plans
func (h *PlanHandler) Page(c echo.Context) error {
	ctx := c.Request().Context()

	page, pageSize := pageParams(c)
	items, total, err := h.planService.FindPlanPage(ctx, page, pageSize, c.QueryParam("asset"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orz.Map{
		"items": items,
		"total": total,
	})
}

// UpdateStatus 更新计划状态
// PUT /api/plans/:id/status
func (h *PlanHandler) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Status models.PlanStatus `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return xe.ErrInvalidParams
	}

	if err := h.planService.UpdatePlanStatus(ctx, c.Param("id"), req.Status); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "状态已更新",
	})
}

// RegisterRoutes 注册路由
func (h *PlanHandler) RegisterRoutes(g *echo.Group) {
	plans := g.Group("/plans")
	plans.GET("", h.Page)
	plans.PUT("/:id/status", h.UpdateStatus)
}
