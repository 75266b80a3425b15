package handler

import (
	"net/http"

	"github.com/YyItRoad/ai-trade/internal/service"
	"github.com/YyItRoad/ai-trade/internal/xe"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// PromptHandler 提示词管理HTTP处理器
type PromptHandler struct {
	logger        *zap.Logger
	promptService *service.PromptService
}

func NewPromptHandler(logger *zap.Logger, promptService *service.PromptService) *PromptHandler {
	return &PromptHandler{
		logger:        logger,
		promptService: promptService,
	}
}

// PromptCreateRequest 创建提示词请求
type PromptCreateRequest struct {
	Name     string `json:"name" validate:"required"`
	Content  string `json:"content" validate:"required"`
	Activate bool   `json:"activate"`
}

// Create 创建新版本提示词
// POST /api/prompts
func (h *PromptHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req PromptCreateRequest
	if err := c.Bind(&req); err != nil {
		return xe.ErrInvalidParams
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	prompt, err := h.promptService.CreatePrompt(ctx, req.Name, req.Content, req.Activate)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, prompt)
}

// List 列出所有提示词版本
// GET /api/prompts
func (h *PromptHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	prompts, err := h.promptService.FindPrompts(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, prompts)
}

// GetActive 获取当前激活的提示词
// GET /api/prompts/active
func (h *PromptHandler) GetActive(c echo.Context) error {
	ctx := c.Request().Context()

	prompt, err := h.promptService.GetActivePrompt(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, prompt)
}

// Get 按ID查询提示词
// GET /api/prompts/:id
func (h *PromptHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	prompt, err := h.promptService.GetPrompt(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, prompt)
}

// Activate 激活指定版本
// POST /api/prompts/:id/activate
func (h *PromptHandler) Activate(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.promptService.ActivatePrompt(ctx, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "激活成功",
	})
}

// Delete 删除指定版本，激活中的版本不允许删除
// DELETE /api/prompts/:id
func (h *PromptHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.promptService.DeletePrompt(ctx, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "删除成功",
	})
}

// RegisterRoutes 注册路由
func (h *PromptHandler) RegisterRoutes(g *echo.Group) {
	prompts := g.Group("/prompts")
	prompts.POST("", h.Create)
	prompts.GET("", h.List)
	prompts.GET("/active", h.GetActive)
	prompts.GET("/:id", h.Get)
	prompts.POST("/:id/activate", h.Activate)
	prompts.DELETE("/:id", h.Delete)
}
