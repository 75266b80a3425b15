package handler

import (
	"net/http"

	"github.com/YyItRoad/ai-trade/internal/models"
	"github.com/YyItRoad/ai-trade/internal/service"
	"github.com/YyItRoad/ai-trade/internal/xe"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AssetHandler 资产管理HTTP处理器
type AssetHandler struct {
	logger       *zap.Logger
	assetService *service.AssetService
}

func NewAssetHandler(logger *zap.Logger, assetService *service.AssetService) *AssetHandler {
	return &AssetHandler{
		logger:       logger,
		assetService: assetService,
	}
}

// AssetCreateRequest 创建资产请求
type AssetCreateRequest struct {
	Symbol string           `json:"symbol" validate:"required"`
	Type   models.AssetType `json:"type"`
}

// Create 创建资产
// POST /api/assets
func (h *AssetHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req AssetCreateRequest
	if err := c.Bind(&req); err != nil {
		return xe.ErrInvalidParams
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	asset, err := h.assetService.CreateAsset(ctx, req.Symbol, req.Type)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, asset)
}

// List 列出所有资产
// GET /api/assets
func (h *AssetHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	assets, err := h.assetService.FindAssets(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, assets)
}

// Symbols 列出所有资产符号
// GET /api/assets/symbols
func (h *AssetHandler) Symbols(c echo.Context) error {
	ctx := c.Request().Context()

	symbols, err := h.assetService.FindSymbols(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, symbols)
}

// Delete 删除资产及其全部定时任务
// DELETE /api/assets/:id
func (h *AssetHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.assetService.DeleteAsset(ctx, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "删除成功",
	})
}

// RegisterRoutes 注册路由
func (h *AssetHandler) RegisterRoutes(g *echo.Group) {
	assets := g.Group("/assets")
	assets.POST("", h.Create)
	assets.GET("", h.List)
	assets.GET("/symbols", h.Symbols)
	assets.DELETE("/:id", h.Delete)
}
