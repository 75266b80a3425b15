package handler

import (
	"net/http"

	"github.com/YyItRoad/ai-trade/internal/service"
	"github.com/YyItRoad/ai-trade/internal/xe"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthHandler 认证HTTP处理器
type AuthHandler struct {
	logger      *zap.Logger
	authService *service.AuthService
}

func NewAuthHandler(logger *zap.Logger, authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		logger:      logger,
		authService: authService,
	}
}

// VerifyKeyRequest 访问密钥校验请求
type VerifyKeyRequest struct {
	AccessKey string `json:"accessKey" validate:"required"`
}

// VerifyKey 校验访问密钥并签发会话token
// POST /api/auth/verify-key
func (h *AuthHandler) VerifyKey(c echo.Context) error {
	var req VerifyKeyRequest
	if err := c.Bind(&req); err != nil {
		return xe.ErrInvalidParams
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	token, expiresAt, err := h.authService.VerifyAccessKey(req.AccessKey)
	if err != nil {
		h.logger.Warn("access key verification failed",
			zap.String("remote_ip", c.RealIP()))
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"token":     token,
		"expiresAt": expiresAt,
	})
}

// RegisterRoutes 注册路由，verify-key 是唯一无需认证的接口
func (h *AuthHandler) RegisterRoutes(g *echo.Group) {
	auth := g.Group("/auth")
	auth.POST("/verify-key", h.VerifyKey)
}
