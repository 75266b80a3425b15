package middleware

import (
	"net/http"
	"strings"

	"github.com/YyItRoad/ai-trade/internal/service"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// TokenAuthConfig 会话token认证配置
type TokenAuthConfig struct {
	AuthService *service.AuthService
	Logger      *zap.Logger
	// Skipper 返回真的请求跳过认证
	Skipper func(c echo.Context) bool
}

// TokenAuth 会话token认证中间件
func TokenAuth(config TokenAuthConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if config.Skipper != nil && config.Skipper(c) {
				return next(c)
			}

			// 从Header中获取Token
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				config.Logger.Warn("token missing",
					zap.String("path", c.Request().URL.Path),
					zap.String("remote_ip", c.RealIP()))

				return c.JSON(http.StatusUnauthorized, map[string]interface{}{
					"error": "未授权：缺少token",
				})
			}

			// 解析Bearer Token
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				return c.JSON(http.StatusUnauthorized, map[string]interface{}{
					"error": "未授权：token格式错误",
				})
			}

			// 验证Token
			if err := config.AuthService.ValidateToken(parts[1]); err != nil {
				config.Logger.Warn("invalid token",
					zap.String("path", c.Request().URL.Path),
					zap.String("remote_ip", c.RealIP()))

				return c.JSON(http.StatusUnauthorized, map[string]interface{}{
					"error": "未授权：token无效或已过期",
				})
			}

			return next(c)
		}
	}
}
