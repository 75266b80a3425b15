package internal

import (
	"context"
	"fmt"
	"net/http"

	"github.com/YyItRoad/ai-trade/internal/config"
	appmiddleware "github.com/YyItRoad/ai-trade/internal/middleware"
	"github.com/YyItRoad/ai-trade/internal/models"
	"github.com/YyItRoad/ai-trade/pkg/nostd"
	"github.com/go-orz/orz"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func Run(configPath string) error {
	app := NewTradeApp()

	framework, err := orz.NewFramework(
		orz.WithConfig(configPath),
		orz.WithLoggerFromConfig(),
		orz.WithDatabase(),
		orz.WithHTTP(),
		orz.WithApplication(app),
	)
	if err != nil {
		return err
	}

	return framework.Run()
}

func NewTradeApp() orz.Application {
	return &TradeApp{}
}

var _ orz.Application = (*TradeApp)(nil)

type TradeApp struct {
	components *AppComponents
	conf       *config.Config
}

// GetComponents 获取应用组件
func (r *TradeApp) GetComponents() *AppComponents {
	return r.components
}

func (r *TradeApp) Configure(app *orz.App) error {
	logger := app.Logger()
	e := app.GetEcho()
	db := app.GetDatabase()

	var conf config.Config
	err := app.GetConfig().App.Unmarshal(&conf)
	if err != nil {
		return fmt.Errorf("failed to unmarshal config: %v", err)
	}

	components, err := InitializeApp(logger, db, &conf)
	if err != nil {
		return fmt.Errorf("failed to initialize app: %v", err)
	}
	r.components = components
	r.conf = &conf

	if err := db.AutoMigrate(
		models.Asset{}, models.Prompt{}, models.ScheduledTask{},
		models.TradeAnalysis{}, models.TradePlan{},
	); err != nil {
		logger.Fatal("database auto migrate failed", zap.Error(err))
	}

	if err := r.Init(logger); err != nil {
		logger.Fatal("app init failed", zap.Error(err))
	}

	e.HidePort = true
	e.HideBanner = true

	e.Use(middleware.Gzip())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		Skipper:      middleware.DefaultSkipper,
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
	}))
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			sugar := logger.Sugar()
			sugar.Error(fmt.Sprintf("[PANIC RECOVER] %v %s\n", err, stack))
			return err
		},
	}))
	e.Use(WithErrorHandler(logger))
	customValidator := nostd.CustomValidator{Validator: validator.New()}
	if err := customValidator.TransInit(); err != nil {
		logger.Sugar().Fatal("failed to init custom validator", zap.Error(err))
	}
	e.Validator = &customValidator

	api := e.Group("/api")
	api.Use(appmiddleware.TokenAuth(appmiddleware.TokenAuthConfig{
		AuthService: components.AuthService,
		Logger:      logger,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/api/auth/verify-key"
		},
	}))
	{
		components.AuthHandler.RegisterRoutes(api)
		components.AssetHandler.RegisterRoutes(api)
		components.PromptHandler.RegisterRoutes(api)
		components.TaskHandler.RegisterRoutes(api)
		components.AnalysisHandler.RegisterRoutes(api)
		components.PlanHandler.RegisterRoutes(api)
	}

	// 调度器随HTTP服务一起优雅退出
	e.Server.RegisterOnShutdown(components.SchedulerService.Shutdown)

	return nil
}

func (r *TradeApp) Init(logger *zap.Logger) error {
	components := r.GetComponents()
	if components == nil {
		return fmt.Errorf("components not initialized")
	}

	if components.Telegram != nil {
		components.Telegram.Start()
	}

	if err := components.SchedulerService.Start(context.Background()); err != nil {
		return fmt.Errorf("failed to start scheduler: %v", err)
	}
	return nil
}
