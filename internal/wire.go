//go:build wireinject
// +build wireinject

package internal

import (
	"github.com/google/wire"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/YyItRoad/ai-trade/internal/config"
	"github.com/YyItRoad/ai-trade/internal/handler"
	"github.com/YyItRoad/ai-trade/internal/service"
	"github.com/YyItRoad/ai-trade/pkg/market"
)

var (
	handlerSet = wire.NewSet(
		handler.NewAssetHandler,
		handler.NewPromptHandler,
		handler.NewTaskHandler,
		handler.NewAnalysisHandler,
		handler.NewPlanHandler,
		handler.NewAuthHandler,
	)

	serviceSet = wire.NewSet(
		provideOpenAIClient,
		provideMarketClient,
		provideTelegram,
		service.NewAIService,
		service.NewAnalysisService,
		service.NewSchedulerService,
		service.NewAssetService,
		service.NewTaskService,
		service.NewPromptService,
		service.NewPlanService,
		service.NewAuthService,
		wire.Bind(new(service.MarketFetcher), new(*market.Client)),
		wire.Bind(new(service.Responder), new(*service.AIService)),
		wire.Bind(new(service.TaskRunner), new(*service.AnalysisService)),
	)
)

// InitializeApp 初始化应用
func InitializeApp(logger *zap.Logger, db *gorm.DB, conf *config.Config) (*AppComponents, error) {
	wire.Build(
		handlerSet,
		serviceSet,
		wire.Struct(new(AppComponents), "*"),
	)
	return nil, nil
}
