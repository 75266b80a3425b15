package internal

import (
	"net/http"
	"net/url"
	"time"

	"github.com/YyItRoad/ai-trade/internal/config"
	"github.com/YyItRoad/ai-trade/internal/handler"
	"github.com/YyItRoad/ai-trade/internal/service"
	"github.com/YyItRoad/ai-trade/internal/telegram"
	"github.com/YyItRoad/ai-trade/pkg/market"
	"go.uber.org/zap"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const telegramHTTPTimeout = 10 * time.Second

// AppComponents 应用组件集合
type AppComponents struct {
	AssetHandler    *handler.AssetHandler
	PromptHandler   *handler.PromptHandler
	TaskHandler     *handler.TaskHandler
	AnalysisHandler *handler.AnalysisHandler
	PlanHandler     *handler.PlanHandler
	AuthHandler     *handler.AuthHandler

	SchedulerService *service.SchedulerService
	AnalysisService  *service.AnalysisService
	AuthService      *service.AuthService

	Telegram *telegram.Telegram
}

// provideTelegram provides telegram instance
func provideTelegram(logger *zap.Logger, conf *config.Config) *telegram.Telegram {
	if !conf.Telegram.Enabled {
		return nil
	}

	httpClient := &http.Client{Timeout: telegramHTTPTimeout}

	tg, err := telegram.NewTelegram(logger, telegram.Settings{
		Token:  conf.Telegram.Token,
		Client: httpClient,
	})
	if err != nil {
		logger.Error("failed to init telegram", zap.Error(err))
		return nil
	}

	return tg
}

// provideMarketClient provides market data client
func provideMarketClient(conf *config.Config, logger *zap.Logger) *market.Client {
	if conf.Market.APIKey == "" {
		logger.Warn("market API key not configured; kline requests will fail")
	}
	return market.NewClient(conf.Market.BaseURL, conf.Market.APIKey, logger)
}

// provideOpenAIClient provides OpenAI client
func provideOpenAIClient(conf *config.Config, logger *zap.Logger) *openai.Client {
	var options = []option.RequestOption{
		option.WithBaseURL(conf.LLM.BaseURL),
		option.WithAPIKey(conf.LLM.APIKey),
	}
	if conf.LLM.ProxyURL != "" {
		u, err := url.Parse(conf.LLM.ProxyURL)
		if err != nil {
			logger.Fatal("failed to parse proxy URL", zap.Error(err))
		}
		httpClient := &http.Client{
			Timeout: time.Minute,
			Transport: &http.Transport{
				Proxy: http.ProxyURL(u),
			},
		}
		options = append(options, option.WithHTTPClient(httpClient))
	}

	client := openai.NewClient(options...)

	logger.Info("OpenAI client initialized",
		zap.String("model", conf.LLM.Model),
	)
	return &client
}
