package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/YyItRoad/ai-trade/internal/config"
	"github.com/YyItRoad/ai-trade/internal/models"
	"github.com/YyItRoad/ai-trade/internal/repo"
	"github.com/YyItRoad/ai-trade/internal/telegram"
	"github.com/YyItRoad/ai-trade/internal/xe"
	"github.com/YyItRoad/ai-trade/pkg/market"
	"github.com/go-orz/orz"
	"github.com/oklog/ulid/v2"
	"github.com/valyala/fasttemplate"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

// MarketFetcher K线抓取依赖，测试时可替换为桩实现
type MarketFetcher interface {
	FetchKlines(ctx context.Context, symbol string, assetType int) (map[string][]market.Candle, error)
}

// Responder AI响应依赖
type Responder interface {
	GetResponse(ctx context.Context, systemPrompt, userPrompt string, history []ChatMessage) (string, error)
}

// AnalysisParams 单次分析任务的输入
type AnalysisParams struct {
	AssetID   string
	PromptID  string
	Cycle     models.Cycle
	Symbol    string
	AssetType models.AssetType
}

// AnalysisService 分析任务编排器：加载提示词、抓取行情、调用AI、
// 解析并落库。任何一步失败都会中止后续步骤，只写日志，绝不向调度器抛出。
type AnalysisService struct {
	logger *zap.Logger

	*orz.Service

	promptRepo   *repo.PromptRepo
	assetRepo    *repo.AssetRepo
	analysisRepo *repo.TradeAnalysisRepo
	planRepo     *repo.TradePlanRepo

	fetcher  MarketFetcher
	ai       Responder
	notifier *telegram.Telegram
	chatID   string
	logDir   string
}

// NewAnalysisService 创建分析任务服务
func NewAnalysisService(
	logger *zap.Logger,
	db *gorm.DB,
	fetcher MarketFetcher,
	ai Responder,
	notifier *telegram.Telegram,
	conf *config.Config,
) *AnalysisService {
	logDir := conf.Scheduler.LogDir
	if logDir == "" {
		logDir = "logs"
	}
	return &AnalysisService{
		logger:       logger,
		Service:      orz.NewService(db),
		promptRepo:   repo.NewPromptRepo(db),
		assetRepo:    repo.NewAssetRepo(db),
		analysisRepo: repo.NewTradeAnalysisRepo(db),
		planRepo:     repo.NewTradePlanRepo(db),
		fetcher:      fetcher,
		ai:           ai,
		notifier:     notifier,
		chatID:       conf.Telegram.ChatID,
		logDir:       logDir,
	}
}

// analysisPayload 模型返回的结构化结果
type analysisPayload struct {
	Analysis struct {
		Trend      string  `json:"trend"`
		Confidence float64 `json:"confidence"`
		Conclusion string  `json:"conclusion"`
	} `json:"analysis"`
	TradePlan *tradePlanPayload `json:"tradePlan"`
}

type tradePlanPayload struct {
	Direction       string  `json:"direction"`
	Confidence      float64 `json:"confidence"`
	EntryPrice      float64 `json:"entry_price"`
	StopLoss        float64 `json:"stop_loss"`
	TakeProfit1     float64 `json:"take_profit_1"`
	TakeProfit2     float64 `json:"take_profit_2"`
	RiskRewardRatio string  `json:"risk_reward_ratio"`
	Status          string  `json:"status"` // 模型给出的状态会被忽略，入库时强制 ACTIVE
}

// RunAnalysisTask 执行单次分析任务的完整流程。
// 每次执行写入独立的任务日志文件，结果只通过日志与数据库行可见。
func (s *AnalysisService) RunAnalysisTask(ctx context.Context, p AnalysisParams) {
	taskLogger, closeLog := s.newTaskLogger(p.Symbol, p.Cycle)
	defer closeLog()

	taskLogger.Info("analysis task started",
		zap.String("symbol", p.Symbol),
		zap.String("cycle", string(p.Cycle)),
		zap.Int("asset_type", int(p.AssetType)),
		zap.String("prompt_id", p.PromptID))

	// 1. 加载提示词
	prompt, err := s.promptRepo.FindById(ctx, p.PromptID)
	if err != nil {
		taskLogger.Error("failed to load prompt", zap.String("prompt_id", p.PromptID), zap.Error(err))
		return
	}
	if strings.TrimSpace(prompt.Content) == "" {
		taskLogger.Error("prompt content is empty", zap.String("prompt_id", p.PromptID))
		return
	}

	// 2. 抓取K线数据
	klines, err := s.fetcher.FetchKlines(ctx, p.Symbol, int(p.AssetType))
	if err != nil {
		taskLogger.Error("failed to fetch klines", zap.Error(err))
		return
	}
	if market.AllEmpty(klines) {
		taskLogger.Warn("no kline data fetched for any interval, aborting task")
		return
	}

	// 3. 组装提示词
	systemPrompt, userPrompt, err := buildPrompts(&prompt, p, klines)
	if err != nil {
		taskLogger.Error("failed to build prompts", zap.Error(err))
		return
	}

	// 4. 调用AI
	taskLogger.Info("sending request to ai model")
	response, err := s.ai.GetResponse(ctx, systemPrompt, userPrompt, nil)
	if err != nil {
		taskLogger.Error("failed to get ai response", zap.Error(err))
		return
	}
	taskLogger.Info("raw ai response", zap.String("response", response))

	// 5. 提取JSON
	jsonText, err := ExtractJSON(response)
	if err != nil {
		taskLogger.Error("no json found in ai response", zap.String("response", response))
		return
	}

	// 6. 解析，解析失败记录原始片段，绝不入库
	var payload analysisPayload
	if err := json.Unmarshal([]byte(jsonText), &payload); err != nil {
		taskLogger.Error("failed to decode ai json",
			zap.String("fragment", jsonText),
			zap.Error(err))
		return
	}

	// 7. 落库
	analysis, plan, err := s.persistResult(ctx, p, &payload, jsonText)
	if err != nil {
		taskLogger.Error("failed to persist analysis result", zap.Error(err))
		return
	}

	taskLogger.Info("analysis task completed",
		zap.String("analysis_id", analysis.ID),
		zap.Bool("has_trade_plan", plan != nil))

	if plan != nil {
		s.notifyPlan(plan)
	}
}

// buildPrompts 渲染系统提示词并序列化K线为用户提示词。
// 指令模板支持 {{symbol}}、{{asset_type}}、{{cycle}} 占位符。
func buildPrompts(prompt *models.Prompt, p AnalysisParams, klines map[string][]market.Candle) (string, string, error) {
	instruction, jsonSpec := prompt.SplitContent()

	rendered := fasttemplate.ExecuteString(instruction, "{{", "}}", map[string]interface{}{
		"symbol":     p.Symbol,
		"asset_type": p.AssetType.Label(),
		"cycle":      string(p.Cycle),
	})

	var sb strings.Builder
	sb.WriteString(rendered)
	sb.WriteString("\n\n请严格按照以下JSON结构返回分析结果，不要输出任何额外内容：\n")
	sb.WriteString(jsonSpec)

	klineJSON, err := json.MarshalIndent(klines, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal klines: %w", err)
	}
	userPrompt := fmt.Sprintf("以下是最新的K线数据:\n```json\n%s\n```", klineJSON)

	return sb.String(), userPrompt, nil
}

// persistResult 在同一事务中写入分析记录与可选的交易计划，
// 保证交易计划永远不会脱离父分析记录存在
func (s *AnalysisService) persistResult(ctx context.Context, p AnalysisParams, payload *analysisPayload, rawJSON string) (*models.TradeAnalysis, *models.TradePlan, error) {
	analysis := &models.TradeAnalysis{
		ID:         ulid.Make().String(),
		Asset:      p.Symbol,
		Timestamp:  time.Now(),
		PromptID:   p.PromptID,
		Cycle:      p.Cycle,
		Trend:      payload.Analysis.Trend,
		Confidence: payload.Analysis.Confidence,
		Conclusion: payload.Analysis.Conclusion,
		ExtraInfo:  rawJSON,
	}

	var plan *models.TradePlan
	if tp := payload.TradePlan; tp != nil && tp.Direction != "" {
		plan = &models.TradePlan{
			ID:              ulid.Make().String(),
			Asset:           p.Symbol,
			Cycle:           p.Cycle,
			Direction:       models.PlanDirection(tp.Direction),
			Confidence:      tp.Confidence,
			EntryPrice:      tp.EntryPrice,
			StopLoss:        tp.StopLoss,
			TakeProfit1:     tp.TakeProfit1,
			TakeProfit2:     tp.TakeProfit2,
			RiskRewardRatio: tp.RiskRewardRatio,
			AnalysisID:      analysis.ID,
			PromptID:        p.PromptID,
			ExtraInfo:       rawJSON,
			Status:          models.PlanStatusActive,
		}
	}

	err := s.Transaction(ctx, func(ctx context.Context) error {
		if err := s.analysisRepo.Create(ctx, analysis); err != nil {
			return err
		}
		if plan != nil {
			return s.planRepo.Create(ctx, plan)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return analysis, plan, nil
}

// TriggerAnalysis 手动触发一次分析：校验资产存在后在后台执行，
// 使用当前激活的提示词与默认的 1h 周期，不阻塞HTTP调用方
func (s *AnalysisService) TriggerAnalysis(ctx context.Context, symbol string, assetType models.AssetType) error {
	asset, err := s.assetRepo.FindBySymbolAndType(ctx, symbol, assetType)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return xe.ErrAssetNotFound
		}
		return err
	}

	prompt, err := s.promptRepo.GetActivePrompt(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return xe.ErrNoActivePrompt
		}
		return err
	}

	go s.RunAnalysisTask(context.Background(), AnalysisParams{
		AssetID:   asset.ID,
		PromptID:  prompt.ID,
		Cycle:     models.Cycle1h,
		Symbol:    asset.Symbol,
		AssetType: asset.Type,
	})
	return nil
}

// FindAnalysisPage 分页查询分析历史
func (s *AnalysisService) FindAnalysisPage(ctx context.Context, page, pageSize int, asset string) ([]models.TradeAnalysis, int64, error) {
	return s.analysisRepo.FindPage(ctx, page, pageSize, asset)
}

// newTaskLogger 创建单次任务专用的文件日志，路径由日期、符号、周期和时间戳组成。
// 返回的清理函数在任务的每条返回路径上都会执行。
func (s *AnalysisService) newTaskLogger(symbol string, cycle models.Cycle) (*zap.Logger, func()) {
	dir := filepath.Join(s.logDir, "tasks")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.logger.Error("failed to create task log directory", zap.String("dir", dir), zap.Error(err))
		return s.logger, func() {}
	}

	now := time.Now()
	name := fmt.Sprintf("%s_%s_%s_%s.log", now.Format("20060102"), symbol, cycle, now.Format("150405.000"))
	file, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		s.logger.Error("failed to open task log file", zap.String("file", name), zap.Error(err))
		return s.logger, func() {}
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(file), zapcore.InfoLevel)
	taskLogger := zap.New(core)

	return taskLogger, func() {
		_ = taskLogger.Sync()
		_ = file.Close()
	}
}

// notifyPlan 新交易计划入库后发送通知，失败只记录警告
func (s *AnalysisService) notifyPlan(plan *models.TradePlan) {
	if s.notifier == nil || s.chatID == "" {
		return
	}

	msg := fmt.Sprintf("*新交易计划* %s (%s)\n方向: %s\n入场: %.4f\n止损: %.4f\n目标1: %.4f\n目标2: %.4f\n盈亏比: %s",
		plan.Asset, plan.Cycle, plan.Direction,
		plan.EntryPrice, plan.StopLoss, plan.TakeProfit1, plan.TakeProfit2,
		telegram.EscapeMarkdown(plan.RiskRewardRatio))

	if err := s.notifier.Notify(s.chatID, msg); err != nil {
		s.logger.Warn("failed to send trade plan notification", zap.Error(err))
	}
}
