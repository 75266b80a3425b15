package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/YyItRoad/ai-trade/internal/config"
	"github.com/YyItRoad/ai-trade/internal/models"
	"github.com/YyItRoad/ai-trade/pkg/market"
	"github.com/glebarez/sqlite"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		models.Asset{}, models.Prompt{}, models.ScheduledTask{},
		models.TradeAnalysis{}, models.TradePlan{},
	))
	return db
}

type stubFetcher struct {
	data   map[string][]market.Candle
	err    error
	called bool
}

func (s *stubFetcher) FetchKlines(ctx context.Context, symbol string, assetType int) (map[string][]market.Candle, error) {
	s.called = true
	return s.data, s.err
}

type stubResponder struct {
	resp       string
	err        error
	called     bool
	lastSystem string
	lastUser   string
}

func (s *stubResponder) GetResponse(ctx context.Context, systemPrompt, userPrompt string, history []ChatMessage) (string, error) {
	s.called = true
	s.lastSystem = systemPrompt
	s.lastUser = userPrompt
	return s.resp, s.err
}

func sampleKlines() map[string][]market.Candle {
	return map[string][]market.Candle{
		"15m": {{int64(1700000000000), "42000", "42100", "41900", "42050", "12.3"}},
		"1h":  {{int64(1700000000000), "42000", "42200", "41800", "42100", "45.6"}},
		"4h":  {},
	}
}

func newTestAnalysisService(t *testing.T, db *gorm.DB, fetcher MarketFetcher, ai Responder) *AnalysisService {
	t.Helper()
	conf := &config.Config{}
	conf.Scheduler.LogDir = t.TempDir()
	return NewAnalysisService(zap.NewNop(), db, fetcher, ai, nil, conf)
}

func seedPromptAndAsset(t *testing.T, db *gorm.DB) (models.Prompt, models.Asset) {
	t.Helper()
	prompt := models.Prompt{
		ID:       ulid.Make().String(),
		Name:     "默认分析",
		Version:  1,
		Content:  "你是{{symbol}}交易分析师，当前周期{{cycle}}\n---JSON---\n{\"analysis\": {\"trend\": \"...\"}}",
		IsActive: true,
	}
	require.NoError(t, db.Create(&prompt).Error)

	asset := models.Asset{
		ID:     ulid.Make().String(),
		Symbol: "BTCUSDT",
		Type:   models.AssetTypeUsdFutures,
	}
	require.NoError(t, db.Create(&asset).Error)
	return prompt, asset
}

const fencedResponse = "分析完成。\n```json\n{\"analysis\": {\"trend\": \"UP\", \"confidence\": 0.82, \"conclusion\": \"突破关键阻力\"}, \"tradePlan\": {\"direction\": \"LONG\", \"confidence\": 0.75, \"entry_price\": 42000.5, \"stop_loss\": 41000, \"take_profit_1\": 43500, \"take_profit_2\": 45000, \"risk_reward_ratio\": \"1:2.5\", \"status\": \"EXECUTED\"}}\n```\n"

func TestRunAnalysisTaskPersistsAnalysisAndPlan(t *testing.T) {
	db := newTestDB(t)
	prompt, asset := seedPromptAndAsset(t, db)

	fetcher := &stubFetcher{data: sampleKlines()}
	responder := &stubResponder{resp: fencedResponse}
	svc := newTestAnalysisService(t, db, fetcher, responder)

	svc.RunAnalysisTask(context.Background(), AnalysisParams{
		AssetID:   asset.ID,
		PromptID:  prompt.ID,
		Cycle:     models.Cycle1h,
		Symbol:    asset.Symbol,
		AssetType: asset.Type,
	})

	// 系统提示词：占位符渲染并附带JSON结构要求
	assert.Contains(t, responder.lastSystem, "BTCUSDT交易分析师")
	assert.Contains(t, responder.lastSystem, "当前周期1h")
	assert.Contains(t, responder.lastSystem, `{"analysis": {"trend": "..."}}`)
	assert.NotContains(t, responder.lastSystem, "---JSON---")
	// 用户提示词：序列化后的K线数据
	assert.Contains(t, responder.lastUser, "42000")
	assert.Contains(t, responder.lastUser, "```json")

	var analyses []models.TradeAnalysis
	require.NoError(t, db.Find(&analyses).Error)
	require.Len(t, analyses, 1)
	assert.Equal(t, "UP", analyses[0].Trend)
	assert.Equal(t, 0.82, analyses[0].Confidence)
	assert.Equal(t, "突破关键阻力", analyses[0].Conclusion)
	assert.Equal(t, prompt.ID, analyses[0].PromptID)
	assert.Equal(t, models.Cycle1h, analyses[0].Cycle)

	var plans []models.TradePlan
	require.NoError(t, db.Find(&plans).Error)
	require.Len(t, plans, 1)
	assert.Equal(t, models.DirectionLong, plans[0].Direction)
	assert.Equal(t, analyses[0].ID, plans[0].AnalysisID)
	// 模型给出的状态被忽略，强制写入ACTIVE
	assert.Equal(t, models.PlanStatusActive, plans[0].Status)
	assert.Equal(t, 42000.5, plans[0].EntryPrice)
	assert.Equal(t, "1:2.5", plans[0].RiskRewardRatio)
}

func TestRunAnalysisTaskWithoutTradePlan(t *testing.T) {
	db := newTestDB(t)
	prompt, asset := seedPromptAndAsset(t, db)

	fetcher := &stubFetcher{data: sampleKlines()}
	responder := &stubResponder{resp: `{"analysis": {"trend": "SIDEWAYS", "confidence": 0.4, "conclusion": "观望"}, "tradePlan": null}`}
	svc := newTestAnalysisService(t, db, fetcher, responder)

	svc.RunAnalysisTask(context.Background(), AnalysisParams{
		AssetID: asset.ID, PromptID: prompt.ID, Cycle: models.Cycle4h,
		Symbol: asset.Symbol, AssetType: asset.Type,
	})

	var analysisCount, planCount int64
	require.NoError(t, db.Model(&models.TradeAnalysis{}).Count(&analysisCount).Error)
	require.NoError(t, db.Model(&models.TradePlan{}).Count(&planCount).Error)
	assert.Equal(t, int64(1), analysisCount)
	assert.Equal(t, int64(0), planCount)
}

func TestRunAnalysisTaskAbortsWhenPromptMissing(t *testing.T) {
	db := newTestDB(t)
	_, asset := seedPromptAndAsset(t, db)

	fetcher := &stubFetcher{data: sampleKlines()}
	responder := &stubResponder{resp: fencedResponse}
	svc := newTestAnalysisService(t, db, fetcher, responder)

	svc.RunAnalysisTask(context.Background(), AnalysisParams{
		AssetID: asset.ID, PromptID: "missing", Cycle: models.Cycle1h,
		Symbol: asset.Symbol, AssetType: asset.Type,
	})

	assert.False(t, fetcher.called)
	assert.False(t, responder.called)
}

func TestRunAnalysisTaskAbortsWhenAllKlinesEmpty(t *testing.T) {
	db := newTestDB(t)
	prompt, asset := seedPromptAndAsset(t, db)

	fetcher := &stubFetcher{data: map[string][]market.Candle{"15m": {}, "1h": {}, "4h": {}}}
	responder := &stubResponder{resp: fencedResponse}
	svc := newTestAnalysisService(t, db, fetcher, responder)

	svc.RunAnalysisTask(context.Background(), AnalysisParams{
		AssetID: asset.ID, PromptID: prompt.ID, Cycle: models.Cycle1h,
		Symbol: asset.Symbol, AssetType: asset.Type,
	})

	assert.False(t, responder.called)

	var count int64
	require.NoError(t, db.Model(&models.TradeAnalysis{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestRunAnalysisTaskAbortsOnUnparsableResponse(t *testing.T) {
	for name, resp := range map[string]string{
		"no json at all": "模型没有输出任何结构化内容",
		"invalid json":   "前缀 {\"analysis\": 不完整",
	} {
		t.Run(name, func(t *testing.T) {
			db := newTestDB(t)
			prompt, asset := seedPromptAndAsset(t, db)

			fetcher := &stubFetcher{data: sampleKlines()}
			responder := &stubResponder{resp: resp}
			svc := newTestAnalysisService(t, db, fetcher, responder)

			svc.RunAnalysisTask(context.Background(), AnalysisParams{
				AssetID: asset.ID, PromptID: prompt.ID, Cycle: models.Cycle1h,
				Symbol: asset.Symbol, AssetType: asset.Type,
			})

			var count int64
			require.NoError(t, db.Model(&models.TradeAnalysis{}).Count(&count).Error)
			assert.Equal(t, int64(0), count)
		})
	}
}

func TestRunAnalysisTaskWritesTaskLogFile(t *testing.T) {
	db := newTestDB(t)
	prompt, asset := seedPromptAndAsset(t, db)

	conf := &config.Config{}
	logDir := t.TempDir()
	conf.Scheduler.LogDir = logDir
	svc := NewAnalysisService(zap.NewNop(), db, &stubFetcher{data: sampleKlines()}, &stubResponder{resp: fencedResponse}, nil, conf)

	svc.RunAnalysisTask(context.Background(), AnalysisParams{
		AssetID: asset.ID, PromptID: prompt.ID, Cycle: models.Cycle15m,
		Symbol: asset.Symbol, AssetType: asset.Type,
	})

	entries, err := os.ReadDir(filepath.Join(logDir, "tasks"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), "BTCUSDT")
	assert.Contains(t, entries[0].Name(), "15m")

	content, err := os.ReadFile(filepath.Join(logDir, "tasks", entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(content), "analysis task completed")
}

func TestTriggerAnalysisUnknownAsset(t *testing.T) {
	db := newTestDB(t)
	seedPromptAndAsset(t, db)

	svc := newTestAnalysisService(t, db, &stubFetcher{}, &stubResponder{})
	err := svc.TriggerAnalysis(context.Background(), "DOGEUSDT", models.AssetTypeSpot)
	require.Error(t, err)
}

func TestTriggerAnalysisNoActivePrompt(t *testing.T) {
	db := newTestDB(t)
	prompt, asset := seedPromptAndAsset(t, db)
	require.NoError(t, db.Model(&models.Prompt{}).Where("id = ?", prompt.ID).Update("is_active", false).Error)

	svc := newTestAnalysisService(t, db, &stubFetcher{}, &stubResponder{})
	err := svc.TriggerAnalysis(context.Background(), asset.Symbol, asset.Type)
	require.Error(t, err)
}
