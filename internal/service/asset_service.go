package service

import (
	"context"
	"errors"
	"strings"

	"github.com/YyItRoad/ai-trade/internal/models"
	"github.com/YyItRoad/ai-trade/internal/repo"
	"github.com/YyItRoad/ai-trade/internal/xe"
	"github.com/go-orz/orz"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AssetService 资产管理。删除资产会级联删除其定时任务并同步调度器。
type AssetService struct {
	logger *zap.Logger

	*orz.Service

	assetRepo *repo.AssetRepo
	taskRepo  *repo.ScheduledTaskRepo
	scheduler *SchedulerService
}

func NewAssetService(logger *zap.Logger, db *gorm.DB, scheduler *SchedulerService) *AssetService {
	return &AssetService{
		logger:    logger,
		Service:   orz.NewService(db),
		assetRepo: repo.NewAssetRepo(db),
		taskRepo:  repo.NewScheduledTaskRepo(db),
		scheduler: scheduler,
	}
}

// CreateAsset 创建资产，符号统一大写，同符号同类型的资产不允许重复
func (s *AssetService) CreateAsset(ctx context.Context, symbol string, assetType models.AssetType) (models.Asset, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" || !assetType.Valid() {
		return models.Asset{}, xe.ErrInvalidParams
	}

	_, err := s.assetRepo.FindBySymbolAndType(ctx, symbol, assetType)
	if err == nil {
		return models.Asset{}, xe.ErrAssetExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Asset{}, err
	}

	asset := models.Asset{
		ID:     ulid.Make().String(),
		Symbol: symbol,
		Type:   assetType,
	}
	if err := s.assetRepo.Create(ctx, &asset); err != nil {
		return models.Asset{}, err
	}

	s.logger.Info("asset created",
		zap.String("id", asset.ID),
		zap.String("symbol", symbol),
		zap.String("type", assetType.Label()))
	return asset, nil
}

// FindAssets 列出所有资产
func (s *AssetService) FindAssets(ctx context.Context) ([]models.Asset, error) {
	return s.assetRepo.FindAllOrderBySymbol(ctx)
}

// FindSymbols 列出所有资产符号
func (s *AssetService) FindSymbols(ctx context.Context) ([]string, error) {
	return s.assetRepo.FindSymbols(ctx)
}

// DeleteAsset 删除资产并级联删除其全部定时任务，随后同步调度器
func (s *AssetService) DeleteAsset(ctx context.Context, id string) error {
	_, err := s.assetRepo.FindById(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return xe.ErrAssetNotFound
		}
		return err
	}

	err = s.Transaction(ctx, func(ctx context.Context) error {
		if err := s.taskRepo.DeleteByAssetId(ctx, id); err != nil {
			return err
		}
		return s.assetRepo.DeleteById(ctx, id)
	})
	if err != nil {
		return err
	}

	if err := s.scheduler.Reload(ctx); err != nil {
		s.logger.Error("failed to reload scheduler after asset delete", zap.Error(err))
		return err
	}
	return nil
}
