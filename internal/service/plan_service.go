package service

import (
	"context"

	"github.com/YyItRoad/ai-trade/internal/models"
	"github.com/YyItRoad/ai-trade/internal/repo"
	"github.com/YyItRoad/ai-trade/internal/xe"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PlanService 交易计划查询与状态流转
type PlanService struct {
	logger   *zap.Logger
	planRepo *repo.TradePlanRepo
}

func NewPlanService(logger *zap.Logger, db *gorm.DB) *PlanService {
	return &PlanService{
		logger:   logger,
		planRepo: repo.NewTradePlanRepo(db),
	}
}

// FindPlanPage 分页查询交易计划
func (s *PlanService) FindPlanPage(ctx context.Context, page, pageSize int, asset string) ([]models.TradePlan, int64, error) {
	return s.planRepo.FindPage(ctx, page, pageSize, asset)
}

// UpdatePlanStatus 更新计划状态
func (s *PlanService) UpdatePlanStatus(ctx context.Context, id string, status models.PlanStatus) error {
	if !status.Valid() {
		return xe.ErrInvalidPlanStatus
	}

	affected, err := s.planRepo.UpdateStatus(ctx, id, status)
	if err != nil {
		return err
	}
	if affected == 0 {
		return xe.ErrPlanNotFound
	}

	s.logger.Info("trade plan status updated",
		zap.String("id", id),
		zap.String("status", string(status)))
	return nil
}
