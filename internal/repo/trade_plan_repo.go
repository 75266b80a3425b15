package repo

import (
	"context"

	"github.com/YyItRoad/ai-trade/internal/models"
	"github.com/go-orz/orz"
	"gorm.io/gorm"
)

func NewTradePlanRepo(db *gorm.DB) *TradePlanRepo {
	return &TradePlanRepo{
		Repository: orz.NewRepository[models.TradePlan, string](db),
	}
}

type TradePlanRepo struct {
	orz.Repository[models.TradePlan, string]
}

// FindPage 按创建时间降序分页查询交易计划，asset 非空时按资产过滤
func (r TradePlanRepo) FindPage(ctx context.Context, page, pageSize int, asset string) ([]models.TradePlan, int64, error) {
	db := r.GetDB(ctx).Table(r.GetTableName())
	if asset != "" {
		db = db.Where("asset = ?", asset)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var plans []models.TradePlan
	err := db.Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&plans).Error
	return plans, total, err
}

// UpdateStatus 更新交易计划状态，状态是唯一允许修改的字段
func (r TradePlanRepo) UpdateStatus(ctx context.Context, id string, status models.PlanStatus) (int64, error) {
	db := r.GetDB(ctx)
	result := db.Table(r.GetTableName()).
		Where("id = ?", id).
		Update("status", status)
	return result.RowsAffected, result.Error
}
