package repo

import (
	"context"

	"github.com/YyItRoad/ai-trade/internal/models"
	"github.com/go-orz/orz"
	"gorm.io/gorm"
)

func NewTradeAnalysisRepo(db *gorm.DB) *TradeAnalysisRepo {
	return &TradeAnalysisRepo{
		Repository: orz.NewRepository[models.TradeAnalysis, string](db),
	}
}

type TradeAnalysisRepo struct {
	orz.Repository[models.TradeAnalysis, string]
}

// FindPage 分页查询分析记录，asset 为空时不过滤
func (r TradeAnalysisRepo) FindPage(ctx context.Context, page, pageSize int, asset string) ([]models.TradeAnalysis, int64, error) {
	db := r.GetDB(ctx).Table(r.GetTableName())
	if asset != "" {
		db = db.Where("asset = ?", asset)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []models.TradeAnalysis
	err := db.Order("timestamp DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&records).Error
	return records, total, err
}
