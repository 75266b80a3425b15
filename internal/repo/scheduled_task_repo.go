package repo

import (
	"context"

	"github.com/YyItRoad/ai-trade/internal/models"
	"github.com/go-orz/orz"
	"gorm.io/gorm"
)

func NewScheduledTaskRepo(db *gorm.DB) *ScheduledTaskRepo {
	return &ScheduledTaskRepo{
		Repository: orz.NewRepository[models.ScheduledTask, string](db),
	}
}

type ScheduledTaskRepo struct {
	orz.Repository[models.ScheduledTask, string]
}

// FindActive 返回所有启用的定时任务
func (r ScheduledTaskRepo) FindActive(ctx context.Context) ([]models.ScheduledTask, error) {
	var tasks []models.ScheduledTask
	db := r.GetDB(ctx)
	err := db.Table(r.GetTableName()).
		Where("is_active = ?", true).
		Find(&tasks).Error
	return tasks, err
}

// FindAllOrderByCreatedAt 按创建时间降序返回全部任务
func (r ScheduledTaskRepo) FindAllOrderByCreatedAt(ctx context.Context) ([]models.ScheduledTask, error) {
	var tasks []models.ScheduledTask
	db := r.GetDB(ctx)
	err := db.Table(r.GetTableName()).
		Order("created_at DESC").
		Find(&tasks).Error
	return tasks, err
}

// DeleteByAssetId 删除某个资产下的全部任务，资产删除时级联调用
func (r ScheduledTaskRepo) DeleteByAssetId(ctx context.Context, assetId string) error {
	db := r.GetDB(ctx)
	return db.Where("asset_id = ?", assetId).
		Delete(&models.ScheduledTask{}).Error
}
