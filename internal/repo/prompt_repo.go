package repo

import (
	"context"

	"github.com/YyItRoad/ai-trade/internal/models"
	"github.com/go-orz/orz"
	"gorm.io/gorm"
)

func NewPromptRepo(db *gorm.DB) *PromptRepo {
	return &PromptRepo{
		Repository: orz.NewRepository[models.Prompt, string](db),
	}
}

type PromptRepo struct {
	orz.Repository[models.Prompt, string]
}

// GetActivePrompt 获取当前激活的提示词
func (r *PromptRepo) GetActivePrompt(ctx context.Context) (*models.Prompt, error) {
	var prompt models.Prompt
	err := r.GetDB(ctx).
		Table(r.GetTableName()).
		Where("is_active = ?", true).
		First(&prompt).Error
	if err != nil {
		return nil, err
	}
	return &prompt, nil
}

// GetMaxVersionByName 获取同名提示词的最大版本号
func (r *PromptRepo) GetMaxVersionByName(ctx context.Context, name string) (int, error) {
	var maxVersion int
	err := r.GetDB(ctx).
		Model(&models.Prompt{}).
		Where("name = ?", name).
		Select("COALESCE(MAX(version), 0)").
		Scan(&maxVersion).Error
	if err != nil {
		return 0, err
	}
	return maxVersion, nil
}

// DeactivateAll 将所有提示词设为非激活状态
func (r *PromptRepo) DeactivateAll(ctx context.Context) error {
	return r.GetDB(ctx).
		Model(&models.Prompt{}).
		Where("is_active = ?", true).
		Update("is_active", false).Error
}

// ActivateById 激活指定ID的提示词
func (r *PromptRepo) ActivateById(ctx context.Context, id string) error {
	return r.GetDB(ctx).
		Model(&models.Prompt{}).
		Where("id = ?", id).
		Update("is_active", true).Error
}

// FindAllOrderByNameAndVersion 按名称、版本号降序返回全部提示词
func (r *PromptRepo) FindAllOrderByNameAndVersion(ctx context.Context) ([]models.Prompt, error) {
	var prompts []models.Prompt
	err := r.GetDB(ctx).
		Table(r.GetTableName()).
		Order("name ASC, version DESC").
		Find(&prompts).Error
	return prompts, err
}
