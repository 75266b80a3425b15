package service

import (
	"context"
	"errors"

	"github.com/YyItRoad/ai-trade/internal/models"
	"github.com/YyItRoad/ai-trade/internal/repo"
	"github.com/YyItRoad/ai-trade/internal/xe"
	"github.com/go-orz/orz"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PromptService 提示词版本管理，维护"任意时刻至多一个激活版本"的不变量
type PromptService struct {
	logger *zap.Logger

	*orz.Service

	promptRepo *repo.PromptRepo
}

func NewPromptService(logger *zap.Logger, db *gorm.DB) *PromptService {
	return &PromptService{
		logger:     logger,
		Service:    orz.NewService(db),
		promptRepo: repo.NewPromptRepo(db),
	}
}

// GetActivePrompt 获取当前激活的提示词
func (s *PromptService) GetActivePrompt(ctx context.Context) (models.Prompt, error) {
	prompt, err := s.promptRepo.GetActivePrompt(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Prompt{}, xe.ErrNoActivePrompt
		}
		return models.Prompt{}, err
	}
	return *prompt, nil
}

// CreatePrompt 创建新版本提示词，版本号在同名提示词内自增。
// activate 为真时在同一事务内先取消所有激活再激活新版本。
func (s *PromptService) CreatePrompt(ctx context.Context, name, content string, activate bool) (models.Prompt, error) {
	maxVersion, err := s.promptRepo.GetMaxVersionByName(ctx, name)
	if err != nil {
		return models.Prompt{}, err
	}

	prompt := models.Prompt{
		ID:       ulid.Make().String(),
		Name:     name,
		Version:  maxVersion + 1,
		Content:  content,
		IsActive: activate,
	}

	err = s.Transaction(ctx, func(ctx context.Context) error {
		if activate {
			if err := s.promptRepo.DeactivateAll(ctx); err != nil {
				return err
			}
		}
		return s.promptRepo.Create(ctx, &prompt)
	})
	if err != nil {
		return models.Prompt{}, err
	}

	s.logger.Info("prompt created",
		zap.String("id", prompt.ID),
		zap.String("name", name),
		zap.Int("version", prompt.Version),
		zap.Bool("active", activate))
	return prompt, nil
}

// GetPrompt 按ID查询提示词
func (s *PromptService) GetPrompt(ctx context.Context, id string) (models.Prompt, error) {
	prompt, err := s.promptRepo.FindById(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Prompt{}, xe.ErrPromptNotFound
		}
		return models.Prompt{}, err
	}
	return prompt, nil
}

// ActivatePrompt 激活指定版本：先取消所有激活，再激活目标行，同一事务完成
func (s *PromptService) ActivatePrompt(ctx context.Context, id string) error {
	_, err := s.promptRepo.FindById(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return xe.ErrPromptNotFound
		}
		return err
	}

	return s.Transaction(ctx, func(ctx context.Context) error {
		if err := s.promptRepo.DeactivateAll(ctx); err != nil {
			return err
		}
		return s.promptRepo.ActivateById(ctx, id)
	})
}

// DeletePrompt 删除指定版本，当前激活的版本不允许删除
func (s *PromptService) DeletePrompt(ctx context.Context, id string) error {
	prompt, err := s.promptRepo.FindById(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return xe.ErrPromptNotFound
		}
		return err
	}

	if prompt.IsActive {
		return xe.ErrActivePromptDelete
	}

	return s.promptRepo.DeleteById(ctx, id)
}

// FindPrompts 列出所有提示词版本，按名称升序、版本降序
func (s *PromptService) FindPrompts(ctx context.Context) ([]models.Prompt, error) {
	return s.promptRepo.FindAllOrderByNameAndVersion(ctx)
}
