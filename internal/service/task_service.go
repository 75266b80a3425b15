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

// TaskService 定时任务管理，任何变更成功后立即同步调度器注册表
type TaskService struct {
	logger *zap.Logger

	*orz.Service

	taskRepo   *repo.ScheduledTaskRepo
	assetRepo  *repo.AssetRepo
	promptRepo *repo.PromptRepo
	scheduler  *SchedulerService
}

func NewTaskService(logger *zap.Logger, db *gorm.DB, scheduler *SchedulerService) *TaskService {
	return &TaskService{
		logger:     logger,
		Service:    orz.NewService(db),
		taskRepo:   repo.NewScheduledTaskRepo(db),
		assetRepo:  repo.NewAssetRepo(db),
		promptRepo: repo.NewPromptRepo(db),
		scheduler:  scheduler,
	}
}

// TaskInput 创建与更新定时任务的共同入参
type TaskInput struct {
	AssetID        string       `json:"assetId"`
	PromptID       string       `json:"promptId"`
	Cycle          models.Cycle `json:"cycle"`
	CronExpression string       `json:"cronExpression"`
	IsActive       bool         `json:"isActive"`
}

func (s *TaskService) validateInput(ctx context.Context, in *TaskInput) error {
	in.CronExpression = strings.TrimSpace(in.CronExpression)
	if !in.Cycle.Valid() {
		return xe.ErrInvalidCycle
	}
	if err := ValidateCron(in.CronExpression); err != nil {
		return xe.ErrInvalidCron
	}
	if _, err := s.assetRepo.FindById(ctx, in.AssetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return xe.ErrAssetNotFound
		}
		return err
	}
	if _, err := s.promptRepo.FindById(ctx, in.PromptID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return xe.ErrPromptNotFound
		}
		return err
	}
	return nil
}

// CreateTask 创建定时任务
func (s *TaskService) CreateTask(ctx context.Context, in TaskInput) (models.ScheduledTask, error) {
	if err := s.validateInput(ctx, &in); err != nil {
		return models.ScheduledTask{}, err
	}

	task := models.ScheduledTask{
		ID:             ulid.Make().String(),
		AssetID:        in.AssetID,
		PromptID:       in.PromptID,
		Cycle:          in.Cycle,
		CronExpression: in.CronExpression,
		IsActive:       in.IsActive,
	}
	if err := s.taskRepo.Create(ctx, &task); err != nil {
		return models.ScheduledTask{}, err
	}

	if err := s.reload(ctx); err != nil {
		return models.ScheduledTask{}, err
	}
	s.logger.Info("scheduled task created",
		zap.String("id", task.ID),
		zap.String("cron", task.CronExpression),
		zap.Bool("active", task.IsActive))
	return task, nil
}

// UpdateTask 更新定时任务
func (s *TaskService) UpdateTask(ctx context.Context, id string, in TaskInput) error {
	task, err := s.taskRepo.FindById(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return xe.ErrTaskNotFound
		}
		return err
	}

	if err := s.validateInput(ctx, &in); err != nil {
		return err
	}

	task.AssetID = in.AssetID
	task.PromptID = in.PromptID
	task.Cycle = in.Cycle
	task.CronExpression = in.CronExpression
	task.IsActive = in.IsActive
	if err := s.taskRepo.Save(ctx, &task); err != nil {
		return err
	}

	return s.reload(ctx)
}

// SetTaskActive 启用或停用任务
func (s *TaskService) SetTaskActive(ctx context.Context, id string, active bool) error {
	task, err := s.taskRepo.FindById(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return xe.ErrTaskNotFound
		}
		return err
	}

	task.IsActive = active
	if err := s.taskRepo.Save(ctx, &task); err != nil {
		return err
	}

	return s.reload(ctx)
}

// DeleteTask 删除任务
func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	_, err := s.taskRepo.FindById(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return xe.ErrTaskNotFound
		}
		return err
	}

	if err := s.taskRepo.DeleteById(ctx, id); err != nil {
		return err
	}

	return s.reload(ctx)
}

// FindTasks 列出所有任务，附带调度器给出的下次触发时间
func (s *TaskService) FindTasks(ctx context.Context) ([]orz.Map, error) {
	tasks, err := s.taskRepo.FindAllOrderByCreatedAt(ctx)
	if err != nil {
		return nil, err
	}

	nextRuns := s.scheduler.NextRuns()
	items := make([]orz.Map, 0, len(tasks))
	for _, task := range tasks {
		item := orz.Map{
			"id":             task.ID,
			"assetId":        task.AssetID,
			"promptId":       task.PromptID,
			"cycle":          task.Cycle,
			"cronExpression": task.CronExpression,
			"isActive":       task.IsActive,
			"createdAt":      task.CreatedAt,
			"updatedAt":      task.UpdatedAt,
		}
		if next, ok := nextRuns[task.ID]; ok {
			item["nextRunAt"] = next
		}
		items = append(items, item)
	}
	return items, nil
}

// reload 同步调度器注册表，失败时向调用方返回错误，
// 避免数据库与内存中的调度状态静默漂移
func (s *TaskService) reload(ctx context.Context) error {
	if err := s.scheduler.Reload(ctx); err != nil {
		s.logger.Error("failed to reload scheduler after task change", zap.Error(err))
		return err
	}
	return nil
}
