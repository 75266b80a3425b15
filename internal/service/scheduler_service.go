package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/YyItRoad/ai-trade/internal/config"
	"github.com/YyItRoad/ai-trade/internal/repo"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// maxJobInstances 同一任务允许同时运行的最大实例数
	maxJobInstances = 5
	// misfireGrace 错过触发时间超过该阈值的任务直接放弃本次执行
	misfireGrace = 5 * time.Minute
	// defaultTimezone 未配置时区时的默认值
	defaultTimezone = "Asia/Shanghai"
)

// cronParser 六段式cron表达式解析器，秒级精度
var cronParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
)

// ValidateCron 校验六段式cron表达式
func ValidateCron(expr string) error {
	if len(strings.Fields(expr)) != 6 {
		return fmt.Errorf("cron expression must have 6 fields: %q", expr)
	}
	_, err := cronParser.Parse(expr)
	return err
}

// TaskRunner 调度器触发的任务执行器
type TaskRunner interface {
	RunAnalysisTask(ctx context.Context, p AnalysisParams)
}

// SchedulerService 把数据库中的定时任务行映射为cron任务。
// 数据库是唯一事实来源，每次任务配置变更后调用 Reload 重建注册表。
type SchedulerService struct {
	logger   *zap.Logger
	runner   TaskRunner
	location *time.Location

	taskRepo  *repo.ScheduledTaskRepo
	assetRepo *repo.AssetRepo

	mu      sync.Mutex
	cron    *cron.Cron
	started bool
	// entries 任务ID到cron注册项的映射
	entries map[string]cron.EntryID
	// running 任务ID到当前运行实例数的映射
	running map[string]int
	wg      sync.WaitGroup
}

// NewSchedulerService 创建调度服务，时区来自配置，加载失败时回退到默认时区
func NewSchedulerService(logger *zap.Logger, db *gorm.DB, runner TaskRunner, conf *config.Config) *SchedulerService {
	tz := conf.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	location, err := time.LoadLocation(tz)
	if err != nil {
		logger.Warn("failed to load scheduler timezone, falling back to default",
			zap.String("timezone", tz), zap.Error(err))
		location, _ = time.LoadLocation(defaultTimezone)
	}
	return newSchedulerService(logger, db, runner, location)
}

func newSchedulerService(logger *zap.Logger, db *gorm.DB, runner TaskRunner, location *time.Location) *SchedulerService {
	return &SchedulerService{
		logger:    logger,
		runner:    runner,
		location:  location,
		taskRepo:  repo.NewScheduledTaskRepo(db),
		assetRepo: repo.NewAssetRepo(db),
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(location),
		),
		entries: make(map[string]cron.EntryID),
		running: make(map[string]int),
	}
}

// Start 启动调度器并加载当前激活的任务，重复调用只记录警告
func (s *SchedulerService) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		s.logger.Warn("scheduler already started")
		return nil
	}
	s.started = true
	s.mu.Unlock()

	if err := s.Reload(ctx); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("timezone", s.location.String()))
	return nil
}

// Reload 重新读取数据库中的激活任务并重建cron注册表。
// 单行的错误（非法表达式、资产缺失）只跳过该行，不影响其它任务。
func (s *SchedulerService) Reload(ctx context.Context) error {
	tasks, err := s.taskRepo.FindActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to load active tasks: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, entryID := range s.entries {
		s.cron.Remove(entryID)
		delete(s.entries, id)
	}

	var registered int
	for _, task := range tasks {
		if err := ValidateCron(task.CronExpression); err != nil {
			s.logger.Warn("skipping task with invalid cron expression",
				zap.String("task_id", task.ID),
				zap.String("cron", task.CronExpression),
				zap.Error(err))
			continue
		}

		asset, err := s.assetRepo.FindById(ctx, task.AssetID)
		if err != nil {
			s.logger.Warn("skipping task with missing asset",
				zap.String("task_id", task.ID),
				zap.String("asset_id", task.AssetID),
				zap.Error(err))
			continue
		}

		params := AnalysisParams{
			AssetID:   asset.ID,
			PromptID:  task.PromptID,
			Cycle:     task.Cycle,
			Symbol:    asset.Symbol,
			AssetType: asset.Type,
		}
		taskID := task.ID
		entryID, err := s.cron.AddFunc(task.CronExpression, func() {
			s.runJob(taskID, params, s.lastScheduled(taskID))
		})
		if err != nil {
			s.logger.Warn("failed to register cron task",
				zap.String("task_id", task.ID),
				zap.String("cron", task.CronExpression),
				zap.Error(err))
			continue
		}
		s.entries[task.ID] = entryID
		registered++
	}

	s.logger.Info("scheduler reloaded",
		zap.Int("active_tasks", len(tasks)),
		zap.Int("registered", registered))
	return nil
}

// lastScheduled 返回任务最近一次计划触发时间，任务未注册时返回零值
func (s *SchedulerService) lastScheduled(taskID string) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entryID, ok := s.entries[taskID]; ok {
		return s.cron.Entry(entryID).Prev
	}
	return time.Time{}
}

// runJob 执行单个cron触发：检查错过时限与并发上限后调用执行器
func (s *SchedulerService) runJob(taskID string, params AnalysisParams, scheduled time.Time) {
	if !scheduled.IsZero() && time.Since(scheduled) > misfireGrace {
		s.logger.Warn("skipping misfired task",
			zap.String("task_id", taskID),
			zap.Time("scheduled", scheduled))
		return
	}

	s.mu.Lock()
	if _, ok := s.entries[taskID]; !ok {
		s.mu.Unlock()
		return
	}
	if s.running[taskID] >= maxJobInstances {
		s.mu.Unlock()
		s.logger.Warn("skipping task run, max concurrent instances reached",
			zap.String("task_id", taskID),
			zap.Int("max", maxJobInstances))
		return
	}
	s.running[taskID]++
	s.wg.Add(1)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running[taskID]--
		s.mu.Unlock()
		s.wg.Done()
	}()

	s.runner.RunAnalysisTask(context.Background(), params)
}

// TaskCount 返回当前注册的任务数量
func (s *SchedulerService) TaskCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Running 判断调度器是否已启动
func (s *SchedulerService) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// Shutdown 停止触发新任务并等待正在运行的任务结束
func (s *SchedulerService) Shutdown() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

// NextRuns 返回各任务的下次触发时间，供任务列表接口展示
func (s *SchedulerService) NextRuns() map[string]time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]time.Time, len(s.entries))
	for id, entryID := range s.entries {
		next[id] = s.cron.Entry(entryID).Next
	}
	return next
}
