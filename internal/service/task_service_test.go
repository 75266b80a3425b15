package service

import (
	"context"
	"testing"
	"time"

	"github.com/YyItRoad/ai-trade/internal/models"
	"github.com/YyItRoad/ai-trade/internal/xe"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTaskService(t *testing.T) (*TaskService, *SchedulerService, *gorm.DB) {
	db := newTestDB(t)
	scheduler := newSchedulerService(zap.NewNop(), db, &recordingRunner{}, time.UTC)
	return NewTaskService(zap.NewNop(), db, scheduler), scheduler, db
}

func TestCreateTaskRegistersWithScheduler(t *testing.T) {
	svc, scheduler, db := newTaskService(t)
	prompt, asset := seedPromptAndAsset(t, db)
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, TaskInput{
		AssetID:        asset.ID,
		PromptID:       prompt.ID,
		Cycle:          models.Cycle1h,
		CronExpression: "0 0 * * * *",
		IsActive:       true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, 1, scheduler.TaskCount())
}

func TestCreateTaskValidation(t *testing.T) {
	svc, _, db := newTaskService(t)
	prompt, asset := seedPromptAndAsset(t, db)
	ctx := context.Background()

	base := TaskInput{
		AssetID:        asset.ID,
		PromptID:       prompt.ID,
		Cycle:          models.Cycle1h,
		CronExpression: "0 0 * * * *",
		IsActive:       true,
	}

	in := base
	in.Cycle = "2h"
	_, err := svc.CreateTask(ctx, in)
	assert.ErrorIs(t, err, xe.ErrInvalidCycle)

	in = base
	in.CronExpression = "0 * * * *"
	_, err = svc.CreateTask(ctx, in)
	assert.ErrorIs(t, err, xe.ErrInvalidCron)

	in = base
	in.AssetID = "missing"
	_, err = svc.CreateTask(ctx, in)
	assert.ErrorIs(t, err, xe.ErrAssetNotFound)

	in = base
	in.PromptID = "missing"
	_, err = svc.CreateTask(ctx, in)
	assert.ErrorIs(t, err, xe.ErrPromptNotFound)
}

func TestSetTaskActiveSyncsScheduler(t *testing.T) {
	svc, scheduler, db := newTaskService(t)
	prompt, asset := seedPromptAndAsset(t, db)
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, TaskInput{
		AssetID: asset.ID, PromptID: prompt.ID, Cycle: models.Cycle15m,
		CronExpression: "0 */15 * * * *", IsActive: true,
	})
	require.NoError(t, err)
	require.Equal(t, 1, scheduler.TaskCount())

	require.NoError(t, svc.SetTaskActive(ctx, task.ID, false))
	assert.Equal(t, 0, scheduler.TaskCount())

	require.NoError(t, svc.SetTaskActive(ctx, task.ID, true))
	assert.Equal(t, 1, scheduler.TaskCount())
}

func TestDeleteTaskSyncsScheduler(t *testing.T) {
	svc, scheduler, db := newTaskService(t)
	prompt, asset := seedPromptAndAsset(t, db)
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, TaskInput{
		AssetID: asset.ID, PromptID: prompt.ID, Cycle: models.Cycle1h,
		CronExpression: "0 0 * * * *", IsActive: true,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTask(ctx, task.ID))
	assert.Equal(t, 0, scheduler.TaskCount())

	assert.ErrorIs(t, svc.DeleteTask(ctx, task.ID), xe.ErrTaskNotFound)
}

func TestDeleteAssetCascadesTasks(t *testing.T) {
	db := newTestDB(t)
	scheduler := newSchedulerService(zap.NewNop(), db, &recordingRunner{}, time.UTC)
	taskService := NewTaskService(zap.NewNop(), db, scheduler)
	assetService := NewAssetService(zap.NewNop(), db, scheduler)

	prompt, asset := seedPromptAndAsset(t, db)
	ctx := context.Background()

	_, err := taskService.CreateTask(ctx, TaskInput{
		AssetID: asset.ID, PromptID: prompt.ID, Cycle: models.Cycle1h,
		CronExpression: "0 0 * * * *", IsActive: true,
	})
	require.NoError(t, err)
	require.Equal(t, 1, scheduler.TaskCount())

	require.NoError(t, assetService.DeleteAsset(ctx, asset.ID))
	assert.Equal(t, 0, scheduler.TaskCount())

	var taskCount int64
	require.NoError(t, db.Model(&models.ScheduledTask{}).Count(&taskCount).Error)
	assert.Equal(t, int64(0), taskCount)
}

func TestTaskMutationSurfacesReloadFailure(t *testing.T) {
	db := newTestDB(t)
	prompt, asset := seedPromptAndAsset(t, db)

	// 调度器指向缺少表结构的库，Reload 必然失败
	brokenDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	scheduler := newSchedulerService(zap.NewNop(), brokenDB, &recordingRunner{}, time.UTC)
	svc := NewTaskService(zap.NewNop(), db, scheduler)

	_, err = svc.CreateTask(context.Background(), TaskInput{
		AssetID:        asset.ID,
		PromptID:       prompt.ID,
		Cycle:          models.Cycle1h,
		CronExpression: "0 0 * * * *",
		IsActive:       true,
	})
	require.Error(t, err)

	// 行已写入，但调用方被告知调度状态未同步
	var count int64
	require.NoError(t, db.Model(&models.ScheduledTask{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDeleteAssetSurfacesReloadFailure(t *testing.T) {
	db := newTestDB(t)
	_, asset := seedPromptAndAsset(t, db)

	brokenDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	scheduler := newSchedulerService(zap.NewNop(), brokenDB, &recordingRunner{}, time.UTC)
	assetService := NewAssetService(zap.NewNop(), db, scheduler)

	require.Error(t, assetService.DeleteAsset(context.Background(), asset.ID))
}

func TestCreateAssetDuplicateRejected(t *testing.T) {
	db := newTestDB(t)
	scheduler := newSchedulerService(zap.NewNop(), db, &recordingRunner{}, time.UTC)
	svc := NewAssetService(zap.NewNop(), db, scheduler)
	ctx := context.Background()

	first, err := svc.CreateAsset(ctx, "btcusdt", models.AssetTypeSpot)
	require.NoError(t, err)
	assert.Equal(t, "BTCUSDT", first.Symbol)

	_, err = svc.CreateAsset(ctx, "BTCUSDT", models.AssetTypeSpot)
	assert.ErrorIs(t, err, xe.ErrAssetExists)

	// 同符号不同类型允许共存
	_, err = svc.CreateAsset(ctx, "BTCUSDT", models.AssetTypeUsdFutures)
	require.NoError(t, err)
}
