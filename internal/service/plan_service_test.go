package service

import (
	"context"
	"testing"

	"github.com/YyItRoad/ai-trade/internal/models"
	"github.com/YyItRoad/ai-trade/internal/xe"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func seedPlan(t *testing.T, db *gorm.DB, asset string) models.TradePlan {
	t.Helper()
	plan := models.TradePlan{
		ID:        ulid.Make().String(),
		Asset:     asset,
		Cycle:     models.Cycle1h,
		Direction: models.DirectionLong,
		Status:    models.PlanStatusActive,
	}
	require.NoError(t, db.Create(&plan).Error)
	return plan
}

func TestUpdatePlanStatus(t *testing.T) {
	db := newTestDB(t)
	svc := NewPlanService(zap.NewNop(), db)
	plan := seedPlan(t, db, "BTCUSDT")
	ctx := context.Background()

	require.NoError(t, svc.UpdatePlanStatus(ctx, plan.ID, models.PlanStatusExecuted))

	var got models.TradePlan
	require.NoError(t, db.First(&got, "id = ?", plan.ID).Error)
	assert.Equal(t, models.PlanStatusExecuted, got.Status)
}

func TestUpdatePlanStatusInvalid(t *testing.T) {
	db := newTestDB(t)
	svc := NewPlanService(zap.NewNop(), db)
	plan := seedPlan(t, db, "BTCUSDT")

	err := svc.UpdatePlanStatus(context.Background(), plan.ID, "RUNNING")
	assert.ErrorIs(t, err, xe.ErrInvalidPlanStatus)
}

func TestUpdatePlanStatusNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewPlanService(zap.NewNop(), db)

	err := svc.UpdatePlanStatus(context.Background(), "missing", models.PlanStatusCancelled)
	assert.ErrorIs(t, err, xe.ErrPlanNotFound)
}

func TestFindPlanPageFilterByAsset(t *testing.T) {
	db := newTestDB(t)
	svc := NewPlanService(zap.NewNop(), db)
	ctx := context.Background()

	seedPlan(t, db, "BTCUSDT")
	seedPlan(t, db, "BTCUSDT")
	seedPlan(t, db, "ETHUSDT")

	plans, total, err := svc.FindPlanPage(ctx, 1, 10, "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, plans, 2)

	all, total, err := svc.FindPlanPage(ctx, 1, 2, "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 2)
}
