package models

import (
	"time"
)

// Cycle 分析周期
type Cycle string

const (
	Cycle1m  Cycle = "1m"
	Cycle5m  Cycle = "5m"
	Cycle15m Cycle = "15m"
	Cycle1h  Cycle = "1h"
	Cycle4h  Cycle = "4h"
	Cycle1d  Cycle = "1d"
)

func (c Cycle) Valid() bool {
	switch c {
	case Cycle1m, Cycle5m, Cycle15m, Cycle1h, Cycle4h, Cycle1d:
		return true
	}
	return false
}

// ScheduledTask 定时分析任务，调度器的内存任务集是本表的派生缓存
type ScheduledTask struct {
	ID             string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	AssetID        string    `gorm:"not null;index;type:varchar(36)" json:"asset_id"`
	PromptID       string    `gorm:"not null;type:varchar(36)" json:"prompt_id"`
	Cycle          Cycle     `gorm:"not null;size:8" json:"cycle"`
	CronExpression string    `gorm:"not null;size:64" json:"cron_expression"` // 六段：秒 分 时 日 月 周
	IsActive       bool      `gorm:"index;not null;default:true" json:"is_active"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (ScheduledTask) TableName() string {
	return "scheduled_tasks"
}
