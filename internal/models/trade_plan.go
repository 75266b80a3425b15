package models

import (
	"time"
)

// PlanDirection 交易方向
type PlanDirection string

const (
	DirectionLong  PlanDirection = "LONG"
	DirectionShort PlanDirection = "SHORT"
	DirectionNone  PlanDirection = "NONE"
)

// PlanStatus 交易计划状态，入库后唯一可变的字段
type PlanStatus string

const (
	PlanStatusActive    PlanStatus = "ACTIVE"
	PlanStatusExecuted  PlanStatus = "EXECUTED"
	PlanStatusCancelled PlanStatus = "CANCELLED"
	PlanStatusExpired   PlanStatus = "EXPIRED"
)

func (s PlanStatus) Valid() bool {
	switch s {
	case PlanStatusActive, PlanStatusExecuted, PlanStatusCancelled, PlanStatusExpired:
		return true
	}
	return false
}

// TradePlan 由分析结果派生的交易计划，analysis_id 指向父分析记录
type TradePlan struct {
	ID              string        `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Asset           string        `gorm:"not null;index" json:"asset"`
	Cycle           Cycle         `gorm:"size:8" json:"cycle"`
	Direction       PlanDirection `gorm:"size:8" json:"direction"`
	Confidence      float64       `json:"confidence"`
	EntryPrice      float64       `json:"entry_price"`
	StopLoss        float64       `json:"stop_loss"`
	TakeProfit1     float64       `json:"take_profit_1"`
	TakeProfit2     float64       `json:"take_profit_2"`
	RiskRewardRatio string        `gorm:"size:32" json:"risk_reward_ratio"`
	AnalysisID      string        `gorm:"not null;index;type:varchar(36)" json:"analysis_id"`
	PromptID        string        `gorm:"type:varchar(36)" json:"prompt_id"`
	ExtraInfo       string        `gorm:"type:longtext" json:"extra_info"`
	Status          PlanStatus    `gorm:"not null;size:16;index" json:"status"`
	CreatedAt       time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (TradePlan) TableName() string {
	return "trade_plan"
}
