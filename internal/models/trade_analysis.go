package models

import (
	"time"
)

// TradeAnalysis 行情分析结果，只追加不修改
type TradeAnalysis struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Asset      string    `gorm:"not null;index" json:"asset"` // 交易对符号
	Timestamp  time.Time `gorm:"not null;index" json:"timestamp"`
	PromptID   string    `gorm:"index;type:varchar(36)" json:"prompt_id"`
	Cycle      Cycle     `gorm:"size:8" json:"cycle"`
	Trend      string    `gorm:"size:32" json:"trend"`
	Confidence float64   `json:"confidence"`
	Conclusion string    `gorm:"type:text" json:"conclusion"`
	ExtraInfo  string    `gorm:"type:longtext" json:"extra_info"` // 模型返回的完整原始 JSON
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定表名
func (TradeAnalysis) TableName() string {
	return "trade_analysis"
}
