package models

import (
	"strings"
	"time"
)

// PromptSeparator 提示词内容分隔符，之前是系统指令，之后是 JSON 结构说明
const PromptSeparator = "---JSON---"

// Prompt 提示词版本记录，同名提示词的版本号单调递增
type Prompt struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name      string    `gorm:"not null;uniqueIndex:idx_prompts_name_version" json:"name"`
	Version   int       `gorm:"not null;uniqueIndex:idx_prompts_name_version" json:"version"`
	Content   string    `gorm:"type:longtext;not null" json:"content"`
	IsActive  bool      `gorm:"index;not null;default:false" json:"is_active"` // 全局最多一条激活
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (Prompt) TableName() string {
	return "prompts"
}

// SplitContent 按分隔符拆分系统指令与 JSON 结构说明，无分隔符时后者为空
func (p *Prompt) SplitContent() (instruction string, jsonSpec string) {
	before, after, found := strings.Cut(p.Content, PromptSeparator)
	if !found {
		return strings.TrimSpace(p.Content), ""
	}
	return strings.TrimSpace(before), strings.TrimSpace(after)
}
