package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// AssetType 资产类型 0: 现货, 1: U本位合约, 2: 币本位合约
type AssetType int

const (
	AssetTypeSpot        AssetType = 0
	AssetTypeUsdFutures  AssetType = 1
	AssetTypeCoinFutures AssetType = 2
)

// Label 返回资产类型的中文名称，用于提示词拼接
func (t AssetType) Label() string {
	switch t {
	case AssetTypeSpot:
		return "现货"
	case AssetTypeUsdFutures:
		return "U本位合约"
	case AssetTypeCoinFutures:
		return "币本位合约"
	default:
		return "未知"
	}
}

func (t AssetType) Valid() bool {
	return t >= AssetTypeSpot && t <= AssetTypeCoinFutures
}

// Scan 兼容旧数据：type 列可能以文本形式存储（"1" 或 "USD_M"）
func (t *AssetType) Scan(value interface{}) error {
	switch v := value.(type) {
	case int64:
		*t = AssetType(v)
		return nil
	case []byte, string:
		s := strings.TrimSpace(cast.ToString(v))
		switch strings.ToUpper(s) {
		case "SPOT":
			*t = AssetTypeSpot
		case "USD_M":
			*t = AssetTypeUsdFutures
		case "COIN_M":
			*t = AssetTypeCoinFutures
		default:
			n, err := cast.ToIntE(s)
			if err != nil {
				return fmt.Errorf("invalid asset type value: %v", value)
			}
			*t = AssetType(n)
		}
		return nil
	default:
		return fmt.Errorf("invalid asset type value: %v", value)
	}
}

func (t AssetType) Value() (driver.Value, error) {
	return int64(t), nil
}

// Asset 交易资产
type Asset struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Symbol    string    `gorm:"not null;uniqueIndex:idx_assets_symbol_type" json:"symbol"` // 交易对，如 BTCUSDT
	Type      AssetType `gorm:"not null;uniqueIndex:idx_assets_symbol_type" json:"type"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (Asset) TableName() string {
	return "assets"
}
