package repo

import (
	"context"

	"github.com/YyItRoad/ai-trade/internal/models"
	"github.com/go-orz/orz"
	"gorm.io/gorm"
)

func NewAssetRepo(db *gorm.DB) *AssetRepo {
	return &AssetRepo{
		Repository: orz.NewRepository[models.Asset, string](db),
	}
}

type AssetRepo struct {
	orz.Repository[models.Asset, string]
}

// FindBySymbolAndType 根据交易对和资产类型查找资产
func (r AssetRepo) FindBySymbolAndType(ctx context.Context, symbol string, assetType models.AssetType) (m models.Asset, err error) {
	db := r.GetDB(ctx)
	err = db.Table(r.GetTableName()).
		Where("symbol = ? AND type = ?", symbol, assetType).
		First(&m).Error
	return m, err
}

// FindAllOrderBySymbol 按符号升序返回全部资产
func (r AssetRepo) FindAllOrderBySymbol(ctx context.Context) ([]models.Asset, error) {
	var assets []models.Asset
	db := r.GetDB(ctx)
	err := db.Table(r.GetTableName()).
		Order("symbol ASC").
		Find(&assets).Error
	return assets, err
}

// FindSymbols 返回全部资产符号，用于前端下拉框
func (r AssetRepo) FindSymbols(ctx context.Context) ([]string, error) {
	var symbols []string
	db := r.GetDB(ctx)
	err := db.Table(r.GetTableName()).
		Order("symbol ASC").
		Pluck("symbol", &symbols).Error
	return symbols, err
}
