package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kitstore/uniform-stock-backend/pkg/enums"
)

// StockRecord is one stock keeping unit, unique on (category, item type,
// size). Size is stored as the empty string for accessory-class items so
// the uniqueness constraint still applies.
type StockRecord struct {
	ID                uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Category          string            `gorm:"column:category;not null;uniqueIndex:idx_stock_triple,priority:1"`
	ItemType          string            `gorm:"column:item_type;not null;uniqueIndex:idx_stock_triple,priority:2"`
	Size              string            `gorm:"column:size;not null;default:'';uniqueIndex:idx_stock_triple,priority:3"`
	Quantity          int               `gorm:"column:quantity;not null;default:0"`
	Status            enums.StockStatus `gorm:"column:status;not null;default:'out_of_stock'"`
	LowStockThreshold int               `gorm:"column:low_stock_threshold;not null;default:5"`

	// Type-scoped metadata: all sizes of the same (category, item_type)
	// share these values.
	ImageURL     *string          `gorm:"column:image_url"`
	SizeChartURL *string          `gorm:"column:size_chart_url"`
	Price        *decimal.Decimal `gorm:"column:price;type:numeric(10,2)"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName implements the GORM table naming interface.
func (StockRecord) TableName() string {
	return "stock_records"
}
