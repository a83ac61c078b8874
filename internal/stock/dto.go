package stock

import (
	"time"

	"github.com/google/uuid"
	"github.com/kitstore/uniform-stock-backend/pkg/db/models"
	"github.com/shopspring/decimal"
)

// StockRecordDTO is the stock record payload returned to clients.
type StockRecordDTO struct {
	ID                uuid.UUID        `json:"id"`
	Category          string           `json:"category"`
	ItemType          string           `json:"item_type"`
	Size              string           `json:"size,omitempty"`
	Quantity          int              `json:"quantity"`
	Status            string           `json:"status"`
	LowStockThreshold int              `json:"low_stock_threshold"`
	ImageURL          *string          `json:"image_url,omitempty"`
	SizeChartURL      *string          `json:"size_chart_url,omitempty"`
	Price             *decimal.Decimal `json:"price,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

func toStockRecordDTO(record *models.StockRecord) *StockRecordDTO {
	return &StockRecordDTO{
		ID:                record.ID,
		Category:          record.Category,
		ItemType:          record.ItemType,
		Size:              record.Size,
		Quantity:          record.Quantity,
		Status:            string(record.Status),
		LowStockThreshold: record.LowStockThreshold,
		ImageURL:          record.ImageURL,
		SizeChartURL:      record.SizeChartURL,
		Price:             record.Price,
		CreatedAt:         record.CreatedAt,
		UpdatedAt:         record.UpdatedAt,
	}
}

func toStockRecordDTOs(records []models.StockRecord) []StockRecordDTO {
	dtos := make([]StockRecordDTO, 0, len(records))
	for i := range records {
		dtos = append(dtos, *toStockRecordDTO(&records[i]))
	}
	return dtos
}
