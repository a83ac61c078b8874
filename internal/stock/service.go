package stock

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/kitstore/uniform-stock-backend/internal/catalog"
	"github.com/kitstore/uniform-stock-backend/pkg/db"
	"github.com/kitstore/uniform-stock-backend/pkg/db/models"
	"github.com/kitstore/uniform-stock-backend/pkg/enums"
	pkgerrors "github.com/kitstore/uniform-stock-backend/pkg/errors"
	"github.com/kitstore/uniform-stock-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service exposes stock record administration.
type Service interface {
	CreateRecord(ctx context.Context, input CreateStockInput) (*StockRecordDTO, error)
	UpdateRecord(ctx context.Context, id uuid.UUID, input UpdateStockInput) (*StockRecordDTO, error)
	DeleteRecord(ctx context.Context, id uuid.UUID) error
	GetRecord(ctx context.Context, id uuid.UUID) (*StockRecordDTO, error)
	ListRecords(ctx context.Context, category string) ([]StockRecordDTO, error)
	ListLowStock(ctx context.Context) ([]StockRecordDTO, error)
}

// CreateStockInput holds the validated payload to create a stock record.
type CreateStockInput struct {
	Category          string
	ItemType          string
	Size              string
	Quantity          int
	LowStockThreshold int
	ImageURL          *string
	SizeChartURL      *string
	Price             *decimal.Decimal
}

// UpdateStockInput carries partial updates; nil fields are untouched.
// Metadata fields fan out to every size row of the same type.
type UpdateStockInput struct {
	Quantity          *int
	LowStockThreshold *int
	ImageURL          *string
	SizeChartURL      *string
	Price             *decimal.Decimal
}

type service struct {
	repo     Repository
	dbClient *db.Client
	logg     *logger.Logger
}

// NewService wires the stock administration service.
func NewService(repo Repository, dbClient *db.Client, logg *logger.Logger) Service {
	return &service{repo: repo, dbClient: dbClient, logg: logg}
}

func (s *service) CreateRecord(ctx context.Context, input CreateStockInput) (*StockRecordDTO, error) {
	if input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	if input.LowStockThreshold < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "low_stock_threshold cannot be negative")
	}

	// Store the canonical spelling so new rows never need alias lookups.
	key := catalog.Normalize(input.Category, input.ItemType, input.Size)
	record := &models.StockRecord{
		ID:                uuid.New(),
		Category:          key.Category,
		ItemType:          key.ItemType,
		Size:              key.Size,
		Quantity:          input.Quantity,
		Status:            enums.DeriveStockStatus(input.Quantity, input.LowStockThreshold),
		LowStockThreshold: input.LowStockThreshold,
		ImageURL:          input.ImageURL,
		SizeChartURL:      input.SizeChartURL,
		Price:             input.Price,
	}

	created, err := s.repo.Create(ctx, record)
	if err != nil {
		if db.IsUniqueViolation(err, "idx_stock_triple") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "stock record already exists for this item")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert stock record")
	}
	return toStockRecordDTO(created), nil
}

func (s *service) UpdateRecord(ctx context.Context, id uuid.UUID, input UpdateStockInput) (*StockRecordDTO, error) {
	if input.Quantity != nil && *input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	if input.LowStockThreshold != nil && *input.LowStockThreshold < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "low_stock_threshold cannot be negative")
	}

	var updated *models.StockRecord
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		record, err := txRepo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "stock record not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load stock record")
		}

		if input.Quantity != nil {
			record.Quantity = *input.Quantity
		}
		if input.LowStockThreshold != nil {
			record.LowStockThreshold = *input.LowStockThreshold
		}
		record.Status = enums.DeriveStockStatus(record.Quantity, record.LowStockThreshold)
		if err := txRepo.Update(ctx, record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update stock record")
		}

		metadata := map[string]any{}
		if input.ImageURL != nil {
			metadata["image_url"] = *input.ImageURL
		}
		if input.SizeChartURL != nil {
			metadata["size_chart_url"] = *input.SizeChartURL
		}
		if input.Price != nil {
			metadata["price"] = *input.Price
		}
		if len(metadata) > 0 {
			if _, err := txRepo.UpdateTypeMetadata(ctx, record.Category, record.ItemType, metadata); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: fan out type metadata")
			}
			record, err = txRepo.FindByID(ctx, id)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: reload stock record")
			}
		}

		updated = record
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toStockRecordDTO(updated), nil
}

func (s *service) DeleteRecord(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "stock record not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load stock record")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete stock record")
	}
	return nil
}

func (s *service) GetRecord(ctx context.Context, id uuid.UUID) (*StockRecordDTO, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "stock record not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load stock record")
	}
	return toStockRecordDTO(record), nil
}

func (s *service) ListRecords(ctx context.Context, category string) ([]StockRecordDTO, error) {
	if category != "" {
		category = catalog.CanonicalCategory(category)
	}
	records, err := s.repo.List(ctx, category)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list stock records")
	}
	return toStockRecordDTOs(records), nil
}

func (s *service) ListLowStock(ctx context.Context) ([]StockRecordDTO, error) {
	records, err := s.repo.ListLowStock(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list low stock records")
	}
	return toStockRecordDTOs(records), nil
}
