package stock

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/kitstore/uniform-stock-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists stock records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, record *models.StockRecord) (*models.StockRecord, error)
	Update(ctx context.Context, record *models.StockRecord) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.StockRecord, error)
	FindByTriple(ctx context.Context, category, itemType, size string) (*models.StockRecord, error)
	ListByType(ctx context.Context, category, itemType string) ([]models.StockRecord, error)
	List(ctx context.Context, category string) ([]models.StockRecord, error)
	ListLowStock(ctx context.Context) ([]models.StockRecord, error)
	UpdateTypeMetadata(ctx context.Context, category, itemType string, updates map[string]any) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a stock repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, record *models.StockRecord) (*models.StockRecord, error) {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

func (r *repository) Update(ctx context.Context, record *models.StockRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.StockRecord{}, "id = ?", id).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.StockRecord, error) {
	var record models.StockRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// FindByTriple matches category and type case-insensitively and size
// exactly. A miss returns (nil, nil) so callers can chain fallback
// lookups without unwrapping driver errors.
func (r *repository) FindByTriple(ctx context.Context, category, itemType, size string) (*models.StockRecord, error) {
	var record models.StockRecord
	err := r.db.WithContext(ctx).
		Where("LOWER(category) = ? AND LOWER(item_type) = ? AND size = ?",
			strings.ToLower(strings.TrimSpace(category)),
			strings.ToLower(strings.TrimSpace(itemType)),
			size).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) ListByType(ctx context.Context, category, itemType string) ([]models.StockRecord, error) {
	var records []models.StockRecord
	err := r.db.WithContext(ctx).
		Where("LOWER(category) = ? AND LOWER(item_type) = ?",
			strings.ToLower(strings.TrimSpace(category)),
			strings.ToLower(strings.TrimSpace(itemType))).
		Order("size ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repository) List(ctx context.Context, category string) ([]models.StockRecord, error) {
	query := r.db.WithContext(ctx)
	if category != "" {
		query = query.Where("LOWER(category) = ?", strings.ToLower(strings.TrimSpace(category)))
	}
	var records []models.StockRecord
	if err := query.Order("category ASC, item_type ASC, size ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repository) ListLowStock(ctx context.Context) ([]models.StockRecord, error) {
	var records []models.StockRecord
	err := r.db.WithContext(ctx).
		Where("quantity <= low_stock_threshold").
		Order("quantity ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// UpdateTypeMetadata fans metadata shared across a type (image, size
// chart, price) out to every size row of that type.
func (r *repository) UpdateTypeMetadata(ctx context.Context, category, itemType string, updates map[string]any) (int64, error) {
	if len(updates) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.StockRecord{}).
		Where("LOWER(category) = ? AND LOWER(item_type) = ?",
			strings.ToLower(strings.TrimSpace(category)),
			strings.ToLower(strings.TrimSpace(itemType))).
		Updates(updates)
	return result.RowsAffected, result.Error
}
