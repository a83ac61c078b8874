package uniforms

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/kitstore/uniform-stock-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists member uniform collections.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByMemberID(ctx context.Context, memberID string) (*models.MemberUniform, error)
	Create(ctx context.Context, record *models.MemberUniform) (*models.MemberUniform, error)
	ReplaceItems(ctx context.Context, uniformID uuid.UUID, items []models.MemberUniformItem) error
	Touch(ctx context.Context, uniformID uuid.UUID) error
	DeleteByMemberID(ctx context.Context, memberID string) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a uniforms repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// FindByMemberID loads the member's collection with items. A missing
// record returns (nil, nil); first assignment creates it lazily.
func (r *repository) FindByMemberID(ctx context.Context, memberID string) (*models.MemberUniform, error) {
	var record models.MemberUniform
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("item_key ASC")
		}).
		Where("member_id = ?", memberID).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) Create(ctx context.Context, record *models.MemberUniform) (*models.MemberUniform, error) {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// ReplaceItems swaps the collection's item rows for the given set.
func (r *repository) ReplaceItems(ctx context.Context, uniformID uuid.UUID, items []models.MemberUniformItem) error {
	if err := r.db.WithContext(ctx).
		Where("uniform_id = ?", uniformID).
		Delete(&models.MemberUniformItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].UniformID = uniformID
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) Touch(ctx context.Context, uniformID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.MemberUniform{}).
		Where("id = ?", uniformID).
		Update("updated_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
}

// DeleteByMemberID removes the member's collection and its items. No
// stock is restored: deletion is an administrative record wipe, not an
// item return.
func (r *repository) DeleteByMemberID(ctx context.Context, memberID string) (int64, error) {
	var record models.MemberUniform
	err := r.db.WithContext(ctx).Where("member_id = ?", memberID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if err := r.db.WithContext(ctx).
		Where("uniform_id = ?", record.ID).
		Delete(&models.MemberUniformItem{}).Error; err != nil {
		return 0, err
	}
	result := r.db.WithContext(ctx).Delete(&models.MemberUniform{}, "id = ?", record.ID)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
