package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/kitstore/uniform-stock-backend/pkg/enums"
)

// MemberUniform is the per-member uniform record. Exactly one exists per
// member; items hang off it as child rows.
type MemberUniform struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MemberID  string              `gorm:"column:member_id;not null;uniqueIndex"`
	Items     []MemberUniformItem `gorm:"foreignKey:UniformID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName implements the GORM table naming interface.
func (MemberUniform) TableName() string {
	return "member_uniforms"
}

// MemberUniformItem is one held item. ItemKey is the normalized
// category::type::size key; at most one row per key exists within a
// uniform record.
type MemberUniformItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UniformID uuid.UUID `gorm:"column:uniform_id;type:uuid;not null;uniqueIndex:idx_uniform_item_key,priority:1"`
	ItemKey   string    `gorm:"column:item_key;not null;uniqueIndex:idx_uniform_item_key,priority:2"`

	Category string `gorm:"column:category;not null"`
	ItemType string `gorm:"column:item_type;not null"`
	Size     string `gorm:"column:size;not null;default:''"`
	Quantity int    `gorm:"column:quantity;not null;default:1"`

	Color *string `gorm:"column:color"`
	Notes *string `gorm:"column:notes"`

	Status       enums.ItemStatus `gorm:"column:status;not null;default:'available'"`
	MissingCount int              `gorm:"column:missing_count;not null;default:0"`
	ReceivedDate *time.Time       `gorm:"column:received_date"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName implements the GORM table naming interface.
func (MemberUniformItem) TableName() string {
	return "member_uniform_items"
}
