package uniforms

import (
	"time"

	"github.com/kitstore/uniform-stock-backend/pkg/db/models"
	"github.com/kitstore/uniform-stock-backend/pkg/enums"
)

// ItemInput is one validated item descriptor from the update payload.
type ItemInput struct {
	Category     string
	ItemType     string
	Size         string
	Quantity     int
	Status       enums.ItemStatus
	MissingCount *int
	Color        *string
	Notes        *string
}

// MemberUniformDTO is the member's full resulting collection returned
// by the update and read endpoints.
type MemberUniformDTO struct {
	MemberID  string          `json:"member_id"`
	Items     []MemberItemDTO `json:"items"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// MemberItemDTO annotates one stored item with its resolved status.
// MissingCount is only reported while the item is missing and
// ReceivedDate only while it is available.
type MemberItemDTO struct {
	Category     string     `json:"category"`
	ItemType     string     `json:"type"`
	Size         string     `json:"size,omitempty"`
	Quantity     int        `json:"quantity"`
	Color        *string    `json:"color,omitempty"`
	Notes        *string    `json:"notes,omitempty"`
	Status       string     `json:"status"`
	MissingCount *int       `json:"missing_count,omitempty"`
	ReceivedDate *time.Time `json:"received_date,omitempty"`
}

func toMemberUniformDTO(record *models.MemberUniform) *MemberUniformDTO {
	dto := &MemberUniformDTO{
		MemberID:  record.MemberID,
		Items:     make([]MemberItemDTO, 0, len(record.Items)),
		UpdatedAt: record.UpdatedAt,
	}
	for i := range record.Items {
		dto.Items = append(dto.Items, toMemberItemDTO(&record.Items[i]))
	}
	return dto
}

func toMemberItemDTO(item *models.MemberUniformItem) MemberItemDTO {
	dto := MemberItemDTO{
		Category: item.Category,
		ItemType: item.ItemType,
		Size:     item.Size,
		Quantity: item.Quantity,
		Color:    item.Color,
		Notes:    item.Notes,
		Status:   string(item.Status),
	}
	switch item.Status {
	case enums.ItemStatusMissing:
		count := item.MissingCount
		dto.MissingCount = &count
	case enums.ItemStatusAvailable:
		dto.ReceivedDate = item.ReceivedDate
	}
	return dto
}
