package controllers

import (
	"net/http"
	"strings"

	"github.com/kitstore/uniform-stock-backend/api/middleware"
	"github.com/kitstore/uniform-stock-backend/api/responses"
	"github.com/kitstore/uniform-stock-backend/api/validators"
	uniformsvc "github.com/kitstore/uniform-stock-backend/internal/uniforms"
	"github.com/kitstore/uniform-stock-backend/pkg/enums"
	pkgerrors "github.com/kitstore/uniform-stock-backend/pkg/errors"
	"github.com/kitstore/uniform-stock-backend/pkg/logger"
)

// UpdateMemberUniform handles the reconciling item update for one member.
func UpdateMemberUniform(svc uniformsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "uniform service unavailable"))
			return
		}

		memberID := middleware.MemberIDFromContext(r.Context())
		if memberID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "member id is required"))
			return
		}

		var payload updateUniformRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		inputs, err := payload.toInputs()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.UpdateMemberItems(r.Context(), memberID, inputs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// GetMemberUniform returns the member's current collection.
func GetMemberUniform(svc uniformsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "uniform service unavailable"))
			return
		}

		memberID := middleware.MemberIDFromContext(r.Context())
		if memberID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "member id is required"))
			return
		}

		result, err := svc.GetMemberItems(r.Context(), memberID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// DeleteMemberUniform wipes the member's record. No stock is restored.
func DeleteMemberUniform(svc uniformsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "uniform service unavailable"))
			return
		}

		memberID := middleware.MemberIDFromContext(r.Context())
		if memberID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "member id is required"))
			return
		}

		if err := svc.DeleteMemberUniform(r.Context(), memberID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type updateUniformRequest struct {
	Items []uniformItemRequest `json:"items" validate:"required,min=1,dive"`
}

type uniformItemRequest struct {
	Category     string  `json:"category" validate:"required"`
	Type         string  `json:"type" validate:"required"`
	Size         string  `json:"size,omitempty"`
	Quantity     int     `json:"quantity" validate:"required,min=1"`
	Status       string  `json:"status,omitempty"`
	MissingCount *int    `json:"missing_count,omitempty" validate:"omitempty,min=0"`
	Color        *string `json:"color,omitempty"`
	Notes        *string `json:"notes,omitempty"`
}

func (r updateUniformRequest) toInputs() ([]uniformsvc.ItemInput, error) {
	inputs := make([]uniformsvc.ItemInput, 0, len(r.Items))
	for _, item := range r.Items {
		status, err := enums.ParseItemStatus(strings.TrimSpace(item.Status))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		inputs = append(inputs, uniformsvc.ItemInput{
			Category:     item.Category,
			ItemType:     item.Type,
			Size:         item.Size,
			Quantity:     item.Quantity,
			Status:       status,
			MissingCount: item.MissingCount,
			Color:        sanitizeOptional(item.Color, 64),
			Notes:        sanitizeOptional(item.Notes, 500),
		})
	}
	return inputs, nil
}

func sanitizeOptional(value *string, maxLen int) *string {
	if value == nil {
		return nil
	}
	clean := validators.SanitizeString(*value, maxLen)
	return &clean
}
