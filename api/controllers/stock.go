package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kitstore/uniform-stock-backend/api/responses"
	"github.com/kitstore/uniform-stock-backend/api/validators"
	stocksvc "github.com/kitstore/uniform-stock-backend/internal/stock"
	pkgerrors "github.com/kitstore/uniform-stock-backend/pkg/errors"
	"github.com/kitstore/uniform-stock-backend/pkg/logger"
)

// CreateStockRecord handles stock record creation by the quartermaster.
func CreateStockRecord(svc stocksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stock service unavailable"))
			return
		}

		var payload createStockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.CreateRecord(r.Context(), stocksvc.CreateStockInput{
			Category:          payload.Category,
			ItemType:          payload.Type,
			Size:              payload.Size,
			Quantity:          payload.Quantity,
			LowStockThreshold: payload.LowStockThreshold,
			ImageURL:          payload.ImageURL,
			SizeChartURL:      payload.SizeChartURL,
			Price:             payload.Price,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, record)
	}
}

// UpdateStockRecord applies partial updates to one record; metadata
// fields fan out across the type's sizes.
func UpdateStockRecord(svc stocksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stock service unavailable"))
			return
		}

		id, err := parseStockID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateStockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.UpdateRecord(r.Context(), id, stocksvc.UpdateStockInput{
			Quantity:          payload.Quantity,
			LowStockThreshold: payload.LowStockThreshold,
			ImageURL:          payload.ImageURL,
			SizeChartURL:      payload.SizeChartURL,
			Price:             payload.Price,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

// DeleteStockRecord removes one record.
func DeleteStockRecord(svc stocksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stock service unavailable"))
			return
		}

		id, err := parseStockID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteRecord(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// GetStockRecord returns one record by ID.
func GetStockRecord(svc stocksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stock service unavailable"))
			return
		}

		id, err := parseStockID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.GetRecord(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

// ListStockRecords returns all records, optionally filtered by category.
func ListStockRecords(svc stocksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stock service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, 500)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		records, err := svc.ListRecords(r.Context(), r.URL.Query().Get("category"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if limit > 0 && len(records) > limit {
			records = records[:limit]
		}
		responses.WriteSuccess(w, records)
	}
}

// ListLowStockRecords returns records at or below their threshold.
func ListLowStockRecords(svc stocksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stock service unavailable"))
			return
		}

		records, err := svc.ListLowStock(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, records)
	}
}

func parseStockID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "stockID"))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid stock record id")
	}
	return id, nil
}

type createStockRequest struct {
	Category          string           `json:"category" validate:"required"`
	Type              string           `json:"type" validate:"required"`
	Size              string           `json:"size,omitempty"`
	Quantity          int              `json:"quantity" validate:"min=0"`
	LowStockThreshold int              `json:"low_stock_threshold,omitempty" validate:"omitempty,min=0"`
	ImageURL          *string          `json:"image_url,omitempty"`
	SizeChartURL      *string          `json:"size_chart_url,omitempty"`
	Price             *decimal.Decimal `json:"price,omitempty"`
}

type updateStockRequest struct {
	Quantity          *int             `json:"quantity,omitempty" validate:"omitempty,min=0"`
	LowStockThreshold *int             `json:"low_stock_threshold,omitempty" validate:"omitempty,min=0"`
	ImageURL          *string          `json:"image_url,omitempty"`
	SizeChartURL      *string          `json:"size_chart_url,omitempty"`
	Price             *decimal.Decimal `json:"price,omitempty"`
}
