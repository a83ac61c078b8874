package uniforms

import (
	"context"
	"fmt"

	"github.com/kitstore/uniform-stock-backend/pkg/db/models"
	"github.com/kitstore/uniform-stock-backend/pkg/enums"
	pkgerrors "github.com/kitstore/uniform-stock-backend/pkg/errors"
	"github.com/kitstore/uniform-stock-backend/pkg/logger"
	"github.com/kitstore/uniform-stock-backend/pkg/metrics"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Mutator applies a reconcile plan's stock changes inside the caller's
// transaction. Restores run before deductions so a size swap against a
// single shared record nets correctly.
type Mutator struct {
	logg    *logger.Logger
	metrics *metrics.ReconcileMetrics
}

// NewMutator builds a stock mutator. Both receivers may be nil in tests.
func NewMutator(logg *logger.Logger, m *metrics.ReconcileMetrics) *Mutator {
	return &Mutator{logg: logg, metrics: m}
}

// Apply executes every scheduled change. Any error aborts the caller's
// transaction; partial application is never visible outside it.
func (m *Mutator) Apply(ctx context.Context, tx *gorm.DB, plan *ReconcilePlan) error {
	for _, change := range plan.Restores {
		if err := m.applyDelta(ctx, tx, change, change.Amount); err != nil {
			return err
		}
		m.metrics.AddRestored(change.Key.Category, change.Amount)
	}
	for _, change := range plan.Deducts {
		if err := m.applyDelta(ctx, tx, change, -change.Amount); err != nil {
			return err
		}
		m.metrics.AddDeducted(change.Key.Category, change.Amount)
	}
	return nil
}

// applyDelta mutates one record by a signed delta, floors the result
// at zero, recomputes the stock-level status, and verifies the write
// with a read-back.
//
// Deltas, never absolute overwrites: a concurrent admin stock edit
// committed between our read and write shifts the result by its own
// delta instead of being lost. Over-deduction floors at zero rather
// than failing; physical counts drift from logical records and the
// member still walks away with the item.
func (m *Mutator) applyDelta(ctx context.Context, tx *gorm.DB, change StockChange, delta int) error {
	query := tx.WithContext(ctx)
	if tx.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var record models.StockRecord
	if err := query.First(&record, "id = ?", change.Record.ID).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: lock stock record")
	}

	applied := delta
	if record.Quantity+applied < 0 {
		applied = -record.Quantity
	}
	expected := record.Quantity + applied
	status := enums.DeriveStockStatus(expected, record.LowStockThreshold)

	err := tx.WithContext(ctx).
		Model(&models.StockRecord{}).
		Where("id = ?", record.ID).
		Updates(map[string]any{
			"quantity": gorm.Expr("quantity + ?", applied),
			"status":   status,
		}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: apply stock delta")
	}

	var verified models.StockRecord
	if err := tx.WithContext(ctx).First(&verified, "id = ?", record.ID).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: read back stock record")
	}
	if verified.Quantity != expected {
		m.metrics.IncConsistencyFault()
		if m.logg != nil {
			fields := m.logg.WithFields(ctx, map[string]any{
				"stock_key":       change.Key.String(),
				"stock_record_id": record.ID.String(),
				"quantity_before": record.Quantity,
				"quantity_after":  verified.Quantity,
				"expected":        expected,
				"delta":           delta,
			})
			m.logg.Error(fields, "stock read-back verification failed", nil)
		}
		return pkgerrors.New(pkgerrors.CodeConsistency,
			fmt.Sprintf("stock read-back mismatch for %s: expected %d, found %d",
				change.Key.String(), expected, verified.Quantity))
	}

	return nil
}
