package uniforms

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kitstore/uniform-stock-backend/internal/catalog"
	"github.com/kitstore/uniform-stock-backend/internal/stock"
	"github.com/kitstore/uniform-stock-backend/pkg/db"
	"github.com/kitstore/uniform-stock-backend/pkg/db/models"
	pkgerrors "github.com/kitstore/uniform-stock-backend/pkg/errors"
	"github.com/kitstore/uniform-stock-backend/pkg/logger"
	"github.com/kitstore/uniform-stock-backend/pkg/metrics"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

// Service exposes member uniform reconciliation.
type Service interface {
	UpdateMemberItems(ctx context.Context, memberID string, items []ItemInput) (*MemberUniformDTO, error)
	GetMemberItems(ctx context.Context, memberID string) (*MemberUniformDTO, error)
	DeleteMemberUniform(ctx context.Context, memberID string) error
}

type service struct {
	repo      Repository
	stockRepo stock.Repository
	dbClient  *db.Client
	logg      *logger.Logger
	metrics   *metrics.ReconcileMetrics
	now       func() time.Time
}

// NewService wires the member uniform service.
func NewService(repo Repository, stockRepo stock.Repository, dbClient *db.Client, logg *logger.Logger, m *metrics.ReconcileMetrics) Service {
	return &service{
		repo:      repo,
		stockRepo: stockRepo,
		dbClient:  dbClient,
		logg:      logg,
		metrics:   m,
		now:       time.Now,
	}
}

// UpdateMemberItems reconciles the submitted items against the
// member's stored collection and the stock ledger in one transaction:
// diff, stock mutation with read-back, status machine, and collection
// write all commit or roll back together.
func (s *service) UpdateMemberItems(ctx context.Context, memberID string, items []ItemInput) (*MemberUniformDTO, error) {
	if memberID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id is required")
	}
	normalized, err := normalizeInputs(items)
	if err != nil {
		return nil, err
	}

	start := s.now()
	var result *MemberUniformDTO
	var mode UpdateMode

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		txStock := s.stockRepo.WithTx(tx)
		locator := stock.NewLocator(txStock, s.logg, s.metrics)

		record, err := txRepo.FindByMemberID(ctx, memberID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load member uniform")
		}

		var stored []models.MemberUniformItem
		if record != nil {
			stored = record.Items
		}

		plan, err := BuildPlan(ctx, stored, normalized, locator)
		if err != nil {
			return err
		}
		mode = plan.Mode

		mutator := NewMutator(s.logg, s.metrics)
		if err := mutator.Apply(ctx, tx, plan); err != nil {
			return err
		}

		if record == nil {
			record, err = txRepo.Create(ctx, &models.MemberUniform{
				ID:       uuid.New(),
				MemberID: memberID,
			})
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: create member uniform")
			}
		}

		final := mergeItems(stored, normalized, plan, start)
		if err := txRepo.ReplaceItems(ctx, record.ID, final); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: replace member items")
		}
		if err := txRepo.Touch(ctx, record.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: touch member uniform")
		}

		record, err = txRepo.FindByMemberID(ctx, memberID)
		if err != nil || record == nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: reload member uniform")
		}
		result = toMemberUniformDTO(record)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveDuration(string(mode), s.now().Sub(start))
	if s.logg != nil {
		fields := s.logg.WithFields(ctx, map[string]any{
			"member_id": memberID,
			"mode":      string(mode),
			"items":     len(items),
		})
		s.logg.Info(fields, "member uniform reconciled")
	}
	return result, nil
}

func (s *service) GetMemberItems(ctx context.Context, memberID string) (*MemberUniformDTO, error) {
	record, err := s.repo.FindByMemberID(ctx, memberID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load member uniform")
	}
	if record == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "member has no uniform record")
	}
	return toMemberUniformDTO(record), nil
}

// DeleteMemberUniform wipes the member's record without restoring any
// stock: administrative deletion is not an item return.
func (s *service) DeleteMemberUniform(ctx context.Context, memberID string) error {
	rows, err := s.repo.DeleteByMemberID(ctx, memberID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete member uniform")
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "member has no uniform record")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithMemberID(ctx, memberID), "member uniform deleted")
	}
	return nil
}

// normalizeInputs validates the payload, normalizes every item to its
// canonical key, and rejects duplicate keys within one request.
func normalizeInputs(items []ItemInput) ([]normalizedItem, error) {
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "items cannot be empty")
	}

	var verr error
	for i, item := range items {
		if item.Category == "" {
			verr = multierr.Append(verr, fmt.Errorf("items[%d]: category is required", i))
		}
		if item.ItemType == "" {
			verr = multierr.Append(verr, fmt.Errorf("items[%d]: type is required", i))
		}
		if item.Quantity < 1 {
			verr = multierr.Append(verr, fmt.Errorf("items[%d]: quantity must be at least 1", i))
		}
		if !item.Status.IsValid() {
			verr = multierr.Append(verr, fmt.Errorf("items[%d]: invalid status %q", i, item.Status))
		}
		if item.MissingCount != nil && *item.MissingCount < 0 {
			verr = multierr.Append(verr, fmt.Errorf("items[%d]: missing_count cannot be negative", i))
		}
	}
	if verr != nil {
		details := make([]string, 0)
		for _, err := range multierr.Errors(verr) {
			details = append(details, err.Error())
		}
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid item payload").WithDetails(details)
	}

	normalized := make([]normalizedItem, 0, len(items))
	seen := make(map[string]bool, len(items))
	for i, item := range items {
		key := catalog.Normalize(item.Category, item.ItemType, item.Size)
		if seen[key.String()] {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("items[%d]: duplicate item key %s", i, key.String()))
		}
		seen[key.String()] = true
		normalized = append(normalized, normalizedItem{Key: key, Input: item})
	}
	return normalized, nil
}

// mergeItems assembles the member's final item rows: stored items kept
// per the update mode, submitted items written with canonical
// spellings and resolved status state.
func mergeItems(stored []models.MemberUniformItem, items []normalizedItem, plan *ReconcilePlan, now time.Time) []models.MemberUniformItem {
	index := indexItems(stored)
	newKeys := make(map[string]bool, len(items))
	for _, item := range items {
		newKeys[item.Key.String()] = true
	}

	final := make([]models.MemberUniformItem, 0, len(stored)+len(items))
	for keyString, prev := range index {
		if newKeys[keyString] || plan.Removed[keyString] {
			continue
		}
		if plan.Mode == ModeFullReplacement {
			continue
		}
		final = append(final, *prev)
	}

	for _, item := range items {
		keyString := item.Key.String()
		prev := index[keyString]
		transition := ResolveStatus(prev, item.Input.Status, item.Input.MissingCount, now)

		row := models.MemberUniformItem{
			ItemKey:      keyString,
			Category:     item.Key.Category,
			ItemType:     item.Key.ItemType,
			Size:         item.Key.Size,
			Quantity:     item.Input.Quantity,
			Status:       transition.Status,
			MissingCount: transition.MissingCount,
			ReceivedDate: transition.ReceivedDate,
		}
		if prev != nil {
			row.ID = prev.ID
			row.CreatedAt = prev.CreatedAt
			row.Color = prev.Color
			row.Notes = prev.Notes
		}
		if item.Input.Color != nil {
			row.Color = item.Input.Color
		}
		if item.Input.Notes != nil {
			row.Notes = item.Input.Notes
		}
		final = append(final, row)
	}

	return final
}
