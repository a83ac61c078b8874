package stock

import (
	"context"
	"fmt"

	"github.com/kitstore/uniform-stock-backend/internal/catalog"
	"github.com/kitstore/uniform-stock-backend/pkg/db/models"
	pkgerrors "github.com/kitstore/uniform-stock-backend/pkg/errors"
	"github.com/kitstore/uniform-stock-backend/pkg/logger"
	"github.com/kitstore/uniform-stock-backend/pkg/metrics"
)

// Locator matching strategies, tried in declaration order.
const (
	StrategyExact         = "exact"
	StrategyCategoryAlias = "category_alias"
	StrategyTypeAlias     = "type_alias"
	StrategySizeVariant   = "size_variant"
)

// Match is a resolved stock row plus the strategy that found it.
type Match struct {
	Record   *models.StockRecord
	Strategy string
}

// Locator resolves a canonical item key to a stock record, falling
// back through legacy spellings and size variants before giving up.
type Locator struct {
	repo    Repository
	logg    *logger.Logger
	metrics *metrics.ReconcileMetrics
}

// NewLocator builds a locator over the given repository. The metrics
// receiver may be nil.
func NewLocator(repo Repository, logg *logger.Logger, m *metrics.ReconcileMetrics) *Locator {
	return &Locator{repo: repo, logg: logg, metrics: m}
}

// WithTx rebinds the locator's repository to a transaction.
func (l *Locator) WithTx(repo Repository) *Locator {
	return &Locator{repo: repo, logg: l.logg, metrics: l.metrics}
}

// Locate runs the fallback chain for key. It returns a typed
// UNMATCHED_STOCK error carrying the searched key and the sizes that
// do exist for the type when every strategy misses.
func (l *Locator) Locate(ctx context.Context, key catalog.ItemKey) (*Match, error) {
	record, err := l.repo.FindByTriple(ctx, key.Category, key.ItemType, key.Size)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: stock lookup")
	}
	if record != nil {
		return l.matched(ctx, key, record, StrategyExact), nil
	}

	for _, legacyCategory := range catalog.LegacyCategoryNames(key.Category) {
		record, err = l.repo.FindByTriple(ctx, legacyCategory, key.ItemType, key.Size)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: stock lookup")
		}
		if record != nil {
			return l.matched(ctx, key, record, StrategyCategoryAlias), nil
		}
	}

	for _, legacyType := range catalog.LegacyTypeNames(key.ItemType) {
		record, err = l.repo.FindByTriple(ctx, key.Category, legacyType, key.Size)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: stock lookup")
		}
		if record != nil {
			return l.matched(ctx, key, record, StrategyTypeAlias), nil
		}
	}

	match, err := l.locateBySizeVariant(ctx, key)
	if err != nil {
		return nil, err
	}
	if match != nil {
		return match, nil
	}

	return nil, l.unmatched(ctx, key)
}

func (l *Locator) locateBySizeVariant(ctx context.Context, key catalog.ItemKey) (*Match, error) {
	for _, variant := range catalog.SizeVariants(key.Policy, key.Size) {
		record, err := l.repo.FindByTriple(ctx, key.Category, key.ItemType, variant)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: stock lookup")
		}
		if record != nil {
			return l.matched(ctx, key, record, StrategySizeVariant), nil
		}
	}
	if key.Policy == catalog.SizePolicyExact {
		return nil, nil
	}
	// Last resort: scan the type's rows and compare under the size
	// policy, catching stored spellings the variant list misses.
	rows, err := l.repo.ListByType(ctx, key.Category, key.ItemType)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: stock scan")
	}
	for i := range rows {
		if catalog.SizesEqual(key.Policy, rows[i].Size, key.Size) {
			return l.matched(ctx, key, &rows[i], StrategySizeVariant), nil
		}
	}
	return nil, nil
}

func (l *Locator) matched(ctx context.Context, key catalog.ItemKey, record *models.StockRecord, strategy string) *Match {
	l.metrics.IncLocatorMatch(strategy)
	if l.logg != nil && strategy != StrategyExact {
		ctx = l.logg.WithStockKey(ctx, key.String())
		ctx = l.logg.WithFields(ctx, map[string]any{
			"strategy":        strategy,
			"stock_record_id": record.ID.String(),
		})
		l.logg.Info(ctx, "stock record matched via fallback strategy")
	}
	return &Match{Record: record, Strategy: strategy}
}

func (l *Locator) unmatched(ctx context.Context, key catalog.ItemKey) error {
	available := l.availableKeys(ctx, key)
	if l.logg != nil {
		ctx = l.logg.WithStockKey(ctx, key.String())
		ctx = l.logg.WithFields(ctx, map[string]any{
			"available_keys": available,
		})
		l.logg.Warn(ctx, "no stock record matched")
	}
	return pkgerrors.New(pkgerrors.CodeUnmatchedStock,
		fmt.Sprintf("no stock record for %s", key.String())).
		WithDetails(map[string]any{
			"searched_key":   key.String(),
			"available_keys": available,
		})
}

// availableKeys lists the keys that do exist for the searched type, to
// make the rejection actionable. Best effort: lookup failures here
// must not mask the unmatched error.
func (l *Locator) availableKeys(ctx context.Context, key catalog.ItemKey) []string {
	rows, err := l.repo.ListByType(ctx, key.Category, key.ItemType)
	if err != nil || len(rows) == 0 {
		return nil
	}
	keys := make([]string, 0, len(rows))
	for _, row := range rows {
		keys = append(keys, catalog.Normalize(row.Category, row.ItemType, row.Size).String())
	}
	return keys
}
