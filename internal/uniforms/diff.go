package uniforms

import (
	"context"
	"fmt"
	"strings"

	"github.com/kitstore/uniform-stock-backend/internal/catalog"
	"github.com/kitstore/uniform-stock-backend/internal/stock"
	"github.com/kitstore/uniform-stock-backend/pkg/db/models"
	pkgerrors "github.com/kitstore/uniform-stock-backend/pkg/errors"
)

// UpdateMode classifies how an incoming item list relates to the
// member's stored collection.
type UpdateMode string

const (
	// ModeSingleItem updates one key and preserves every other stored
	// item untouched.
	ModeSingleItem UpdateMode = "single_item"
	// ModePartialMerge compares only the keys present in the payload;
	// absent keys are preserved, not restored.
	ModePartialMerge UpdateMode = "partial_merge"
	// ModeFullReplacement treats the payload as the member's complete
	// collection; stored keys absent from it are restored to stock and
	// removed.
	ModeFullReplacement UpdateMode = "full_replacement"
)

// A payload covering at least this share of the member's stored keys
// is treated as a full replacement.
const replacementCoverageThreshold = 0.8

// StockResolver locates the stock record backing an item key.
type StockResolver interface {
	Locate(ctx context.Context, key catalog.ItemKey) (*stock.Match, error)
}

// StockChange is one scheduled quantity mutation against a resolved
// stock record. Amount is always positive; direction comes from the
// set it belongs to.
type StockChange struct {
	Key      catalog.ItemKey
	Record   *models.StockRecord
	Amount   int
	Strategy string
}

// ReconcilePlan is the diff output: disjoint restore and deduct sets
// plus the detected update mode. Removed holds the keys dropped from
// the stored collection by this update.
type ReconcilePlan struct {
	Mode     UpdateMode
	Restores []StockChange
	Deducts  []StockChange
	Removed  map[string]bool
}

// normalizedItem pairs a submitted item with its canonical key.
type normalizedItem struct {
	Key   catalog.ItemKey
	Input ItemInput
}

// indexItems builds the stored collection's key index. Stored rows are
// re-normalized so records written before an alias-table change still
// land on current keys.
func indexItems(items []models.MemberUniformItem) map[string]*models.MemberUniformItem {
	index := make(map[string]*models.MemberUniformItem, len(items))
	for i := range items {
		key := catalog.Normalize(items[i].Category, items[i].ItemType, items[i].Size)
		index[key.String()] = &items[i]
	}
	return index
}

func detectMode(index map[string]*models.MemberUniformItem, items []normalizedItem) UpdateMode {
	if len(items) == 1 {
		return ModeSingleItem
	}
	if len(index) == 0 {
		return ModePartialMerge
	}
	covered := 0
	for _, item := range items {
		if _, ok := index[item.Key.String()]; ok {
			covered++
		}
	}
	if float64(covered)/float64(len(index)) >= replacementCoverageThreshold {
		return ModeFullReplacement
	}
	return ModePartialMerge
}

// BuildPlan classifies the changes between the stored collection and
// the incoming items into restore and deduct sets. It resolves every
// affected key through the locator and verifies each resolution before
// scheduling a mutation.
func BuildPlan(ctx context.Context, stored []models.MemberUniformItem, items []normalizedItem, resolver StockResolver) (*ReconcilePlan, error) {
	index := indexItems(stored)
	plan := &ReconcilePlan{
		Mode:    detectMode(index, items),
		Removed: make(map[string]bool),
	}

	newKeys := make(map[string]bool, len(items))
	for _, item := range items {
		newKeys[item.Key.String()] = true
	}

	switch plan.Mode {
	case ModeFullReplacement:
		for keyString, item := range index {
			if newKeys[keyString] {
				continue
			}
			plan.Removed[keyString] = true
			if err := scheduleRemoval(ctx, plan, item, resolver); err != nil {
				return nil, err
			}
		}
	case ModeSingleItem:
		// A size change arrives as a new key plus an implicit drop of
		// the old size. Only an unambiguous same-type sibling is
		// treated as the replaced entry.
		item := items[0]
		if _, exists := index[item.Key.String()]; !exists && !item.Key.Custom {
			if sibling, keyString := soleTypeSibling(index, item.Key); sibling != nil {
				plan.Removed[keyString] = true
				if err := scheduleRemoval(ctx, plan, sibling, resolver); err != nil {
					return nil, err
				}
			}
		}
	}

	for _, item := range items {
		if item.Key.Custom {
			continue
		}
		oldQty := 0
		prevHeld := false
		if prev, ok := index[item.Key.String()]; ok {
			oldQty = prev.Quantity
			prevHeld = prev.Status.HoldsStock()
		}
		switch {
		case item.Input.Quantity > oldQty:
			// Status gate: items the member has not physically taken
			// are stored without touching stock.
			if !item.Input.Status.HoldsStock() {
				continue
			}
			change, err := resolveChange(ctx, item.Key, item.Input.Quantity-oldQty, resolver)
			if err != nil {
				return nil, err
			}
			plan.Deducts = append(plan.Deducts, *change)
		case item.Input.Quantity < oldQty:
			// Units that were never deducted cannot be returned.
			if !prevHeld {
				continue
			}
			change, err := resolveChange(ctx, item.Key, oldQty-item.Input.Quantity, resolver)
			if err != nil {
				return nil, err
			}
			plan.Restores = append(plan.Restores, *change)
		}
	}

	return plan, nil
}

// scheduleRemoval restores the full stored quantity of an item being
// dropped from the collection, subject to the held-status gate.
func scheduleRemoval(ctx context.Context, plan *ReconcilePlan, item *models.MemberUniformItem, resolver StockResolver) error {
	key := catalog.Normalize(item.Category, item.ItemType, item.Size)
	if key.Custom || !item.Status.HoldsStock() || item.Quantity <= 0 {
		return nil
	}
	change, err := resolveChange(ctx, key, item.Quantity, resolver)
	if err != nil {
		return err
	}
	plan.Restores = append(plan.Restores, *change)
	return nil
}

func resolveChange(ctx context.Context, key catalog.ItemKey, amount int, resolver StockResolver) (*StockChange, error) {
	match, err := resolver.Locate(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := verifyResolution(key, match.Record); err != nil {
		return nil, err
	}
	return &StockChange{
		Key:      key,
		Record:   match.Record,
		Amount:   amount,
		Strategy: match.Strategy,
	}, nil
}

// verifyResolution asserts the resolved record re-normalizes to the
// searched key: category, type, and size under the type's policy. A
// fallback strategy that drifted onto a different record fails here
// instead of mutating the wrong row.
func verifyResolution(key catalog.ItemKey, record *models.StockRecord) error {
	resolved := catalog.Normalize(record.Category, record.ItemType, record.Size)
	if resolved.String() != key.String() {
		return pkgerrors.New(pkgerrors.CodeConsistency,
			fmt.Sprintf("stock resolution mismatch: searched %s, resolved %s", key.String(), resolved.String()))
	}
	return nil
}

// soleTypeSibling returns the single stored item sharing the key's
// category and type under a different size, or nil when zero or
// several candidates exist.
func soleTypeSibling(index map[string]*models.MemberUniformItem, key catalog.ItemKey) (*models.MemberUniformItem, string) {
	prefix := strings.ToLower(key.Category) + "::" + strings.ToLower(key.ItemType) + "::"
	var found *models.MemberUniformItem
	var foundKey string
	for keyString, item := range index {
		if !strings.HasPrefix(keyString, prefix) {
			continue
		}
		if found != nil {
			return nil, ""
		}
		found = item
		foundKey = keyString
	}
	return found, foundKey
}
