package catalog

import "strings"

// ItemKey is the canonical identity of a uniform item. Category and
// ItemType hold the canonical display names; Size holds the canonical
// storage form ("" when unsized).
type ItemKey struct {
	Category string
	ItemType string
	Size     string
	Policy   SizePolicy
	Custom   bool
}

// Normalize builds the canonical key for a raw category/type/size
// triple as submitted by a client or read back from storage.
func Normalize(category, itemType, size string) ItemKey {
	canonicalType := CanonicalType(itemType)
	policy := PolicyForType(canonicalType)
	return ItemKey{
		Category: CanonicalCategory(category),
		ItemType: canonicalType,
		Size:     NormalizeSize(policy, size),
		Policy:   policy,
		Custom:   IsCustomType(canonicalType),
	}
}

// String renders the comparison key. Category and type segments fold
// case; the size segment follows the policy (exact sizes keep their
// case, so distinct fractional spellings stay distinct).
func (k ItemKey) String() string {
	return strings.ToLower(k.Category) + "::" + strings.ToLower(k.ItemType) + "::" + k.Size
}

// Sized reports whether the key carries a size segment.
func (k ItemKey) Sized() bool {
	return k.Size != ""
}
