package catalog

import (
	"regexp"
	"strings"
)

// SizePolicy selects the type-specific size handling rules.
type SizePolicy string

const (
	// SizePolicyExact compares sizes verbatim after trimming. Used for
	// fractional headwear sizing where "6 3/4" and "6 5/8" must never
	// collide.
	SizePolicyExact SizePolicy = "exact"
	// SizePolicyPrefixed strips a leading UK unit token before
	// comparison. Used for footwear where "UK 8" and "8" are the same
	// slot.
	SizePolicyPrefixed SizePolicy = "prefixed"
	// SizePolicyGeneral folds case and whitespace and maps the no-size
	// sentinels onto a single marker.
	SizePolicyGeneral SizePolicy = "general"
)

// Static alias tables. These are versioned lookup data loaded once at
// process start, not runtime-mutable state; older clients still send
// the legacy spellings on the left.
var categoryAliases = map[string]string{
	"t shirt":      "T-Shirt",
	"tshirt":       "T-Shirt",
	"t-shirt":      "T-Shirt",
	"cloth no 3":   "Uniform No 3",
	"cloth no 4":   "Uniform No 4",
	"uniform no 3": "Uniform No 3",
	"uniform no 4": "Uniform No 4",
	"others":       "Others",
	"boots":        "Boots",
}

var typeAliases = map[string]string{
	"baju no 3 lelaki":    "Shirt No 3",
	"baju no 3 perempuan": "Shirt No 3",
	"baju no 3":           "Shirt No 3",
	"baju no 4":           "Shirt No 4",
	"shirt no 3":          "Shirt No 3",
	"shirt no 4":          "Shirt No 4",
	"trousers no 3":       "Trousers No 3",
	"trousers no 4":       "Trousers No 4",
	"beret":               "Beret",
	"boot":                "Boot",
	"shoes":               "Shoes",
	"pvc shoes":           "PVC Shoes",
	"hat":                 "Hat",
	"belt":                "Belt",
	"socks":               "Socks",
	"lanyard":             "Lanyard",
	"t-shirt":             "T-Shirt",
	"t shirt":             "T-Shirt",
	"tshirt":              "T-Shirt",
	"nametag":             "Nametag",
	"name tag":            "Nametag",
}

// exactMatchTypes compare sizes verbatim (fractional sizing).
var exactMatchTypes = map[string]bool{
	"beret": true,
}

// prefixedTypes accept a leading UK unit token on sizes.
var prefixedTypes = map[string]bool{
	"boot":      true,
	"shoes":     true,
	"pvc shoes": true,
}

// customTypes are ordered per member and bypass stock resolution
// entirely; the status machine still runs for them.
var customTypes = map[string]bool{
	"nametag": true,
}

// noSizeSentinels all normalize to the single no-size marker. "tiada"
// is the localized not-applicable token legacy clients still send.
var noSizeSentinels = map[string]bool{
	"":               true,
	"-":              true,
	"n/a":            true,
	"na":             true,
	"none":           true,
	"nil":            true,
	"tiada":          true,
	"not applicable": true,
}

// clothSizeAliases folds numeric XL spellings onto the letter forms.
var clothSizeAliases = map[string]string{
	"2XL": "XXL",
	"3XL": "XXXL",
}

var (
	whitespaceRe        = regexp.MustCompile(`\s+`)
	trailingQualifierRe = regexp.MustCompile(`\s+\d+$`)
	protectedSuffixRe   = regexp.MustCompile(`(?i)\bno\s+\d+$`)
	ukPrefixRe          = regexp.MustCompile(`^(?i)uk\s*`)
)

// categoryLegacyNames maps a canonical category to the legacy spellings
// that may still exist on stored stock records. Built once from the
// alias table.
var categoryLegacyNames = buildReverseAliases(categoryAliases)

// typeLegacyNames maps a canonical type to its legacy spellings.
var typeLegacyNames = buildReverseAliases(typeAliases)

func buildReverseAliases(aliases map[string]string) map[string][]string {
	reversed := make(map[string][]string)
	for legacy, canonical := range aliases {
		if strings.EqualFold(legacy, canonical) {
			continue
		}
		reversed[canonical] = append(reversed[canonical], legacy)
	}
	return reversed
}

func fold(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	value = strings.ReplaceAll(value, "_", " ")
	return whitespaceRe.ReplaceAllString(value, " ")
}

func collapse(value string) string {
	return whitespaceRe.ReplaceAllString(strings.TrimSpace(value), " ")
}

// CanonicalCategory maps a raw category to its canonical display name.
// Unknown categories pass through trimmed and whitespace-collapsed.
func CanonicalCategory(raw string) string {
	folded := fold(raw)
	if canonical, ok := categoryAliases[folded]; ok {
		return canonical
	}
	return collapse(raw)
}

// CanonicalType maps a raw type to its canonical display name. The
// alias table is consulted before the generic trailing-qualifier rule
// so canonical names like "Shirt No 3" are never corrupted by it.
func CanonicalType(raw string) string {
	folded := fold(raw)
	if canonical, ok := typeAliases[folded]; ok {
		return canonical
	}
	if !protectedSuffixRe.MatchString(folded) {
		stripped := strings.TrimSpace(trailingQualifierRe.ReplaceAllString(folded, ""))
		if canonical, ok := typeAliases[stripped]; ok {
			return canonical
		}
	}
	return collapse(raw)
}

// PolicyForType classifies a canonical type into its size policy.
func PolicyForType(canonicalType string) SizePolicy {
	folded := fold(canonicalType)
	switch {
	case exactMatchTypes[folded]:
		return SizePolicyExact
	case prefixedTypes[folded]:
		return SizePolicyPrefixed
	default:
		return SizePolicyGeneral
	}
}

// IsCustomType reports whether the type is ordered per member and
// exempt from stock resolution.
func IsCustomType(canonicalType string) bool {
	return customTypes[fold(canonicalType)]
}

// LegacyCategoryNames returns the deprecated spellings for a canonical
// category, for backward-compatible stock lookups.
func LegacyCategoryNames(canonical string) []string {
	return categoryLegacyNames[canonical]
}

// LegacyTypeNames returns the deprecated spellings for a canonical type.
func LegacyTypeNames(canonical string) []string {
	return typeLegacyNames[canonical]
}
