package catalog

import "strings"

// NormalizeSize applies the policy's canonical form to a raw size. The
// returned value is both the storage form and the comparison form for
// that policy; an empty string marks an unsized item.
func NormalizeSize(policy SizePolicy, raw string) string {
	switch policy {
	case SizePolicyExact:
		// Verbatim after trimming. "6 3/4" must not collide with
		// "6 5/8", so no case or whitespace folding beyond the edges.
		return strings.TrimSpace(raw)
	case SizePolicyPrefixed:
		trimmed := strings.TrimSpace(raw)
		if noSizeSentinels[strings.ToLower(trimmed)] {
			return ""
		}
		return strings.TrimSpace(ukPrefixRe.ReplaceAllString(trimmed, ""))
	default:
		folded := collapse(raw)
		if noSizeSentinels[strings.ToLower(folded)] {
			return ""
		}
		upper := strings.ToUpper(folded)
		if canonical, ok := clothSizeAliases[upper]; ok {
			return canonical
		}
		return upper
	}
}

// SizesEqual compares two raw sizes under the policy's rules.
func SizesEqual(policy SizePolicy, a, b string) bool {
	return NormalizeSize(policy, a) == NormalizeSize(policy, b)
}

// SizeVariants returns the alternative spellings of a canonical size
// that stored stock rows may still carry, excluding the canonical form
// itself. Used as a lookup fallback when the exact spelling misses.
func SizeVariants(policy SizePolicy, canonical string) []string {
	if canonical == "" {
		return nil
	}
	switch policy {
	case SizePolicyPrefixed:
		return []string{"UK " + canonical, "UK" + canonical}
	case SizePolicyGeneral:
		var variants []string
		for legacy, folded := range clothSizeAliases {
			if folded == canonical {
				variants = append(variants, legacy)
			}
		}
		lower := strings.ToLower(canonical)
		if lower != canonical {
			variants = append(variants, lower)
		}
		return variants
	default:
		return nil
	}
}
