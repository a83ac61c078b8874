package enums

import (
	"fmt"
	"strings"
)

// ItemStatus tracks whether a member physically holds an issued item.
type ItemStatus string

const (
	ItemStatusAvailable    ItemStatus = "available"
	ItemStatusNotAvailable ItemStatus = "not_available"
	ItemStatusMissing      ItemStatus = "missing"
)

var validItemStatuses = []ItemStatus{
	ItemStatusAvailable,
	ItemStatusNotAvailable,
	ItemStatusMissing,
}

// String implements fmt.Stringer.
func (s ItemStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ItemStatus.
func (s ItemStatus) IsValid() bool {
	for _, candidate := range validItemStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseItemStatus converts raw input into an ItemStatus. Empty input
// defaults to available, matching the update endpoint contract.
// Matching is case-insensitive and accepts the spaced legacy spelling
// of not_available.
func ParseItemStatus(value string) (ItemStatus, error) {
	if value == "" {
		return ItemStatusAvailable, nil
	}
	folded := strings.ReplaceAll(strings.ToLower(value), " ", "_")
	for _, candidate := range validItemStatuses {
		if string(candidate) == folded {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item status %q", value)
}

// HoldsStock reports whether the status represents physical possession.
// Stock is only deducted for items the member actually holds.
func (s ItemStatus) HoldsStock() bool {
	return s == ItemStatusAvailable
}
