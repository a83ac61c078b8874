package catalog

import "testing"

func TestCanonicalCategory(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Uniform No 3", "Uniform No 3"},
		{"cloth no 3", "Uniform No 3"},
		{"CLOTH NO 4", "Uniform No 4"},
		{"  t shirt ", "T-Shirt"},
		{"tshirt", "T-Shirt"},
		{"others", "Others"},
		{"Boots", "Boots"},
		{"Ceremonial   Kit", "Ceremonial Kit"},
	}
	for _, tc := range cases {
		if got := CanonicalCategory(tc.in); got != tc.want {
			t.Fatalf("CanonicalCategory(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCanonicalType(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"BAJU_NO_3_LELAKI", "Shirt No 3"},
		{"BAJU_NO_3_PEREMPUAN", "Shirt No 3"},
		{"baju no 4", "Shirt No 4"},
		{"Shirt No 3", "Shirt No 3"},
		{"shirt  no 3", "Shirt No 3"},
		{"PVC SHOES", "PVC Shoes"},
		{"name tag", "Nametag"},
		// Generic trailing qualifier stripped for unknown aliases,
		// but never from canonical "No <n>" names.
		{"Belt 2", "Belt"},
		{"Trousers No 4", "Trousers No 4"},
		{"Ceremonial Sash", "Ceremonial Sash"},
	}
	for _, tc := range cases {
		if got := CanonicalType(tc.in); got != tc.want {
			t.Fatalf("CanonicalType(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestPolicyForType(t *testing.T) {
	cases := []struct {
		in   string
		want SizePolicy
	}{
		{"Beret", SizePolicyExact},
		{"Boot", SizePolicyPrefixed},
		{"Shoes", SizePolicyPrefixed},
		{"PVC Shoes", SizePolicyPrefixed},
		{"Shirt No 3", SizePolicyGeneral},
		{"Nametag", SizePolicyGeneral},
		{"Unknown Thing", SizePolicyGeneral},
	}
	for _, tc := range cases {
		if got := PolicyForType(tc.in); got != tc.want {
			t.Fatalf("PolicyForType(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestIsCustomType(t *testing.T) {
	if !IsCustomType("Nametag") {
		t.Fatal("Nametag should be a custom type")
	}
	if IsCustomType("Beret") {
		t.Fatal("Beret should not be a custom type")
	}
}

func TestLegacyNamesExcludeCanonical(t *testing.T) {
	for _, legacy := range LegacyCategoryNames("Uniform No 3") {
		if CanonicalCategory(legacy) != "Uniform No 3" {
			t.Fatalf("legacy category %q does not round-trip", legacy)
		}
		if legacy == "uniform no 3" {
			t.Fatalf("canonical spelling listed as its own legacy name")
		}
	}
	if len(LegacyTypeNames("Shirt No 3")) == 0 {
		t.Fatal("expected legacy spellings for Shirt No 3")
	}
}
