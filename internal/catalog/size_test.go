package catalog

import "testing"

func TestNormalizeSizeExact(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{" 6 3/4 ", "6 3/4"},
		{"6 5/8", "6 5/8"},
		{"7", "7"},
	}
	for _, tc := range cases {
		if got := NormalizeSize(SizePolicyExact, tc.in); got != tc.want {
			t.Fatalf("exact %q = %q, want %q", tc.in, got, tc.want)
		}
	}
	if SizesEqual(SizePolicyExact, "6 3/4", "6 5/8") {
		t.Fatal("distinct fractional sizes must not compare equal")
	}
}

func TestNormalizeSizePrefixed(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"UK 8", "8"},
		{"uk8", "8"},
		{"UK  10", "10"},
		{"9", "9"},
		{"tiada", ""},
	}
	for _, tc := range cases {
		if got := NormalizeSize(SizePolicyPrefixed, tc.in); got != tc.want {
			t.Fatalf("prefixed %q = %q, want %q", tc.in, got, tc.want)
		}
	}
	if !SizesEqual(SizePolicyPrefixed, "UK 8", "8") {
		t.Fatal("UK 8 and 8 must be the same footwear slot")
	}
}

func TestNormalizeSizeGeneral(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"xl", "XL"},
		{"  m ", "M"},
		{"2XL", "XXL"},
		{"2xl", "XXL"},
		{"3XL", "XXXL"},
		{"", ""},
		{"-", ""},
		{"N/A", ""},
		{"none", ""},
		{"Tiada", ""},
		{"Not Applicable", ""},
		{"38 Regular", "38 REGULAR"},
	}
	for _, tc := range cases {
		if got := NormalizeSize(SizePolicyGeneral, tc.in); got != tc.want {
			t.Fatalf("general %q = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSizeVariants(t *testing.T) {
	got := SizeVariants(SizePolicyPrefixed, "8")
	if len(got) != 2 || got[0] != "UK 8" || got[1] != "UK8" {
		t.Fatalf("prefixed variants = %v", got)
	}
	found := false
	for _, v := range SizeVariants(SizePolicyGeneral, "XXL") {
		if v == "2XL" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected 2XL as a variant of XXL")
	}
	if SizeVariants(SizePolicyExact, "6 3/4") != nil {
		t.Fatal("exact policy has no size variants")
	}
	if SizeVariants(SizePolicyGeneral, "") != nil {
		t.Fatal("no-size key has no variants")
	}
}
