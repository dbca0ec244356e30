package validate

import (
	"testing"

	"campusmarket/internal/domain"
)

func TestEduEmail(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"alex.johnson@nyu.edu", true},
		{"  Sarah@MIT.EDU ", true},
		{"someone@gmail.com", false},
		{"edu@example.com", false},
		{"not-an-email.edu", false},
		{"", false},
	}
	for _, tt := range tests {
		if _, ok := EduEmail(tt.in); ok != tt.want {
			t.Errorf("EduEmail(%q) = %v, want %v", tt.in, ok, tt.want)
		}
	}
}

func TestPassword(t *testing.T) {
	if !Password("Passw0rd!") {
		t.Fatal("strong password rejected")
	}
	for _, p := range []string{"short1!", "alllowercase1!", "NoDigits!!", "NoSymbol123"} {
		if Password(p) {
			t.Errorf("weak password %q accepted", p)
		}
	}
}

func TestOptionalPrice(t *testing.T) {
	if p, ok := OptionalPrice(""); !ok || p != nil {
		t.Fatalf("empty bound should be unbounded, got %v %v", p, ok)
	}
	if p, ok := OptionalPrice("25"); !ok || p == nil || *p != 25 {
		t.Fatalf("want 25, got %v %v", p, ok)
	}
	if _, ok := OptionalPrice("-3"); ok {
		t.Fatal("negative bound accepted")
	}
	if _, ok := OptionalPrice("abc"); ok {
		t.Fatal("garbage bound accepted")
	}
}

func TestListingType(t *testing.T) {
	if s, ok := ListingType(""); !ok || s != "sell" {
		t.Fatalf("empty type should default to sell, got %q", s)
	}
	if s, ok := ListingType("RENT"); !ok || s != "rent" {
		t.Fatalf("want rent, got %q %v", s, ok)
	}
	if _, ok := ListingType("trade"); ok {
		t.Fatal("unknown type accepted")
	}
}

func TestStructDeal(t *testing.T) {
	disc := 40
	valid := domain.Deal{
		Title:              "Echo Dot",
		Price:              29.99,
		DiscountPercentage: &disc,
		StoreName:          "Amazon",
		Category:           domain.CategoryTech,
		AffiliateURL:       "https://amazon.com/echo-dot-student",
		ExternalID:         "amz_echo_001",
	}
	if err := Struct(valid); err != nil {
		t.Fatalf("valid deal rejected: %v", err)
	}

	bad := valid
	bad.Category = "Clothing"
	if err := Struct(bad); err == nil {
		t.Fatal("category outside the closed set accepted")
	}

	bad = valid
	bad.AffiliateURL = "not a url"
	if err := Struct(bad); err == nil {
		t.Fatal("bad affiliate url accepted")
	}

	bad = valid
	over := 140
	bad.DiscountPercentage = &over
	if err := Struct(bad); err == nil {
		t.Fatal("discount over 100 accepted")
	}
}
