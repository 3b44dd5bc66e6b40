package catalog_test

import (
	"errors"
	"testing"

	"github.com/marketarena/marketplace-api/internal/catalog"
	"github.com/marketarena/marketplace-api/internal/utils"
)

func TestResolve_KnownVariants(t *testing.T) {
	tests := []struct {
		variant   catalog.Variant
		gsm       int
		width     int
		length    int
		material  string
		wholesale int
	}{
		{catalog.VariantBudget, 500, 27, 54, "Standard Cotton", 800},
		{catalog.VariantMidTier, 550, 27, 54, "Premium Cotton", 1200},
		{catalog.VariantPremium, 600, 27, 59, "Premium Cotton", 1500},
	}

	for _, tt := range tests {
		spec, err := catalog.Resolve(tt.variant)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", tt.variant, err)
		}
		if spec.GSM != tt.gsm || spec.WidthInches != tt.width || spec.LengthInches != tt.length {
			t.Errorf("%q spec = %d gsm %dx%d, want %d gsm %dx%d",
				tt.variant, spec.GSM, spec.WidthInches, spec.LengthInches, tt.gsm, tt.width, tt.length)
		}
		if spec.Material != tt.material {
			t.Errorf("%q material = %q, want %q", tt.variant, spec.Material, tt.material)
		}
		if spec.WholesaleCostCents != tt.wholesale {
			t.Errorf("%q wholesale = %d, want %d", tt.variant, spec.WholesaleCostCents, tt.wholesale)
		}
	}
}

func TestResolve_UnknownVariant(t *testing.T) {
	_, err := catalog.Resolve("luxury")
	if !errors.Is(err, utils.ErrUnknownVariant) {
		t.Fatalf("expected ErrUnknownVariant, got %v", err)
	}
}

func TestMinPrice_HalfWholesaleFloor(t *testing.T) {
	tests := []struct {
		variant catalog.Variant
		want    int
	}{
		{catalog.VariantBudget, 400},
		{catalog.VariantMidTier, 600},
		{catalog.VariantPremium, 750},
	}

	for _, tt := range tests {
		min, err := catalog.MinPrice(tt.variant, 0.5)
		if err != nil {
			t.Fatalf("MinPrice(%q): %v", tt.variant, err)
		}
		if min != tt.want {
			t.Errorf("MinPrice(%q, 0.5) = %d, want %d", tt.variant, min, tt.want)
		}
	}
}

func TestValidatePrice_Boundaries(t *testing.T) {
	// Premium wholesale is 1500, so the half-ratio floor is exactly 750.
	if err := catalog.ValidatePrice(catalog.VariantPremium, 750, 0.5); err != nil {
		t.Errorf("price at floor should pass: %v", err)
	}
	if err := catalog.ValidatePrice(catalog.VariantPremium, 749, 0.5); !errors.Is(err, utils.ErrPriceBelowFloor) {
		t.Errorf("price below floor should fail with ErrPriceBelowFloor, got %v", err)
	}
	// Loss-leader pricing below wholesale but above the floor is allowed.
	if err := catalog.ValidatePrice(catalog.VariantPremium, 1000, 0.5); err != nil {
		t.Errorf("loss-leader price above floor should pass: %v", err)
	}
}

func TestValidatePrice_UnknownVariant(t *testing.T) {
	if err := catalog.ValidatePrice("nonexistent", 5000, 0.5); !errors.Is(err, utils.ErrUnknownVariant) {
		t.Fatalf("expected ErrUnknownVariant, got %v", err)
	}
}
