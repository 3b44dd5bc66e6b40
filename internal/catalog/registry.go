// Package catalog holds the compiled-in towel variant registry. Every listing
// is an instance of one registered variant; sellers pick a variant, they never
// invent specifications.
package catalog

import (
	"fmt"

	"github.com/marketarena/marketplace-api/internal/utils"
)

// Variant enumerates the supported towel product tiers.
type Variant string

const (
	VariantBudget  Variant = "budget"
	VariantMidTier Variant = "mid_tier"
	VariantPremium Variant = "premium"
)

// Variants lists every registered variant in a stable order.
var Variants = []Variant{VariantBudget, VariantMidTier, VariantPremium}

// Specification is the immutable technical spec of a variant. Wholesale cost
// is in cents and is never exposed on public product endpoints.
type Specification struct {
	Variant            Variant `json:"variant"`
	GSM                int     `json:"gsm"`
	WidthInches        int     `json:"widthInches"`
	LengthInches       int     `json:"lengthInches"`
	Material           string  `json:"material"`
	WholesaleCostCents int     `json:"-"`
}

var registry = map[Variant]Specification{
	VariantBudget: {
		Variant:            VariantBudget,
		GSM:                500,
		WidthInches:        27,
		LengthInches:       54,
		Material:           "Standard Cotton",
		WholesaleCostCents: 800,
	},
	VariantMidTier: {
		Variant:            VariantMidTier,
		GSM:                550,
		WidthInches:        27,
		LengthInches:       54,
		Material:           "Premium Cotton",
		WholesaleCostCents: 1200,
	},
	VariantPremium: {
		Variant:            VariantPremium,
		GSM:                600,
		WidthInches:        27,
		LengthInches:       59,
		Material:           "Premium Cotton",
		WholesaleCostCents: 1500,
	},
}

// Resolve returns the specification for a variant tag.
func Resolve(tag Variant) (Specification, error) {
	spec, ok := registry[tag]
	if !ok {
		return Specification{}, fmt.Errorf("%w: %q", utils.ErrUnknownVariant, tag)
	}
	return spec, nil
}

// MinPrice returns the lowest allowed retail price for a variant given the
// configured floor ratio, rounded down to the nearest cent.
func MinPrice(tag Variant, floorRatio float64) (int, error) {
	spec, err := Resolve(tag)
	if err != nil {
		return 0, err
	}
	return int(float64(spec.WholesaleCostCents) * floorRatio), nil
}

// ValidatePrice checks a retail price against the variant's floor. Sellers may
// price below wholesale (loss-leader) but never below floorRatio * wholesale.
func ValidatePrice(tag Variant, priceInCent int, floorRatio float64) error {
	min, err := MinPrice(tag, floorRatio)
	if err != nil {
		return err
	}
	if priceInCent < min {
		return fmt.Errorf("%w: price %d below minimum %d for variant %q",
			utils.ErrPriceBelowFloor, priceInCent, min, tag)
	}
	return nil
}
