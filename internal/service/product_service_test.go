package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/marketarena/marketplace-api/internal/battle"
	"github.com/marketarena/marketplace-api/internal/catalog"
	"github.com/marketarena/marketplace-api/internal/service"
	"github.com/marketarena/marketplace-api/internal/utils"
)

func TestCreateProduct_CopiesRegistrySpec(t *testing.T) {
	env := newTestEnv(t)
	seller := env.seedSeller(t, "alice")

	product := env.seedProduct(t, seller.ID, "towel-1", catalog.VariantPremium, 2000)

	if product.GSM != 600 || product.WidthInches != 27 || product.LengthInches != 59 {
		t.Errorf("spec not copied from registry: %d gsm %dx%d", product.GSM, product.WidthInches, product.LengthInches)
	}
	if product.Material != "Premium Cotton" {
		t.Errorf("material = %q, want Premium Cotton", product.Material)
	}
	if product.Currency != "USD" {
		t.Errorf("currency = %q, want USD", product.Currency)
	}
	if product.Ranking != nil {
		t.Errorf("new product should be unranked, got %d", *product.Ranking)
	}
}

func TestCreateProduct_RejectsUnknownVariant(t *testing.T) {
	env := newTestEnv(t)
	seller := env.seedSeller(t, "alice")

	_, err := env.product.Create(context.Background(), seller.ID, "towel-1", &service.CreateProductRequest{
		Variant:          "deluxe",
		Name:             "Towel",
		ShortDescription: "s",
		LongDescription:  "l",
		PriceInCent:      2000,
	})
	if !errors.Is(err, utils.ErrUnknownVariant) {
		t.Fatalf("expected ErrUnknownVariant, got %v", err)
	}
}

func TestCreateProduct_RejectsPriceBelowFloor(t *testing.T) {
	env := newTestEnv(t)
	seller := env.seedSeller(t, "alice")

	// Premium wholesale 1500 at ratio 0.5 puts the floor at 750.
	_, err := env.product.Create(context.Background(), seller.ID, "towel-1", &service.CreateProductRequest{
		Variant:          catalog.VariantPremium,
		Name:             "Towel",
		ShortDescription: "s",
		LongDescription:  "l",
		PriceInCent:      749,
	})
	if !errors.Is(err, utils.ErrPriceBelowFloor) {
		t.Fatalf("expected ErrPriceBelowFloor, got %v", err)
	}
}

func TestCreateProduct_DuplicateID(t *testing.T) {
	env := newTestEnv(t)
	seller := env.seedSeller(t, "alice")
	env.seedProduct(t, seller.ID, "towel-1", catalog.VariantBudget, 1000)

	_, err := env.product.Create(context.Background(), seller.ID, "towel-1", &service.CreateProductRequest{
		Variant:          catalog.VariantBudget,
		Name:             "Another",
		ShortDescription: "s",
		LongDescription:  "l",
		PriceInCent:      1000,
	})
	if !errors.Is(err, utils.ErrDuplicateProductID) {
		t.Fatalf("expected ErrDuplicateProductID, got %v", err)
	}
}

func TestCreateProduct_PhaseGated(t *testing.T) {
	env := newTestEnv(t)
	seller := env.seedSeller(t, "alice")
	env.setPhase(t, battle.PhaseBuyerShopping)

	_, err := env.product.Create(context.Background(), seller.ID, "towel-1", &service.CreateProductRequest{
		Variant:          catalog.VariantBudget,
		Name:             "Towel",
		ShortDescription: "s",
		LongDescription:  "l",
		PriceInCent:      1000,
	})
	if !errors.Is(err, utils.ErrPhaseViolation) {
		t.Fatalf("expected ErrPhaseViolation, got %v", err)
	}

	// Seller management re-opens the write window.
	env.setPhase(t, battle.PhaseSellerManagement)
	env.seedProduct(t, seller.ID, "towel-1", catalog.VariantBudget, 1000)
}

func TestUpdateProduct_PartialFields(t *testing.T) {
	env := newTestEnv(t)
	seller := env.seedSeller(t, "alice")
	env.seedProduct(t, seller.ID, "towel-1", catalog.VariantMidTier, 2000)

	updated, err := env.product.Update(context.Background(), seller.ID, "towel-1", &service.UpdateProductRequest{
		PriceInCent: intptr(1800),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.PriceInCent != 1800 {
		t.Errorf("price = %d, want 1800", updated.PriceInCent)
	}
	if updated.Name != "Towel towel-1" {
		t.Errorf("untouched field changed: name = %q", updated.Name)
	}

	// Spec fields survive any update.
	if updated.GSM != 550 || updated.Material != "Premium Cotton" {
		t.Errorf("spec fields changed on update: %d gsm %q", updated.GSM, updated.Material)
	}
}

func TestUpdateProduct_PriceFloorReapplied(t *testing.T) {
	env := newTestEnv(t)
	seller := env.seedSeller(t, "alice")
	env.seedProduct(t, seller.ID, "towel-1", catalog.VariantMidTier, 2000)

	_, err := env.product.Update(context.Background(), seller.ID, "towel-1", &service.UpdateProductRequest{
		PriceInCent: intptr(599),
	})
	if !errors.Is(err, utils.ErrPriceBelowFloor) {
		t.Fatalf("expected ErrPriceBelowFloor, got %v", err)
	}
}

func TestUpdateProduct_NotOwner(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedSeller(t, "alice")
	bob := env.seedSeller(t, "bob")
	env.seedProduct(t, alice.ID, "towel-1", catalog.VariantBudget, 1000)

	_, err := env.product.Update(context.Background(), bob.ID, "towel-1", &service.UpdateProductRequest{
		Name: strptr("hijacked"),
	})
	if !errors.Is(err, utils.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
}

func TestUpdateProduct_NotFound(t *testing.T) {
	env := newTestEnv(t)
	seller := env.seedSeller(t, "alice")

	_, err := env.product.Update(context.Background(), seller.ID, "missing", &service.UpdateProductRequest{
		Name: strptr("x"),
	})
	if !errors.Is(err, utils.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetAndSearch_NeverPhaseGated(t *testing.T) {
	env := newTestEnv(t)
	seller := env.seedSeller(t, "alice")
	env.seedProduct(t, seller.ID, "towel-1", catalog.VariantBudget, 1000)
	env.setPhase(t, battle.PhaseBuyerShopping)

	if _, err := env.product.Get(context.Background(), "towel-1"); err != nil {
		t.Errorf("Get should work in any phase: %v", err)
	}
	results, err := env.product.Search(context.Background(), "towel")
	if err != nil {
		t.Fatalf("Search should work in any phase: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
}

func TestSearch_OrdersByRanking(t *testing.T) {
	env := newTestEnv(t)
	seller := env.seedSeller(t, "alice")
	env.seedProduct(t, seller.ID, "towel-a", catalog.VariantBudget, 1000)
	env.seedProduct(t, seller.ID, "towel-b", catalog.VariantBudget, 1000)
	env.seedProduct(t, seller.ID, "towel-c", catalog.VariantBudget, 1000)

	ctx := context.Background()
	if err := env.store.SetRankings(ctx, map[string]int{"towel-b": 1, "towel-c": 2}, nil); err != nil {
		t.Fatalf("set rankings: %v", err)
	}

	results, err := env.product.Search(ctx, "towel")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	var got []string
	for _, r := range results {
		got = append(got, r.ID)
	}
	want := []string{"towel-b", "towel-c", "towel-a"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}
