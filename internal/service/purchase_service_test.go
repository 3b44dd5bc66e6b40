package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/marketarena/marketplace-api/internal/battle"
	"github.com/marketarena/marketplace-api/internal/catalog"
	"github.com/marketarena/marketplace-api/internal/metrics"
	"github.com/marketarena/marketplace-api/internal/service"
	"github.com/marketarena/marketplace-api/internal/utils"
)

func TestPurchase_SnapshotsPriceAndWholesale(t *testing.T) {
	env := newTestEnv(t)
	seller := env.seedSeller(t, "alice")
	buyer := env.seedBuyer(t, "bob")
	env.seedProduct(t, seller.ID, "towel-1", catalog.VariantPremium, 2000)

	purchase, err := env.purchase.Purchase(context.Background(), buyer.ID, "towel-1")
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if purchase.PriceOfPurchase != 2000 {
		t.Errorf("price snapshot = %d, want 2000", purchase.PriceOfPurchase)
	}
	if purchase.WholesaleCostAtPurchase != 1500 {
		t.Errorf("wholesale snapshot = %d, want 1500", purchase.WholesaleCostAtPurchase)
	}
	if purchase.SellerID != seller.ID || purchase.BuyerID != buyer.ID {
		t.Errorf("actor ids not recorded: seller=%q buyer=%q", purchase.SellerID, purchase.BuyerID)
	}
	if purchase.Day != 1 || purchase.Round != 1 {
		t.Errorf("battle coordinates = day %d round %d, want 1/1", purchase.Day, purchase.Round)
	}
}

func TestPurchase_LedgerImmutableUnderRepricing(t *testing.T) {
	env := newTestEnv(t)
	seller := env.seedSeller(t, "alice")
	buyer := env.seedBuyer(t, "bob")
	env.seedProduct(t, seller.ID, "towel-1", catalog.VariantPremium, 2000)

	ctx := context.Background()
	first, err := env.purchase.Purchase(ctx, buyer.ID, "towel-1")
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}

	// Repricing after the sale must not touch the recorded row.
	if _, err := env.product.Update(ctx, seller.ID, "towel-1", &service.UpdateProductRequest{
		PriceInCent: intptr(900),
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := env.purchase.Get(ctx, first.ID)
	if err != nil {
		t.Fatalf("get purchase: %v", err)
	}
	if got.PriceOfPurchase != 2000 {
		t.Errorf("historical price changed to %d after repricing", got.PriceOfPurchase)
	}

	second, err := env.purchase.Purchase(ctx, buyer.ID, "towel-1")
	if err != nil {
		t.Fatalf("second purchase: %v", err)
	}
	if second.PriceOfPurchase != 900 {
		t.Errorf("new purchase should snapshot the new price, got %d", second.PriceOfPurchase)
	}
}

func TestPurchase_PhaseGated(t *testing.T) {
	env := newTestEnv(t)
	seller := env.seedSeller(t, "alice")
	buyer := env.seedBuyer(t, "bob")
	env.seedProduct(t, seller.ID, "towel-1", catalog.VariantBudget, 1000)

	env.setPhase(t, battle.PhaseSellerManagement)
	_, err := env.purchase.Purchase(context.Background(), buyer.ID, "towel-1")
	if !errors.Is(err, utils.ErrPhaseViolation) {
		t.Fatalf("expected ErrPhaseViolation, got %v", err)
	}

	env.setPhase(t, battle.PhaseBuyerShopping)
	if _, err := env.purchase.Purchase(context.Background(), buyer.ID, "towel-1"); err != nil {
		t.Fatalf("purchase during buyer_shopping: %v", err)
	}
}

func TestPurchase_UnknownProduct(t *testing.T) {
	env := newTestEnv(t)
	buyer := env.seedBuyer(t, "bob")

	_, err := env.purchase.Purchase(context.Background(), buyer.ID, "missing")
	if !errors.Is(err, utils.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPurchase_NoInventoryCap(t *testing.T) {
	env := newTestEnv(t)
	seller := env.seedSeller(t, "alice")
	buyer := env.seedBuyer(t, "bob")
	env.seedProduct(t, seller.ID, "towel-1", catalog.VariantBudget, 1000)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if _, err := env.purchase.Purchase(ctx, buyer.ID, "towel-1"); err != nil {
			t.Fatalf("purchase %d: %v", i, err)
		}
	}

	purchases, err := env.store.ListPurchases(ctx, nil)
	if err != nil {
		t.Fatalf("list purchases: %v", err)
	}
	if len(purchases) != 5 {
		t.Fatalf("ledger rows = %d, want 5", len(purchases))
	}
}

func TestPurchase_CountsVariantMetric(t *testing.T) {
	env := newTestEnv(t)
	seller := env.seedSeller(t, "alice")
	buyer := env.seedBuyer(t, "bob")
	env.seedProduct(t, seller.ID, "towel-1", catalog.VariantPremium, 2000)

	counter := metrics.PurchasesTotal.WithLabelValues(string(catalog.VariantPremium))
	before := testutil.ToFloat64(counter)

	if _, err := env.purchase.Purchase(context.Background(), buyer.ID, "towel-1"); err != nil {
		t.Fatalf("purchase: %v", err)
	}

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("premium purchase counter moved by %v, want 1", got)
	}
}

func TestPurchase_TagsCurrentRound(t *testing.T) {
	env := newTestEnv(t)
	seller := env.seedSeller(t, "alice")
	buyer := env.seedBuyer(t, "bob")
	env.seedProduct(t, seller.ID, "towel-1", catalog.VariantBudget, 1000)

	ctx := context.Background()
	env.setRound(t, 3)
	purchase, err := env.purchase.Purchase(ctx, buyer.ID, "towel-1")
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if purchase.Round != 3 {
		t.Errorf("round = %d, want 3", purchase.Round)
	}
}
