package service_test

import (
	"context"
	"testing"

	"github.com/marketarena/marketplace-api/internal/battle"
	"github.com/marketarena/marketplace-api/internal/catalog"
	"github.com/marketarena/marketplace-api/internal/models"
	"github.com/marketarena/marketplace-api/internal/repository"
	"github.com/marketarena/marketplace-api/internal/service"
)

// testEnv bundles the services under test over a shared in-memory store.
type testEnv struct {
	store       *repository.MemoryStore
	auth        *service.AuthService
	battle      *service.BattleService
	product     *service.ProductService
	purchase    *service.PurchaseService
	ranking     *service.RankingService
	leaderboard *service.LeaderboardService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := repository.NewMemoryStore()
	return &testEnv{
		store:       store,
		auth:        service.NewAuthService(store),
		battle:      service.NewBattleService(store, nil),
		product:     service.NewProductService(store, 0.5),
		purchase:    service.NewPurchaseService(store, nil),
		ranking:     service.NewRankingService(store, service.SalesCountRanker{}),
		leaderboard: service.NewLeaderboardService(store, nil),
	}
}

func (e *testEnv) seedSeller(t *testing.T, name string) *models.Seller {
	t.Helper()
	seller, err := e.auth.CreateSeller(context.Background(), name)
	if err != nil {
		t.Fatalf("failed to seed seller %q: %v", name, err)
	}
	return seller
}

func (e *testEnv) seedBuyer(t *testing.T, name string) *models.Buyer {
	t.Helper()
	buyer, err := e.auth.CreateBuyer(context.Background(), name)
	if err != nil {
		t.Fatalf("failed to seed buyer %q: %v", name, err)
	}
	return buyer
}

func (e *testEnv) seedProduct(t *testing.T, sellerID, productID string, variant catalog.Variant, priceInCent int) *models.Product {
	t.Helper()
	product, err := e.product.Create(context.Background(), sellerID, productID, &service.CreateProductRequest{
		Variant:          variant,
		Name:             "Towel " + productID,
		ShortDescription: "A towel",
		LongDescription:  "A very absorbent towel",
		PriceInCent:      priceInCent,
	})
	if err != nil {
		t.Fatalf("failed to seed product %q: %v", productID, err)
	}
	return product
}

func (e *testEnv) setPhase(t *testing.T, phase battle.Phase) {
	t.Helper()
	if err := e.battle.SetPhase(context.Background(), phase); err != nil {
		t.Fatalf("failed to set phase %q: %v", phase, err)
	}
}

func (e *testEnv) setRound(t *testing.T, round int) {
	t.Helper()
	if err := e.battle.SetRound(context.Background(), round); err != nil {
		t.Fatalf("failed to set round %d: %v", round, err)
	}
}

func intptr(n int) *int { return &n }

func strptr(s string) *string { return &s }
