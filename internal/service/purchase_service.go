package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/marketarena/marketplace-api/internal/battle"
	"github.com/marketarena/marketplace-api/internal/cache"
	"github.com/marketarena/marketplace-api/internal/catalog"
	"github.com/marketarena/marketplace-api/internal/metrics"
	"github.com/marketarena/marketplace-api/internal/models"
	"github.com/marketarena/marketplace-api/internal/repository"
)

// PurchaseService appends to the purchase ledger. Each row snapshots the
// product's current price and the registry's current wholesale cost, so
// profit for historical purchases stays stable however the seller later
// edits the listing.
type PurchaseService struct {
	store   repository.Store
	lbCache *cache.LeaderboardCache
}

// NewPurchaseService constructs a PurchaseService. lbCache may be nil.
func NewPurchaseService(store repository.Store, lbCache *cache.LeaderboardCache) *PurchaseService {
	return &PurchaseService{store: store, lbCache: lbCache}
}

// Purchase records a buy of productID by buyerID. The ledger is additive:
// there is no inventory cap and concurrent purchases of the same product are
// all recorded. Fails only on phase or existence grounds.
func (s *PurchaseService) Purchase(ctx context.Context, buyerID, productID string) (*models.Purchase, error) {
	var purchase *models.Purchase
	var variant catalog.Variant
	err := s.store.Atomic(ctx, func(tx repository.Store) error {
		state, err := CurrentState(ctx, tx)
		if err != nil {
			return err
		}
		if err := battle.Authorize(state.Phase, battle.CapabilityBuyerWrite); err != nil {
			return err
		}

		product, err := tx.GetProduct(ctx, productID)
		if err != nil {
			return err
		}

		// Wholesale cost comes from the registry at purchase time, not from
		// a value cached on the listing.
		spec, err := catalog.Resolve(product.Variant)
		if err != nil {
			return err
		}
		variant = product.Variant

		purchase = &models.Purchase{
			ID:                      uuid.New().String(),
			ProductID:               product.ID,
			BuyerID:                 buyerID,
			SellerID:                product.SellerID,
			PriceOfPurchase:         product.PriceInCent,
			WholesaleCostAtPurchase: spec.WholesaleCostCents,
			Day:                     state.Day,
			Round:                   state.Round,
		}
		return tx.InsertPurchase(ctx, purchase)
	})
	if err != nil {
		return nil, err
	}

	metrics.PurchasesTotal.WithLabelValues(string(variant)).Inc()
	s.lbCache.Invalidate(ctx)
	return purchase, nil
}

// Get returns a single ledger row.
func (s *PurchaseService) Get(ctx context.Context, purchaseID string) (*models.Purchase, error) {
	return s.store.GetPurchase(ctx, purchaseID)
}
