// Package repository defines the persistence boundary for the marketplace.
// PostgresStore is the production implementation; MemoryStore backs tests and
// single-process development runs. Catalog and ledger logic upstream is
// identical regardless of backing store.
package repository

import (
	"context"

	"github.com/marketarena/marketplace-api/internal/models"
)

// Store is the persistence interface. Every mutating marketplace operation
// runs its phase check and its write inside a single Atomic call so a phase
// flip can never slip between authorization and effect.
type Store interface {
	// Atomic runs fn against a transactional view of the store. For Postgres
	// this is a real database transaction; for the in-memory store it holds
	// the global write lock. Nested calls reuse the enclosing transaction.
	Atomic(ctx context.Context, fn func(Store) error) error

	// --- Sellers ---

	CreateSeller(ctx context.Context, s *models.Seller) error
	GetSeller(ctx context.Context, id string) (*models.Seller, error)
	GetSellerByToken(ctx context.Context, token string) (*models.Seller, error)
	ListSellers(ctx context.Context) ([]models.Seller, error)

	// --- Buyers ---

	CreateBuyer(ctx context.Context, b *models.Buyer) error
	GetBuyerByToken(ctx context.Context, token string) (*models.Buyer, error)
	ListBuyers(ctx context.Context) ([]models.Buyer, error)

	// --- Products ---

	// CreateProduct persists a new listing. Fails with ErrDuplicateProductID
	// when the caller-chosen id already exists.
	CreateProduct(ctx context.Context, p *models.Product) error
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	UpdateProduct(ctx context.Context, p *models.Product) error
	ListProducts(ctx context.Context) ([]models.Product, error)

	// SearchProducts returns listings whose marketing name or descriptions
	// contain the query (case-insensitive), ordered by ranking ascending
	// with unranked listings last, then by product id.
	SearchProducts(ctx context.Context, query string) ([]models.Product, error)

	// SetRankings applies a full ranking pass: rank per product id plus the
	// recomputed bestseller set.
	SetRankings(ctx context.Context, rankings map[string]int, bestsellers map[string]bool) error

	// --- Purchase ledger (append-only) ---

	InsertPurchase(ctx context.Context, p *models.Purchase) error
	GetPurchase(ctx context.Context, id string) (*models.Purchase, error)

	// ListPurchases returns ledger rows, optionally filtered by round.
	ListPurchases(ctx context.Context, round *int) ([]models.Purchase, error)

	// CountPurchasesByProduct aggregates total purchases per product id.
	CountPurchasesByProduct(ctx context.Context) (map[string]int, error)

	// --- Battle metadata ---

	GetMeta(ctx context.Context, key string) (string, error)
	SetMeta(ctx context.Context, key, value string) error

	// Reset clears sellers, buyers, products, purchases, and metadata to a
	// consistent empty state. Runs with full exclusivity; partial clears are
	// never observable.
	Reset(ctx context.Context) error
}
