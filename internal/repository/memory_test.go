package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/marketarena/marketplace-api/internal/models"
	"github.com/marketarena/marketplace-api/internal/repository"
	"github.com/marketarena/marketplace-api/internal/utils"
)

func seed(t *testing.T, store repository.Store, id string) {
	t.Helper()
	if err := store.CreateProduct(context.Background(), &models.Product{
		ID:       id,
		SellerID: "s1",
		Variant:  "budget",
		Name:     "Towel " + id,
	}); err != nil {
		t.Fatalf("seed %s: %v", id, err)
	}
}

func TestMemoryStore_DuplicateProduct(t *testing.T) {
	store := repository.NewMemoryStore()
	seed(t, store, "p1")

	err := store.CreateProduct(context.Background(), &models.Product{ID: "p1"})
	if !errors.Is(err, utils.ErrDuplicateProductID) {
		t.Fatalf("expected ErrDuplicateProductID, got %v", err)
	}
}

func TestMemoryStore_AtomicNesting(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()

	// An Atomic body that itself calls Atomic must not deadlock, and inner
	// writes must be visible to subsequent reads in the same section.
	err := store.Atomic(ctx, func(tx repository.Store) error {
		if err := tx.SetMeta(ctx, "k", "v"); err != nil {
			return err
		}
		return tx.Atomic(ctx, func(inner repository.Store) error {
			v, err := inner.GetMeta(ctx, "k")
			if err != nil {
				return err
			}
			if v != "v" {
				t.Errorf("inner read = %q, want v", v)
			}
			return nil
		})
	})
	if err != nil {
		t.Fatalf("nested atomic: %v", err)
	}
}

func TestMemoryStore_SearchOrdering(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()
	seed(t, store, "pa")
	seed(t, store, "pb")
	seed(t, store, "pc")

	// pb ranked 2, pc ranked 1, pa unranked: ranked first ascending, then id.
	if err := store.SetRankings(ctx, map[string]int{"pb": 2, "pc": 1}, nil); err != nil {
		t.Fatalf("set rankings: %v", err)
	}

	results, err := store.SearchProducts(ctx, "towel")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	want := []string{"pc", "pb", "pa"}
	if len(results) != len(want) {
		t.Fatalf("results = %d, want %d", len(results), len(want))
	}
	for i := range want {
		if results[i].ID != want[i] {
			t.Fatalf("order[%d] = %s, want %s", i, results[i].ID, want[i])
		}
	}
}

func TestMemoryStore_SearchMatchesDescriptions(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()
	if err := store.CreateProduct(ctx, &models.Product{
		ID:               "p1",
		Name:             "Plush",
		ShortDescription: "ultra absorbent bath sheet",
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	results, err := store.SearchProducts(ctx, "ABSORBENT")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("case-insensitive description match failed, got %d results", len(results))
	}
}

func TestMemoryStore_CountPurchasesByProduct(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()

	for _, productID := range []string{"p1", "p1", "p2"} {
		if err := store.InsertPurchase(ctx, &models.Purchase{
			ID:        "buy-" + productID,
			ProductID: productID,
			Round:     1,
		}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	counts, err := store.CountPurchasesByProduct(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if counts["p1"] != 2 || counts["p2"] != 1 {
		t.Errorf("counts = %v, want p1:2 p2:1", counts)
	}
}

func TestMemoryStore_Reset(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()
	seed(t, store, "p1")
	if err := store.SetMeta(ctx, "current_phase", "open"); err != nil {
		t.Fatalf("set meta: %v", err)
	}

	if err := store.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := store.GetProduct(ctx, "p1"); !errors.Is(err, utils.ErrNotFound) {
		t.Errorf("product should be gone, got %v", err)
	}
	if _, err := store.GetMeta(ctx, "current_phase"); !errors.Is(err, utils.ErrNotFound) {
		t.Errorf("metadata should be gone, got %v", err)
	}
}

func TestMemoryStore_AtomicRollbackNotSupported(t *testing.T) {
	// The memory store applies writes immediately; an error from the callback
	// only propagates, it does not undo. Services rely on validate-then-write
	// ordering, so a failing callback must still surface its error.
	store := repository.NewMemoryStore()
	sentinel := errors.New("boom")
	err := store.Atomic(context.Background(), func(repository.Store) error {
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("callback error should propagate, got %v", err)
	}
}
