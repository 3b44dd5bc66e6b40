package service

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/marketarena/marketplace-api/internal/metrics"
	"github.com/marketarena/marketplace-api/internal/models"
	"github.com/marketarena/marketplace-api/internal/repository"
)

// Ranker orders products best-first. The sales-count policy is the default;
// the interface exists so a richer scorer can be swapped in without touching
// the catalog contract.
type Ranker interface {
	// Rank returns product ids ordered best-first. Must be deterministic
	// for identical inputs.
	Rank(products []models.Product, counts map[string]int) []string
}

// SalesCountRanker ranks by purchase count descending with a product-id
// tie-break, so repeated passes over an unchanged ledger produce identical
// assignments. Zero-sale products sort last, also deterministically.
type SalesCountRanker struct{}

func (SalesCountRanker) Rank(products []models.Product, counts map[string]int) []string {
	ids := make([]string, 0, len(products))
	for i := range products {
		ids = append(ids, products[i].ID)
	}
	sort.Slice(ids, func(i, j int) bool {
		ci, cj := counts[ids[i]], counts[ids[j]]
		if ci != cj {
			return ci > cj
		}
		return ids[i] < ids[j]
	})
	return ids
}

// WeightedRanker scores sales volume (40%), price competitiveness against a
// reference price point (30%), short-description completeness (20%), and a
// flat recency component (10%). Deterministic for fixed inputs.
type WeightedRanker struct {
	// ReferencePriceCents anchors the price-competitiveness score.
	ReferencePriceCents int
}

func (r WeightedRanker) Rank(products []models.Product, counts map[string]int) []string {
	ref := r.ReferencePriceCents
	if ref <= 0 {
		ref = 5000
	}

	score := func(p *models.Product) float64 {
		s := 0.0

		sales := float64(counts[p.ID])
		if sales > 10 {
			sales = 10
		}
		s += sales / 10 * 0.4

		diff := float64(p.PriceInCent - ref)
		if diff < 0 {
			diff = -diff
		}
		priceScore := 1.0 - diff/float64(ref)
		if priceScore < 0 {
			priceScore = 0
		}
		s += priceScore * 0.3

		descLen := float64(len(p.ShortDescription))
		if descLen > 200 {
			descLen = 200
		}
		s += descLen / 200 * 0.2

		s += 0.1
		return s
	}

	byID := make(map[string]*models.Product, len(products))
	ids := make([]string, 0, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
		ids = append(ids, products[i].ID)
	}
	sort.Slice(ids, func(i, j int) bool {
		si, sj := score(byID[ids[i]]), score(byID[ids[j]])
		if si != sj {
			return si > sj
		}
		return ids[i] < ids[j]
	})
	return ids
}

// RankingService recomputes the visibility order over listings. Invoked by
// the orchestrator between phases; the mutex keeps a recompute from running
// concurrently with itself.
type RankingService struct {
	store  repository.Store
	ranker Ranker
	mu     sync.Mutex
}

// NewRankingService constructs a RankingService with the given policy.
func NewRankingService(store repository.Store, ranker Ranker) *RankingService {
	return &RankingService{store: store, ranker: ranker}
}

// Recompute assigns ranking 1 to the best product, 2 to the next, and so on,
// and refreshes bestseller flags (top 20% of selling products, minimum one).
// Idempotent: a second pass over an unchanged ledger is a no-op in effect.
func (s *RankingService) Recompute(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var updated int
	err := s.store.Atomic(ctx, func(tx repository.Store) error {
		products, err := tx.ListProducts(ctx)
		if err != nil {
			return err
		}
		if len(products) == 0 {
			return nil
		}

		counts, err := tx.CountPurchasesByProduct(ctx)
		if err != nil {
			return err
		}

		ordered := s.ranker.Rank(products, counts)
		rankings := make(map[string]int, len(ordered))
		for i, id := range ordered {
			rankings[id] = i + 1
		}

		if err := tx.SetRankings(ctx, rankings, bestsellerSet(counts)); err != nil {
			return err
		}
		updated = len(ordered)
		return nil
	})
	if err != nil {
		return 0, err
	}

	metrics.RankingRecomputes.Inc()
	log.Info().Int("updated", updated).Msg("rankings recomputed")
	return updated, nil
}

// InitializeRandom shuffles rankings across all listings. Used at battle
// start before any purchases exist, so early search results are not biased
// by listing order.
func (s *RankingService) InitializeRandom(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var updated int
	err := s.store.Atomic(ctx, func(tx repository.Store) error {
		products, err := tx.ListProducts(ctx)
		if err != nil {
			return err
		}
		if len(products) == 0 {
			return nil
		}

		ranks := rand.New(rand.NewSource(time.Now().UnixNano())).Perm(len(products))
		rankings := make(map[string]int, len(products))
		for i := range products {
			rankings[products[i].ID] = ranks[i] + 1
		}

		if err := tx.SetRankings(ctx, rankings, map[string]bool{}); err != nil {
			return err
		}
		updated = len(products)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

// bestsellerSet marks the top fifth of selling products (at least one) as
// bestsellers. Products without sales never qualify.
func bestsellerSet(counts map[string]int) map[string]bool {
	type sale struct {
		id    string
		count int
	}
	var selling []sale
	for id, c := range counts {
		if c > 0 {
			selling = append(selling, sale{id, c})
		}
	}
	if len(selling) == 0 {
		return map[string]bool{}
	}
	sort.Slice(selling, func(i, j int) bool {
		if selling[i].count != selling[j].count {
			return selling[i].count > selling[j].count
		}
		return selling[i].id < selling[j].id
	})

	n := len(selling) / 5
	if n < 1 {
		n = 1
	}
	out := make(map[string]bool, n)
	for _, s := range selling[:n] {
		out[s.id] = true
	}
	return out
}
