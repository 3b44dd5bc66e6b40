package service

import (
	"context"
	"sort"

	"github.com/marketarena/marketplace-api/internal/cache"
	"github.com/marketarena/marketplace-api/internal/models"
	"github.com/marketarena/marketplace-api/internal/repository"
)

// LeaderboardEntry is one seller's standing. Profit is the exact sum of
// (price_of_purchase - wholesale_cost_at_purchase) over the seller's ledger
// rows; losses subtract. Equal standings share a rank (competition ranking).
type LeaderboardEntry struct {
	Rank             int    `json:"rank"`
	SellerID         string `json:"sellerId"`
	SellerName       string `json:"sellerName"`
	PurchaseCount    int    `json:"purchaseCount"`
	TotalProfitCents int    `json:"totalProfitCents"`

	// RoundWins counts rounds in which the seller held strictly top profit
	// (co-leaders all credited). Populated on the overall board only, where
	// it breaks total-profit ties.
	RoundWins int `json:"roundWins"`
}

// LeaderboardService derives seller standings from the purchase ledger.
type LeaderboardService struct {
	store   repository.Store
	lbCache *cache.LeaderboardCache
}

// NewLeaderboardService constructs a LeaderboardService. lbCache may be nil.
func NewLeaderboardService(store repository.Store, lbCache *cache.LeaderboardCache) *LeaderboardService {
	return &LeaderboardService{store: store, lbCache: lbCache}
}

// Leaderboard returns seller standings. With a round filter it scores only
// ledger rows written under that round; without one it aggregates the whole
// battle and uses per-round wins as the secondary axis.
func (s *LeaderboardService) Leaderboard(ctx context.Context, round *int) ([]LeaderboardEntry, error) {
	var cached []LeaderboardEntry
	if s.lbCache.Get(ctx, round, &cached) {
		return cached, nil
	}

	sellers, err := s.store.ListSellers(ctx)
	if err != nil {
		return nil, err
	}
	purchases, err := s.store.ListPurchases(ctx, round)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(sellers))
	byID := make(map[string]*LeaderboardEntry, len(sellers))
	for _, sl := range sellers {
		entries = append(entries, LeaderboardEntry{
			SellerID:   sl.ID,
			SellerName: sl.Name,
		})
		byID[sl.ID] = &entries[len(entries)-1]
	}

	for _, p := range purchases {
		e, ok := byID[p.SellerID]
		if !ok {
			continue
		}
		e.PurchaseCount++
		e.TotalProfitCents += p.PriceOfPurchase - p.WholesaleCostAtPurchase
	}

	overall := round == nil
	if overall {
		allPurchases := purchases
		for sellerID, wins := range roundWins(allPurchases) {
			if e, ok := byID[sellerID]; ok {
				e.RoundWins = wins
			}
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalProfitCents != entries[j].TotalProfitCents {
			return entries[i].TotalProfitCents > entries[j].TotalProfitCents
		}
		if overall && entries[i].RoundWins != entries[j].RoundWins {
			return entries[i].RoundWins > entries[j].RoundWins
		}
		return entries[i].SellerID < entries[j].SellerID
	})

	// Competition ranking: genuinely tied sellers are co-ranked, the next
	// distinct standing skips past them.
	for i := range entries {
		if i == 0 {
			entries[i].Rank = 1
			continue
		}
		prev, cur := &entries[i-1], &entries[i]
		tied := prev.TotalProfitCents == cur.TotalProfitCents &&
			(!overall || prev.RoundWins == cur.RoundWins)
		if tied {
			cur.Rank = prev.Rank
		} else {
			cur.Rank = i + 1
		}
	}

	s.lbCache.Set(ctx, round, entries)
	return entries, nil
}

// roundWins credits each seller once per round in which they held the top
// profit. Only rounds with at least one purchase count; co-leaders within a
// round are all credited.
func roundWins(purchases []models.Purchase) map[string]int {
	profitByRound := make(map[int]map[string]int)
	for _, p := range purchases {
		if profitByRound[p.Round] == nil {
			profitByRound[p.Round] = make(map[string]int)
		}
		profitByRound[p.Round][p.SellerID] += p.PriceOfPurchase - p.WholesaleCostAtPurchase
	}

	wins := make(map[string]int)
	for _, profits := range profitByRound {
		best := 0
		first := true
		for _, profit := range profits {
			if first || profit > best {
				best = profit
				first = false
			}
		}
		for sellerID, profit := range profits {
			if profit == best {
				wins[sellerID]++
			}
		}
	}
	return wins
}
