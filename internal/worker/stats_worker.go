package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/marketarena/marketplace-api/internal/repository"
	"github.com/marketarena/marketplace-api/internal/service"
)

// StatsWorker periodically logs battle activity: phase, day, round, listing
// and ledger sizes. It gives operators a heartbeat of the battle without
// scraping /metrics.
type StatsWorker struct {
	store    repository.Store
	interval time.Duration
}

// NewStatsWorker constructs a StatsWorker.
func NewStatsWorker(store repository.Store, interval time.Duration) *StatsWorker {
	return &StatsWorker{store: store, interval: interval}
}

// Start begins the periodic stats loop until context is canceled.
func (w *StatsWorker) Start(ctx context.Context) {
	log.Info().
		Dur("interval", w.interval).
		Msg("Starting stats worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Stats worker stopped")
			return
		}
	}
}

func (w *StatsWorker) run(ctx context.Context) {
	state, err := service.CurrentState(ctx, w.store)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read battle state")
		return
	}

	products, err := w.store.ListProducts(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list products")
		return
	}

	purchases, err := w.store.ListPurchases(ctx, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list purchases")
		return
	}

	var revenue, profit int
	for i := range purchases {
		revenue += purchases[i].PriceOfPurchase
		profit += purchases[i].PriceOfPurchase - purchases[i].WholesaleCostAtPurchase
	}

	log.Info().
		Str("battle_id", state.BattleID).
		Str("phase", string(state.Phase)).
		Int("day", state.Day).
		Int("round", state.Round).
		Int("products", len(products)).
		Int("purchases", len(purchases)).
		Int("revenue_cents", revenue).
		Int("profit_cents", profit).
		Msg("Battle stats")
}
