package service

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/marketarena/marketplace-api/internal/battle"
	"github.com/marketarena/marketplace-api/internal/cache"
	"github.com/marketarena/marketplace-api/internal/metrics"
	"github.com/marketarena/marketplace-api/internal/models"
	"github.com/marketarena/marketplace-api/internal/repository"
	"github.com/marketarena/marketplace-api/internal/utils"
)

// Defaults used when metadata has not been seeded yet (fresh database before
// the first reset).
const (
	defaultDay   = 1
	defaultRound = 1
)

// BattleService owns the orchestration state: phase, day, round, battle id,
// and the full reset. Transitions are unconditional; authorization is the
// admin key at the transport boundary.
type BattleService struct {
	store   repository.Store
	lbCache *cache.LeaderboardCache
}

// NewBattleService constructs a BattleService. lbCache may be nil.
func NewBattleService(store repository.Store, lbCache *cache.LeaderboardCache) *BattleService {
	return &BattleService{store: store, lbCache: lbCache}
}

// CurrentState reads the battle coordinates from metadata. Works against a
// transactional store view as well, so gated writes can read the phase in
// the same transaction that applies their effect.
func CurrentState(ctx context.Context, store repository.Store) (battle.State, error) {
	st := battle.State{
		Phase: battle.PhaseOpen,
		Day:   defaultDay,
		Round: defaultRound,
	}

	if raw, err := store.GetMeta(ctx, models.MetaKeyPhase); err == nil {
		phase, perr := battle.ParsePhase(raw)
		if perr != nil {
			return st, perr
		}
		st.Phase = phase
	} else if !errors.Is(err, utils.ErrNotFound) {
		return st, err
	}

	if raw, err := store.GetMeta(ctx, models.MetaKeyDay); err == nil {
		if n, perr := strconv.Atoi(raw); perr == nil {
			st.Day = n
		}
	} else if !errors.Is(err, utils.ErrNotFound) {
		return st, err
	}

	if raw, err := store.GetMeta(ctx, models.MetaKeyRound); err == nil {
		if n, perr := strconv.Atoi(raw); perr == nil {
			st.Round = n
		}
	} else if !errors.Is(err, utils.ErrNotFound) {
		return st, err
	}

	if raw, err := store.GetMeta(ctx, models.MetaKeyBattleID); err == nil {
		st.BattleID = raw
	} else if !errors.Is(err, utils.ErrNotFound) {
		return st, err
	}

	return st, nil
}

// State returns the current battle state.
func (s *BattleService) State(ctx context.Context) (battle.State, error) {
	return CurrentState(ctx, s.store)
}

// SetPhase replaces the current phase. Always succeeds for a valid phase;
// there is no queued or pending transition.
func (s *BattleService) SetPhase(ctx context.Context, phase battle.Phase) error {
	if err := s.store.SetMeta(ctx, models.MetaKeyPhase, string(phase)); err != nil {
		return err
	}
	metrics.PhaseTransitions.WithLabelValues(string(phase)).Inc()
	log.Info().Str("phase", string(phase)).Msg("phase changed")
	return nil
}

// SetDay replaces the day counter.
func (s *BattleService) SetDay(ctx context.Context, day int) error {
	return s.store.SetMeta(ctx, models.MetaKeyDay, strconv.Itoa(day))
}

// SetRound replaces the round counter. Purchases written afterwards are
// labeled with the new round.
func (s *BattleService) SetRound(ctx context.Context, round int) error {
	return s.store.SetMeta(ctx, models.MetaKeyRound, strconv.Itoa(round))
}

// Reset clears all battle data and re-seeds metadata for a fresh battle:
// phase open, day 1, round 1, new battle id. The clear and the re-seed run
// in one transaction so a partially cleared battle is never observable.
// Previously issued tokens are gone afterwards and resolve to INVALID_TOKEN.
func (s *BattleService) Reset(ctx context.Context) (string, error) {
	battleID := uuid.New().String()
	err := s.store.Atomic(ctx, func(tx repository.Store) error {
		if err := tx.Reset(ctx); err != nil {
			return err
		}
		if err := tx.SetMeta(ctx, models.MetaKeyPhase, string(battle.PhaseOpen)); err != nil {
			return err
		}
		if err := tx.SetMeta(ctx, models.MetaKeyDay, strconv.Itoa(defaultDay)); err != nil {
			return err
		}
		if err := tx.SetMeta(ctx, models.MetaKeyRound, strconv.Itoa(defaultRound)); err != nil {
			return err
		}
		return tx.SetMeta(ctx, models.MetaKeyBattleID, battleID)
	})
	if err != nil {
		return "", err
	}

	// Cached leaderboards describe the previous battle; drop them so the
	// first post-reset read cannot serve stale sellers.
	s.lbCache.Invalidate(ctx)

	log.Info().Str("battle_id", battleID).Msg("battle reset")
	return battleID, nil
}
