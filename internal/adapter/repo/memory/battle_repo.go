package memory

import (
	"context"
	"time"

	"gridwar/internal/app/ports"
	"gridwar/internal/domain/game"
)

type BattleRepo struct {
	store *Store
}

func NewBattleRepo(store *Store) BattleRepo {
	return BattleRepo{store: store}
}

func (r BattleRepo) Create(_ context.Context, battle game.Battle) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.battles[battle.ID]; ok {
		return ports.ErrConflict
	}
	r.store.battles[battle.ID] = battle
	return nil
}

func (r BattleRepo) GetByID(_ context.Context, battleID string) (game.Battle, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	battle, ok := r.store.battles[battleID]
	if !ok {
		return game.Battle{}, ports.ErrNotFound
	}
	return battle, nil
}

func (r BattleRepo) ActiveByAgentID(_ context.Context, gameID, agentID string) (game.Battle, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, b := range r.store.battles {
		if b.GameID != gameID || b.Status != game.BattleActive {
			continue
		}
		for _, id := range b.ParticipantIDs() {
			if id == agentID {
				return b, nil
			}
		}
	}
	return game.Battle{}, ports.ErrNotFound
}

func (r BattleRepo) ListDue(_ context.Context, cutoff time.Time) ([]game.Battle, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []game.Battle
	for _, b := range r.store.battles {
		if b.Status == game.BattleActive && !b.StartedAt.After(cutoff) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r BattleRepo) MarkResolved(_ context.Context, battleID, winnerID string, endedAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	b, ok := r.store.battles[battleID]
	if !ok {
		return ports.ErrNotFound
	}
	if b.Status != game.BattleActive {
		return ports.ErrConflict
	}
	b.Status = game.BattleResolved
	b.WinnerID = &winnerID
	b.EndedAt = &endedAt
	r.store.battles[battleID] = b
	return nil
}
