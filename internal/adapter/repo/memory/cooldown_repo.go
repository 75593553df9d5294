package memory

import (
	"context"
	"time"

	"gridwar/internal/app/ports"
	"gridwar/internal/domain/game"
)

type CooldownRepo struct {
	store *Store
}

func NewCooldownRepo(store *Store) CooldownRepo {
	return CooldownRepo{store: store}
}

func (r CooldownRepo) ActiveByAgentAndType(_ context.Context, gameID, agentID string, cooldownType game.CooldownType, now time.Time) (game.Cooldown, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var (
		latest game.Cooldown
		found  bool
	)
	for _, cd := range r.store.cooldowns {
		if cd.GameID != gameID || cd.AgentID != agentID || cd.Type != cooldownType {
			continue
		}
		if !cd.ActiveAt(now) {
			continue
		}
		if !found || cd.EndsAt.After(latest.EndsAt) {
			latest = cd
			found = true
		}
	}
	if !found {
		return game.Cooldown{}, ports.ErrNotFound
	}
	return latest, nil
}

func (r CooldownRepo) Create(_ context.Context, cooldown game.Cooldown) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.cooldowns[cooldown.ID] = cooldown
	return nil
}

func (r CooldownRepo) DeleteExpired(_ context.Context, gameID string, now time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for id, cd := range r.store.cooldowns {
		if cd.GameID == gameID && !cd.ActiveAt(now) {
			delete(r.store.cooldowns, id)
		}
	}
	return nil
}
