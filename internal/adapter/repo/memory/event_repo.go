package memory

import (
	"context"

	"gridwar/internal/domain/game"
)

type EventRepo struct {
	store *Store
}

func NewEventRepo(store *Store) EventRepo {
	return EventRepo{store: store}
}

func (r EventRepo) Append(_ context.Context, events []game.DomainEvent) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.events = append(r.store.events, events...)
	return nil
}

func (r EventRepo) ListByGameAndAgent(_ context.Context, gameID, agentID string, limit int) ([]game.DomainEvent, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]game.DomainEvent, 0, limit)
	for i := len(r.store.events) - 1; i >= 0 && len(out) < limit; i-- {
		e := r.store.events[i]
		if e.GameID == gameID && e.AgentID == agentID {
			out = append(out, e)
		}
	}
	return out, nil
}
