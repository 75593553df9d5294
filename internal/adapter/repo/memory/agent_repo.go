package memory

import (
	"context"

	"gridwar/internal/app/ports"
	"gridwar/internal/domain/game"
)

type AgentRepo struct {
	store *Store
}

func NewAgentRepo(store *Store) AgentRepo {
	return AgentRepo{store: store}
}

func (r AgentRepo) GetByID(_ context.Context, gameID, agentID string) (game.Agent, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	agent, ok := r.store.agents[agentKey(gameID, agentID)]
	if !ok {
		return game.Agent{}, ports.ErrNotFound
	}
	return agent, nil
}

func (r AgentRepo) GetByOnchainID(_ context.Context, gameID string, onchainID int64) (game.Agent, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, agent := range r.store.agents {
		if agent.GameID == gameID && agent.OnchainID == onchainID {
			return agent, nil
		}
	}
	return game.Agent{}, ports.ErrNotFound
}

func (r AgentRepo) ListByIDs(_ context.Context, gameID string, agentIDs []string) ([]game.Agent, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]game.Agent, 0, len(agentIDs))
	for _, id := range agentIDs {
		if agent, ok := r.store.agents[agentKey(gameID, id)]; ok {
			out = append(out, agent)
		}
	}
	return out, nil
}

// LockByIDs only rereads here: the store-wide transaction lock already makes
// the whole transaction body atomic, which subsumes per-row locking.
func (r AgentRepo) LockByIDs(ctx context.Context, gameID string, agentIDs []string) ([]game.Agent, error) {
	return r.ListByIDs(ctx, gameID, agentIDs)
}

func (r AgentRepo) SaveWithVersion(_ context.Context, agent game.Agent, expectedVersion int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	key := agentKey(agent.GameID, agent.ID)
	current, ok := r.store.agents[key]
	if !ok {
		if expectedVersion != 0 {
			return ports.ErrConflict
		}
		r.store.agents[key] = agent
		return nil
	}
	if current.Version != expectedVersion {
		return ports.ErrConflict
	}
	r.store.agents[key] = agent
	return nil
}
