package memory

import (
	"context"
	"time"

	"gridwar/internal/app/ports"
	"gridwar/internal/domain/game"
)

type AllianceRepo struct {
	store *Store
}

func NewAllianceRepo(store *Store) AllianceRepo {
	return AllianceRepo{store: store}
}

func (r AllianceRepo) ActiveByAgentID(_ context.Context, gameID, agentID string) (game.Alliance, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, a := range r.store.alliances {
		if a.GameID == gameID && a.Status == game.AllianceActive &&
			(a.InitiatorID == agentID || a.JoinerID == agentID) {
			return a, nil
		}
	}
	return game.Alliance{}, ports.ErrNotFound
}

func (r AllianceRepo) ActiveByPair(_ context.Context, gameID, agentA, agentB string) (game.Alliance, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, a := range r.store.alliances {
		if a.GameID != gameID || a.Status != game.AllianceActive {
			continue
		}
		if (a.InitiatorID == agentA && a.JoinerID == agentB) ||
			(a.InitiatorID == agentB && a.JoinerID == agentA) {
			return a, nil
		}
	}
	return game.Alliance{}, ports.ErrNotFound
}

func (r AllianceRepo) LatestBrokenByAgentID(_ context.Context, gameID, agentID string) (game.Alliance, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var (
		latest game.Alliance
		found  bool
	)
	for _, a := range r.store.alliances {
		if a.GameID != gameID || a.Status != game.AllianceBroken || a.EndedAt == nil {
			continue
		}
		if a.InitiatorID != agentID && a.JoinerID != agentID {
			continue
		}
		if !found || a.EndedAt.After(*latest.EndedAt) {
			latest = a
			found = true
		}
	}
	if !found {
		return game.Alliance{}, ports.ErrNotFound
	}
	return latest, nil
}

func (r AllianceRepo) Create(_ context.Context, alliance game.Alliance) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.alliances[alliance.ID]; ok {
		return ports.ErrConflict
	}
	r.store.alliances[alliance.ID] = alliance
	return nil
}

func (r AllianceRepo) MarkBroken(_ context.Context, allianceID string, endedAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	a, ok := r.store.alliances[allianceID]
	if !ok {
		return ports.ErrNotFound
	}
	if a.Status != game.AllianceActive {
		return ports.ErrConflict
	}
	a.Status = game.AllianceBroken
	a.EndedAt = &endedAt
	r.store.alliances[allianceID] = a
	return nil
}
