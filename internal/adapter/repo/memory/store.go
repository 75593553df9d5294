package memory

import (
	"sync"

	"gridwar/internal/app/ports"
	"gridwar/internal/domain/game"
)

// Store backs the in-memory repositories used in tests and local runs.
// txMu serializes whole transactions; mu guards individual map accesses.
type Store struct {
	txMu      sync.Mutex
	mu        sync.RWMutex
	agents    map[string]game.Agent
	alliances map[string]game.Alliance
	battles   map[string]game.Battle
	cooldowns map[string]game.Cooldown
	ignores   map[string]ports.IgnoreRecord
	events    []game.DomainEvent
}

func NewStore() *Store {
	return &Store{
		agents:    make(map[string]game.Agent),
		alliances: make(map[string]game.Alliance),
		battles:   make(map[string]game.Battle),
		cooldowns: make(map[string]game.Cooldown),
		ignores:   make(map[string]ports.IgnoreRecord),
	}
}

func agentKey(gameID, agentID string) string {
	return gameID + "::" + agentID
}

func (s *Store) SeedAgent(agent game.Agent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agents[agentKey(agent.GameID, agent.ID)] = agent
}

func (s *Store) SeedBattle(battle game.Battle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.battles[battle.ID] = battle
}

func (s *Store) SeedAlliance(alliance game.Alliance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alliances[alliance.ID] = alliance
}

func (s *Store) Agent(gameID, agentID string) (game.Agent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	agent, ok := s.agents[agentKey(gameID, agentID)]
	return agent, ok
}

func (s *Store) Battle(battleID string) (game.Battle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	battle, ok := s.battles[battleID]
	return battle, ok
}

func (s *Store) Alliances() []game.Alliance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]game.Alliance, 0, len(s.alliances))
	for _, a := range s.alliances {
		out = append(out, a)
	}
	return out
}

func (s *Store) Events() []game.DomainEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]game.DomainEvent, len(s.events))
	copy(out, s.events)
	return out
}
