package action_test

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"gridwar/internal/domain/game"
)

// activeAllianceCounts tallies active-alliance membership per agent.
func activeAllianceCounts(f *fixture) map[string]int {
	counts := map[string]int{}
	for _, a := range f.store.Alliances() {
		if a.Status != game.AllianceActive {
			continue
		}
		counts[a.InitiatorID]++
		counts[a.JoinerID]++
	}
	return counts
}

func TestConcurrentAllySameTarget(t *testing.T) {
	for iter := 0; iter < 25; iter++ {
		f := newFixture(t)
		bob := f.seedAgent("bob", 1, true, 100)
		initiators := []game.Agent{
			f.seedAgent("alice", 2, true, 100),
			f.seedAgent("carol", 3, true, 100),
			f.seedAgent("dave", 4, true, 100),
			f.seedAgent("erin", 5, true, 100),
		}

		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			successes int
		)
		for _, actor := range initiators {
			wg.Add(1)
			go func(actor game.Agent) {
				defer wg.Done()
				resp, err := f.uc.Execute(context.Background(), request(actor, game.GameAction{
					Type:     game.ActionAlly,
					TargetID: bob.OnchainID,
				}))
				if err != nil {
					t.Errorf("execute ally from %s: %v", actor.ID, err)
					return
				}
				if resp.Result.Success {
					mu.Lock()
					successes++
					mu.Unlock()
				}
			}(actor)
		}
		wg.Wait()

		if successes != 1 {
			t.Fatalf("iteration %d: %d ally actions against one target succeeded, want exactly 1", iter, successes)
		}
		for agentID, n := range activeAllianceCounts(f) {
			if n > 1 {
				t.Fatalf("iteration %d: agent %s holds %d active alliances, want at most 1", iter, agentID, n)
			}
		}
	}
}

func TestConcurrentBattleSameTarget(t *testing.T) {
	for iter := 0; iter < 25; iter++ {
		f := newFixture(t)
		bob := f.seedAgent("bob", 1, true, 100)
		attackers := []game.Agent{
			f.seedAgent("alice", 2, true, 100),
			f.seedAgent("carol", 3, true, 100),
		}

		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			successes int
		)
		for _, actor := range attackers {
			wg.Add(1)
			go func(actor game.Agent) {
				defer wg.Done()
				resp, err := f.uc.Execute(context.Background(), request(actor, game.GameAction{
					Type:     game.ActionBattle,
					TargetID: bob.OnchainID,
				}))
				if err != nil {
					t.Errorf("execute battle from %s: %v", actor.ID, err)
					return
				}
				if resp.Result.Success {
					mu.Lock()
					successes++
					mu.Unlock()
				}
			}(actor)
		}
		wg.Wait()

		if successes != 1 {
			t.Fatalf("iteration %d: %d battles against one target started, want exactly 1", iter, successes)
		}
	}
}

// A storm of randomized ally attempts must never leave any agent with more
// than one active alliance, whatever the interleaving.
func TestRandomAllyStormKeepsSingleAllianceInvariant(t *testing.T) {
	f := newFixture(t)
	const agentCount = 8
	agents := make([]game.Agent, 0, agentCount)
	for i := 0; i < agentCount; i++ {
		agents = append(agents, f.seedAgent(fmt.Sprintf("agent-%d", i), int64(i+1), true, 100))
	}

	type attempt struct{ actor, target int }
	rng := rand.New(rand.NewSource(11))
	attempts := make([]attempt, 0, 64)
	for len(attempts) < 64 {
		a, b := rng.Intn(agentCount), rng.Intn(agentCount)
		if a == b {
			continue
		}
		attempts = append(attempts, attempt{actor: a, target: b})
	}

	var wg sync.WaitGroup
	for _, at := range attempts {
		wg.Add(1)
		go func(actor game.Agent, targetOnchainID int64) {
			defer wg.Done()
			if _, err := f.uc.Execute(context.Background(), request(actor, game.GameAction{
				Type:     game.ActionAlly,
				TargetID: targetOnchainID,
			})); err != nil {
				t.Errorf("execute ally from %s: %v", actor.ID, err)
			}
		}(agents[at.actor], agents[at.target].OnchainID)
	}
	wg.Wait()

	for agentID, n := range activeAllianceCounts(f) {
		if n > 1 {
			t.Fatalf("agent %s holds %d active alliances, want at most 1", agentID, n)
		}
	}
}
