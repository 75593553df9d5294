package resolver_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"gridwar/internal/adapter/chain/mock"
	metricsinmem "gridwar/internal/adapter/metrics/inmemory"
	"gridwar/internal/adapter/repo/memory"
	"gridwar/internal/app/resolver"
	"gridwar/internal/domain/combat"
	"gridwar/internal/domain/game"
)

const testGameID = "game-1"

type fixture struct {
	store      *memory.Store
	settlement *mock.Client
	metrics    *metricsinmem.Recorder
	uc         resolver.UseCase
	now        time.Time
}

func newFixture(t *testing.T, seed int64) *fixture {
	t.Helper()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	settlement := &mock.Client{}
	metrics := metricsinmem.NewRecorder()

	uc := resolver.UseCase{
		TxManager:      memory.NewTxManager(store),
		AgentRepo:      memory.NewAgentRepo(store),
		BattleRepo:     memory.NewBattleRepo(store),
		EventRepo:      memory.NewEventRepo(store),
		Settlement:     settlement,
		Metrics:        metrics,
		CombatDuration: time.Hour,
		Rand:           rand.New(rand.NewSource(seed)),
		Now:            func() time.Time { return now },
	}
	return &fixture{store: store, settlement: settlement, metrics: metrics, uc: uc, now: now}
}

func (f *fixture) seedAgent(id string, onchainID int64, health int, tokens int64) game.Agent {
	agent := game.Agent{
		ID:        id,
		OnchainID: onchainID,
		GameID:    testGameID,
		Health:    health,
		IsAlive:   true,
		Tokens:    tokens,
		Version:   1,
	}
	f.store.SeedAgent(agent)
	return agent
}

func (f *fixture) seedMaturedBattle(attackerID, defenderID string, tokens int64) game.Battle {
	startedAt := f.now.Add(-2 * time.Hour)
	battle := game.Battle{
		GameID:        testGameID,
		GameOnchainID: 7,
		AttackerID:    attackerID,
		DefenderID:    defenderID,
		Type:          game.BattleSimple,
		Status:        game.BattleActive,
		TokensStaked:  tokens,
		StartedAt:     startedAt,
	}
	battle.ID = combat.GenerateBattleID(battle.ParticipantIDs(), startedAt, testGameID)
	f.store.SeedBattle(battle)
	return battle
}

func settlementMethods(calls []mock.Call) []string {
	out := make([]string, 0, len(calls))
	for _, c := range calls {
		out = append(out, c.Method)
	}
	return out
}

func TestResolveDueMaturedBattle(t *testing.T) {
	f := newFixture(t, 1)
	f.seedAgent("alice", 1, 100, 500)
	f.seedAgent("bob", 2, 100, 500)
	seeded := f.seedMaturedBattle("alice", "bob", 1000)

	report, err := f.uc.ResolveDue(context.Background())
	if err != nil {
		t.Fatalf("resolve due: %v", err)
	}
	if report.Scanned != 1 || report.Resolved != 1 {
		t.Fatalf("report = %+v, want 1 scanned / 1 resolved", report)
	}

	battle, _ := f.store.Battle(seeded.ID)
	if battle.Status != game.BattleResolved {
		t.Fatalf("battle status = %s, want resolved", battle.Status)
	}
	if battle.WinnerID == nil || battle.EndedAt == nil {
		t.Fatal("resolved battle must carry winner and end time")
	}

	loserID := "bob"
	if *battle.WinnerID == "bob" {
		loserID = "alice"
	}
	winner, _ := f.store.Agent(testGameID, *battle.WinnerID)
	loser, _ := f.store.Agent(testGameID, loserID)
	if winner.Health != 100 {
		t.Fatalf("winner health = %d, want untouched 100", winner.Health)
	}
	if loser.Health < 70 || loser.Health > 80 {
		t.Fatalf("loser health = %d, want within [70,80]", loser.Health)
	}
	if loser.Version != 2 {
		t.Fatalf("loser version = %d, want bumped to 2", loser.Version)
	}

	methods := settlementMethods(f.settlement.Calls())
	if len(methods) == 0 || methods[0] != "resolve_battle" {
		t.Fatalf("settlement methods = %v, want resolve_battle first", methods)
	}

	var sawResolved bool
	for _, e := range f.store.Events() {
		if e.Type == "battle_resolved" {
			sawResolved = true
		}
	}
	if !sawResolved {
		t.Fatal("no battle_resolved event appended")
	}
	if f.metrics.Snapshot().BattlesResolved != 1 {
		t.Fatal("resolved metric not recorded")
	}
}

// staleListRepo replays a pre-resolution battle list, simulating a second
// resolver instance that scanned before the first one committed.
type staleListRepo struct {
	memory.BattleRepo
	stale []game.Battle
}

func (r staleListRepo) ListDue(context.Context, time.Time) ([]game.Battle, error) {
	return r.stale, nil
}

func TestResolveDueRacingInstanceSkips(t *testing.T) {
	f := newFixture(t, 1)
	f.seedAgent("alice", 1, 100, 500)
	f.seedAgent("bob", 2, 100, 500)
	seeded := f.seedMaturedBattle("alice", "bob", 1000)

	if _, err := f.uc.ResolveDue(context.Background()); err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	aliceAfter, _ := f.store.Agent(testGameID, "alice")
	bobAfter, _ := f.store.Agent(testGameID, "bob")
	eventsAfter := len(f.store.Events())

	// The racing instance still sees the battle as Active.
	racing := f.uc
	racing.BattleRepo = staleListRepo{
		BattleRepo: memory.NewBattleRepo(f.store),
		stale:      []game.Battle{seeded},
	}

	report, err := racing.ResolveDue(context.Background())
	if err != nil {
		t.Fatalf("racing resolve: %v", err)
	}
	if report.Skipped != 1 || report.Resolved != 0 {
		t.Fatalf("report = %+v, want 1 skipped / 0 resolved", report)
	}

	aliceFinal, _ := f.store.Agent(testGameID, "alice")
	bobFinal, _ := f.store.Agent(testGameID, "bob")
	if aliceFinal != aliceAfter || bobFinal != bobAfter {
		t.Fatal("racing instance mutated agent state")
	}
	if len(f.store.Events()) != eventsAfter {
		t.Fatal("racing instance appended events")
	}
}

func TestResolveDueLowHealthLoserDies(t *testing.T) {
	f := newFixture(t, 3)
	f.seedAgent("alice", 1, 5, 100)
	f.seedAgent("bob", 2, 5, 100)
	seeded := f.seedMaturedBattle("alice", "bob", 200)

	report, err := f.uc.ResolveDue(context.Background())
	if err != nil {
		t.Fatalf("resolve due: %v", err)
	}
	if report.Resolved != 1 {
		t.Fatalf("report = %+v, want 1 resolved", report)
	}

	battle, _ := f.store.Battle(seeded.ID)
	loserID := "bob"
	if *battle.WinnerID == "bob" {
		loserID = "alice"
	}
	loser, _ := f.store.Agent(testGameID, loserID)
	if loser.Health != 0 {
		t.Fatalf("loser health = %d, want depleted to 0", loser.Health)
	}
	if loser.IsAlive || loser.DeathAt == nil {
		t.Fatalf("loser must be dead with a death time, got %+v", loser)
	}

	var sawDeath, sawKill bool
	for _, e := range f.store.Events() {
		if e.Type == "agent_died" {
			sawDeath = true
		}
	}
	for _, m := range settlementMethods(f.settlement.Calls()) {
		if m == "kill_agent" {
			sawKill = true
		}
	}
	if !sawDeath {
		t.Fatal("no agent_died event appended")
	}
	if !sawKill {
		t.Fatal("death was not mirrored with kill_agent")
	}
}

func TestResolveDueSettlementFailureKeepsResolution(t *testing.T) {
	f := newFixture(t, 1)
	f.seedAgent("alice", 1, 100, 500)
	f.seedAgent("bob", 2, 100, 500)
	seeded := f.seedMaturedBattle("alice", "bob", 1000)
	f.settlement.FailWith = errors.New("gateway down")

	report, err := f.uc.ResolveDue(context.Background())
	if err != nil {
		t.Fatalf("resolve due: %v", err)
	}
	if report.Resolved != 1 {
		t.Fatalf("report = %+v, want 1 resolved despite settlement failure", report)
	}
	battle, _ := f.store.Battle(seeded.ID)
	if battle.Status != game.BattleResolved {
		t.Fatal("settlement failure must not undo the local resolution")
	}
}

func TestResolveDueStakeWeightsTheOdds(t *testing.T) {
	wins := 0
	const trials = 300
	for i := 0; i < trials; i++ {
		f := newFixture(t, int64(i))
		f.seedAgent("rich", 1, 100, 900)
		f.seedAgent("poor", 2, 100, 100)
		seeded := f.seedMaturedBattle("rich", "poor", 1000)

		if _, err := f.uc.ResolveDue(context.Background()); err != nil {
			t.Fatalf("resolve due: %v", err)
		}
		battle, _ := f.store.Battle(seeded.ID)
		if *battle.WinnerID == "rich" {
			wins++
		}
	}
	// Expected win rate is 0.9; anything near even odds means the stake
	// weighting is broken.
	if wins < trials*3/4 {
		t.Fatalf("rich side won %d/%d, want a clear stake-weighted majority", wins, trials)
	}
}
