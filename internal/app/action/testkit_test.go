package action_test

import (
	"testing"
	"time"

	"gridwar/internal/adapter/chain/mock"
	metricsinmem "gridwar/internal/adapter/metrics/inmemory"
	"gridwar/internal/adapter/repo/memory"
	worldruntime "gridwar/internal/adapter/world/runtime"
	"gridwar/internal/app/action"
	"gridwar/internal/domain/game"
)

const (
	testGameID    = "game-1"
	testGameChain = int64(7)
)

// fixture wires the executor against the in-memory backend and a recording
// settlement client, with the clock frozen.
type fixture struct {
	store      *memory.Store
	cooldowns  memory.CooldownRepo
	settlement *mock.Client
	metrics    *metricsinmem.Recorder
	uc         action.UseCase
	now        time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	settlement := &mock.Client{}
	metrics := metricsinmem.NewRecorder()
	cooldowns := memory.NewCooldownRepo(store)

	moveCfg := worldruntime.DefaultConfig()
	moveCfg.BaseDelay = time.Hour
	moveCfg.Now = func() time.Time { return now }

	uc := action.UseCase{
		TxManager:    memory.NewTxManager(store),
		AgentRepo:    memory.NewAgentRepo(store),
		AllianceRepo: memory.NewAllianceRepo(store),
		BattleRepo:   memory.NewBattleRepo(store),
		CooldownRepo: cooldowns,
		IgnoreRepo:   memory.NewIgnoreRepo(store),
		EventRepo:    memory.NewEventRepo(store),
		Movement:     worldruntime.NewProvider(cooldowns, moveCfg),
		Settlement:   settlement,
		Metrics:      metrics,
		Cooldowns: action.CooldownDurations{
			Alliance: 4 * time.Hour,
			Battle:   time.Hour,
		},
		Now: func() time.Time { return now },
	}

	return &fixture{
		store:      store,
		cooldowns:  cooldowns,
		settlement: settlement,
		metrics:    metrics,
		uc:         uc,
		now:        now,
	}
}

func (f *fixture) seedAgent(id string, onchainID int64, alive bool, tokens int64) game.Agent {
	agent := game.Agent{
		ID:        id,
		OnchainID: onchainID,
		GameID:    testGameID,
		Health:    100,
		IsAlive:   alive,
		Tokens:    tokens,
		Version:   1,
	}
	f.store.SeedAgent(agent)
	return agent
}

func (f *fixture) seedActiveAlliance(id, initiatorID, joinerID string) game.Alliance {
	alliance := game.Alliance{
		ID:          id,
		GameID:      testGameID,
		InitiatorID: initiatorID,
		JoinerID:    joinerID,
		Status:      game.AllianceActive,
		FormedAt:    f.now.Add(-time.Hour),
	}
	f.store.SeedAlliance(alliance)
	return alliance
}

func request(actor game.Agent, act game.GameAction) action.Request {
	return action.Request{
		Context: game.ActionContext{
			GameID:         testGameID,
			GameOnchainID:  testGameChain,
			AgentID:        actor.ID,
			AgentOnchainID: actor.OnchainID,
		},
		Action: act,
	}
}

func rejectionMessage(t *testing.T, resp action.Response) string {
	t.Helper()
	if resp.Result.Success {
		t.Fatal("expected a rejected action")
	}
	if resp.Result.Feedback.Error == nil {
		t.Fatal("rejected action carries no feedback error")
	}
	return resp.Result.Feedback.Error.Message
}
