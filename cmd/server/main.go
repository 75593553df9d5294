package main

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"os"
	"time"

	"gridwar/internal/adapter/chain/mock"
	"gridwar/internal/adapter/chain/rpc"
	"gridwar/internal/adapter/events/ws"
	httpadapter "gridwar/internal/adapter/http"
	metricsinmem "gridwar/internal/adapter/metrics/inmemory"
	gormrepo "gridwar/internal/adapter/repo/gorm"
	worldruntime "gridwar/internal/adapter/world/runtime"
	"gridwar/internal/app/action"
	"gridwar/internal/app/observe"
	"gridwar/internal/app/ports"
	"gridwar/internal/app/replay"
	"gridwar/internal/app/resolver"
	"gridwar/internal/config"
	"gridwar/internal/domain/game"

	"github.com/cloudwego/hertz/pkg/app/server"
)

const demoGameID = "demo-game"

func main() {
	cfg, err := config.Load(os.Getenv("GRIDWAR_CONFIG"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.DatabaseDSN == "" {
		log.Fatal("GRIDWAR_DB_DSN is required")
	}

	db, err := gormrepo.OpenPostgres(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("open postgres: %v", err)
	}
	if err := gormrepo.ApplyMigrations(context.Background(), db, cfg.MigrationsDir); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	agentRepo := gormrepo.NewAgentRepo(db)
	allianceRepo := gormrepo.NewAllianceRepo(db)
	battleRepo := gormrepo.NewBattleRepo(db)
	cooldownRepo := gormrepo.NewCooldownRepo(db)
	ignoreRepo := gormrepo.NewIgnoreRepo(db)
	eventRepo := gormrepo.NewEventRepo(db)
	txManager := gormrepo.NewTxManager(db)

	settlement := buildSettlementClient(cfg)
	seedDemoGame(agentRepo, settlement)

	broadcaster := ws.NewBroadcaster()
	go func() {
		if err := broadcaster.ListenAndServe(cfg.EventFeedAddr); err != nil {
			log.Printf("event feed listener: %v", err)
		}
	}()

	moveCfg := worldruntime.DefaultConfig()
	moveCfg.BaseDelay = cfg.MovementDelay
	movement := worldruntime.NewProvider(cooldownRepo, moveCfg)

	kpiRecorder := metricsinmem.NewRecorder()

	resolverUC := resolver.UseCase{
		TxManager:      txManager,
		AgentRepo:      agentRepo,
		BattleRepo:     battleRepo,
		EventRepo:      eventRepo,
		Settlement:     settlement,
		Publisher:      broadcaster,
		Metrics:        kpiRecorder,
		CombatDuration: cfg.CombatDuration,
		Rand:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go resolver.Scheduler{UseCase: resolverUC, Interval: cfg.ResolverPoll}.Run(ctx)

	h := httpadapter.Handler{
		ActionUC: action.UseCase{
			TxManager:    txManager,
			AgentRepo:    agentRepo,
			AllianceRepo: allianceRepo,
			BattleRepo:   battleRepo,
			CooldownRepo: cooldownRepo,
			IgnoreRepo:   ignoreRepo,
			EventRepo:    eventRepo,
			Movement:     movement,
			Settlement:   settlement,
			Publisher:    broadcaster,
			Metrics:      kpiRecorder,
			Cooldowns: action.CooldownDurations{
				Alliance: cfg.AllianceCooldown,
				Battle:   cfg.BattleCooldown,
			},
		},
		ObserveUC: observe.UseCase{
			AgentRepo:    agentRepo,
			AllianceRepo: allianceRepo,
			BattleRepo:   battleRepo,
			CooldownRepo: cooldownRepo,
		},
		ReplayUC: replay.UseCase{Events: eventRepo},
		KPI:      kpiRecorder,
	}

	s := server.Default(server.WithHostPorts(cfg.HTTPAddr))
	h.RegisterRoutes(s)

	log.Printf("gridwar server listening on %s (event feed on %s)", cfg.HTTPAddr, cfg.EventFeedAddr)
	s.Spin()
}

func buildSettlementClient(cfg config.Config) ports.SettlementClient {
	if cfg.ChainGateway == "" {
		log.Println("no chain gateway configured, settlement calls are mocked")
		return &mock.Client{}
	}
	return rpc.New(cfg.ChainGateway)
}

// seedDemoGame makes a fresh database playable immediately: two live agents
// registered both locally and on chain.
func seedDemoGame(agents gormrepo.AgentRepo, settlement ports.SettlementClient) {
	ctx := context.Background()
	seeds := []game.Agent{
		{ID: "demo-agent-1", OnchainID: 1, GameID: demoGameID, Health: 100, IsAlive: true, Tokens: 1000, Version: 1},
		{ID: "demo-agent-2", OnchainID: 2, GameID: demoGameID, Health: 100, IsAlive: true, Tokens: 1000, Version: 1, Position: game.Position{X: 4, Y: 4}},
	}
	for _, seed := range seeds {
		_, err := agents.GetByID(ctx, seed.GameID, seed.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, ports.ErrNotFound) {
			log.Fatalf("load seed agent %s: %v", seed.ID, err)
		}
		if err := agents.SaveWithVersion(ctx, seed, 0); err != nil {
			log.Fatalf("seed agent %s: %v", seed.ID, err)
		}
		if _, err := settlement.RegisterAgent(ctx, 0, seed.OnchainID); err != nil {
			log.Printf("register seed agent %s on chain: %v", seed.ID, err)
		}
	}
}
