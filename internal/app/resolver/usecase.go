package resolver

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"gridwar/internal/app/ports"
	"gridwar/internal/domain/combat"
	"gridwar/internal/domain/game"

	"github.com/google/uuid"
)

// UseCase sweeps matured Active battles and drives each one through its
// single Active -> Resolved transition. The status CAS inside MarkResolved is
// the only coordination needed between concurrent resolver instances: the
// loser of the race observes ErrConflict and no-ops.
type UseCase struct {
	TxManager      ports.TxManager
	AgentRepo      ports.AgentRepository
	BattleRepo     ports.BattleRepository
	EventRepo      ports.EventRepository
	Settlement     ports.SettlementClient
	Publisher      ports.EventPublisher
	Metrics        ports.ResolverMetrics
	CombatDuration time.Duration
	Rand           *rand.Rand
	Now            func() time.Time
}

type Report struct {
	Scanned  int
	Resolved int
	Skipped  int
	Failed   int
}

// ResolveDue processes every battle whose combat duration has elapsed. A
// failure in one battle is logged and counted, never allowed to block the
// rest of the sweep.
func (u UseCase) ResolveDue(ctx context.Context) (Report, error) {
	nowFn := u.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	now := nowFn()

	due, err := u.BattleRepo.ListDue(ctx, now.Add(-u.CombatDuration))
	if err != nil {
		return Report{}, fmt.Errorf("list due battles: %w", err)
	}

	report := Report{Scanned: len(due)}
	for _, battle := range due {
		switch err := u.resolveOne(ctx, battle, now); {
		case err == nil:
			report.Resolved++
			if u.Metrics != nil {
				u.Metrics.RecordResolved(battle.Type)
			}
		case errors.Is(err, ports.ErrConflict):
			// Another instance got there first.
			report.Skipped++
			if u.Metrics != nil {
				u.Metrics.RecordResolveSkipped()
			}
		default:
			report.Failed++
			log.Printf("resolve battle %s (game %s): %v", battle.ID, battle.GameID, err)
			if u.Metrics != nil {
				u.Metrics.RecordResolveFailure()
			}
		}
	}
	return report, nil
}

func (u UseCase) resolveOne(ctx context.Context, battle game.Battle, now time.Time) error {
	var (
		events []game.DomainEvent
		dead   []game.Agent
		won    wonSide
	)
	err := u.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		agents, err := u.AgentRepo.ListByIDs(txCtx, battle.GameID, battle.ParticipantIDs())
		if err != nil {
			return fmt.Errorf("load participants: %w", err)
		}
		byID := make(map[string]game.Agent, len(agents))
		for _, a := range agents {
			byID[a.ID] = a
		}

		sideA, membersA := buildSide(byID, battle.AttackerID, battle.AttackerAllyID)
		sideB, membersB := buildSide(byID, battle.DefenderID, battle.DefenderAllyID)

		winnerID := battle.AttackerID
		var outcome combat.Outcome
		if len(sideA.Members) == 0 && len(sideB.Members) == 0 {
			// Everyone died before resolution; close the battle without effects.
			outcome = combat.Outcome{Winner: combat.WinnerSideA}
		} else {
			outcome = combat.Resolve(sideA, sideB, u.Rand)
			if outcome.Winner == combat.WinnerSideB {
				winnerID = battle.DefenderID
			}
		}

		// The CAS is the idempotency guard: a battle that is no longer Active
		// yields ErrConflict and none of the mutations below run.
		if err := u.BattleRepo.MarkResolved(txCtx, battle.ID, winnerID, now); err != nil {
			return err
		}

		losers := membersB
		if outcome.Winner == combat.WinnerSideB {
			losers = membersA
		}
		mustDie := map[string]bool{}
		for _, id := range outcome.AgentsToDie {
			mustDie[id] = true
		}

		for _, loser := range losers {
			next := loser
			next.Health = combat.ApplyHealthLoss(loser.Health, outcome.PercentageLost)
			if next.Health == 0 || mustDie[loser.ID] {
				deathAt := now
				next.IsAlive = false
				next.DeathAt = &deathAt
				dead = append(dead, next)
			}
			next.Version++
			if err := u.AgentRepo.SaveWithVersion(txCtx, next, loser.Version); err != nil {
				return fmt.Errorf("save loser %s: %w", loser.ID, err)
			}
		}

		events = append(events, game.DomainEvent{
			ID:         uuid.NewString(),
			Type:       "battle_resolved",
			GameID:     battle.GameID,
			AgentID:    winnerID,
			OccurredAt: now,
			Payload: map[string]any{
				"battle_id":       battle.ID,
				"battle_type":     string(battle.Type),
				"winner_id":       winnerID,
				"percentage_lost": outcome.PercentageLost,
				"tokens_at_stake": outcome.TotalTokensAtStake,
			},
		})
		for _, d := range dead {
			events = append(events, game.DomainEvent{
				ID:         uuid.NewString(),
				Type:       "agent_died",
				GameID:     battle.GameID,
				AgentID:    d.ID,
				OccurredAt: now,
				Payload:    map[string]any{"battle_id": battle.ID},
			})
		}
		if err := u.EventRepo.Append(txCtx, events); err != nil {
			return fmt.Errorf("append events: %w", err)
		}

		won = wonSide{
			winnerID:       winnerID,
			attackerWon:    winnerID == battle.AttackerID,
			percentageLost: outcome.PercentageLost,
		}
		return nil
	})
	if err != nil {
		return err
	}

	u.settle(ctx, battle, won, dead)

	if u.Publisher != nil {
		u.Publisher.Publish(events)
	}
	return nil
}

type wonSide struct {
	winnerID       string
	attackerWon    bool
	percentageLost int
}

// settle mirrors the resolution on chain. Failures are logged only; the
// committed local resolution stands and the chain catches up later.
func (u UseCase) settle(ctx context.Context, battle game.Battle, won wonSide, dead []game.Agent) {
	if u.Settlement == nil {
		return
	}

	winner, err := u.AgentRepo.GetByID(ctx, battle.GameID, won.winnerID)
	if err != nil {
		log.Printf("settlement lookup for battle %s winner %s: %v", battle.ID, won.winnerID, err)
		return
	}
	deadOnchain := make([]int64, 0, len(dead))
	for _, d := range dead {
		deadOnchain = append(deadOnchain, d.OnchainID)
	}

	if _, err := u.Settlement.ResolveBattle(ctx, ports.BattleResolveParams{
		GameOnchainID:      battle.GameOnchainID,
		BattleID:           battle.ID,
		Topology:           battle.Type,
		WinnerOnchainID:    winner.OnchainID,
		AttackerWon:        won.attackerWon,
		TransferPercentage: won.percentageLost,
		DeadOnchainIDs:     deadOnchain,
	}); err != nil {
		log.Printf("settle battle %s resolution: %v", battle.ID, err)
	}
	for _, d := range dead {
		if _, err := u.Settlement.KillAgent(ctx, battle.GameOnchainID, d.OnchainID); err != nil {
			log.Printf("settle death of agent %s (battle %s): %v", d.ID, battle.ID, err)
		}
	}
}

func buildSide(byID map[string]game.Agent, primaryID string, allyID *string) (combat.Side, []game.Agent) {
	var (
		side    combat.Side
		members []game.Agent
	)
	add := func(id string) {
		agent, ok := byID[id]
		if !ok || !agent.IsAlive {
			return
		}
		side.Members = append(side.Members, combat.Member{AgentID: agent.ID, Stake: agent.Tokens})
		members = append(members, agent)
	}
	add(primaryID)
	if allyID != nil {
		add(*allyID)
	}
	return side, members
}
