package action

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gridwar/internal/app/ports"
	"gridwar/internal/domain/combat"
	"gridwar/internal/domain/game"

	"github.com/google/uuid"
)

var ErrInvalidRequest = errors.New("invalid action request")

type CooldownDurations struct {
	Alliance time.Duration
	Battle   time.Duration
}

// UseCase is the action executor: validate, then mutate inside one
// transaction, then settle and publish after commit.
type UseCase struct {
	TxManager    ports.TxManager
	AgentRepo    ports.AgentRepository
	AllianceRepo ports.AllianceRepository
	BattleRepo   ports.BattleRepository
	CooldownRepo ports.CooldownRepository
	IgnoreRepo   ports.IgnoreRepository
	EventRepo    ports.EventRepository
	Movement     ports.MovementProvider
	Settlement   ports.SettlementClient
	Publisher    ports.EventPublisher
	Metrics      ports.ActionMetrics
	Cooldowns    CooldownDurations
	Now          func() time.Time
}

// settleCall defers the chain call until the local transaction has committed;
// local state is the source of truth and is never rolled back on a
// settlement fault.
type settleCall func(ctx context.Context) (ports.TxReference, error)

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	if req.Context.GameID == "" || req.Context.AgentID == "" || req.Action.Type == "" {
		return Response{}, ErrInvalidRequest
	}

	nowFn := u.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	now := nowFn()

	var (
		out    Response
		settle settleCall
	)
	err := u.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := u.CooldownRepo.DeleteExpired(txCtx, req.Context.GameID, now); err != nil {
			// Active-cooldown queries filter on ends_at themselves; a failed
			// purge only delays row GC.
			log.Printf("purge expired cooldowns (game %s): %v", req.Context.GameID, err)
		}

		snap, err := u.buildSnapshot(txCtx, req, now)
		if err != nil {
			return err
		}

		feedback := Validate(snap, req.Action)
		if !feedback.IsValid {
			out = Response{Result: game.ActionResult{Success: false, Feedback: feedback}}
			return nil
		}

		events, call, err := u.apply(txCtx, req, snap, feedback, now)
		if err != nil {
			return err
		}
		if len(events) > 0 {
			if err := u.EventRepo.Append(txCtx, events); err != nil {
				return err
			}
		}
		settle = call
		out = Response{
			Result: game.ActionResult{Success: true, Feedback: feedback},
			Events: events,
		}
		return nil
	})
	if err != nil {
		var blocked *movementBlocked
		if errors.As(err, &blocked) {
			out = Response{Result: game.ActionResult{
				Success:  false,
				Feedback: game.Reject(game.ErrorMovement, blocked.reason, nil),
			}}
			if u.Metrics != nil {
				u.Metrics.RecordRejected(req.Action.Type)
			}
			return out, nil
		}
		if u.Metrics != nil {
			u.Metrics.RecordFailure()
		}
		return Response{}, err
	}

	if !out.Result.Success {
		if u.Metrics != nil {
			u.Metrics.RecordRejected(req.Action.Type)
		}
		return out, nil
	}

	if settle != nil {
		if ref, serr := settle(ctx); serr != nil {
			log.Printf("settlement failed for agent %s action %s: %v", req.Context.AgentID, req.Action.Type, serr)
			out.Result.Success = false
			out.Result.Feedback.Error = &game.FeedbackError{
				Type:    game.ErrorSettlement,
				Message: fmt.Sprintf("settlement failed: %v", serr),
				Context: map[string]any{"action_type": string(req.Action.Type)},
			}
		} else if ref != "" {
			if out.Result.Feedback.Data == nil {
				out.Result.Feedback.Data = map[string]any{}
			}
			out.Result.Feedback.Data["settlement_tx"] = string(ref)
		}
	}

	if u.Publisher != nil && len(out.Events) > 0 {
		u.Publisher.Publish(out.Events)
	}
	if u.Metrics != nil {
		u.Metrics.RecordAccepted(req.Action.Type)
	}
	return out, nil
}

func (u UseCase) buildSnapshot(ctx context.Context, req Request, now time.Time) (Snapshot, error) {
	actor, err := u.AgentRepo.GetByID(ctx, req.Context.GameID, req.Context.AgentID)
	if err != nil {
		return Snapshot{}, err
	}

	var target *game.Agent
	if isTargeted(req.Action.Type) {
		found, err := u.AgentRepo.GetByOnchainID(ctx, req.Context.GameID, req.Action.TargetID)
		switch {
		case err == nil:
			target = &found
		case errors.Is(err, ports.ErrNotFound):
			// Validation reports the missing target.
		default:
			return Snapshot{}, err
		}
	}

	// ALLY and BATTLE decide on pair state that a concurrent action could
	// change between this read and the write. Locking both agent rows holds
	// the pair stable until the surrounding transaction commits, so at most
	// one of two simultaneous actions on the same pair passes validation.
	if target != nil && locksPair(req.Action.Type) {
		locked, err := u.AgentRepo.LockByIDs(ctx, req.Context.GameID, []string{actor.ID, target.ID})
		if err != nil {
			return Snapshot{}, err
		}
		for _, a := range locked {
			switch a.ID {
			case actor.ID:
				actor = a
			case target.ID:
				fresh := a
				target = &fresh
			}
		}
	}

	snap := Snapshot{
		Now:                  now,
		Actor:                actor,
		Target:               target,
		ActorCooldowns:       map[game.CooldownType]game.Cooldown{},
		BrokenAllianceWindow: u.Cooldowns.Alliance,
	}

	if snap.ActorAlliance, err = u.optionalAlliance(ctx, req.Context.GameID, actor.ID); err != nil {
		return Snapshot{}, err
	}
	if snap.Target != nil {
		if snap.TargetAlliance, err = u.optionalAlliance(ctx, req.Context.GameID, snap.Target.ID); err != nil {
			return Snapshot{}, err
		}
	}

	if req.Action.Type == game.ActionAlly {
		broken, err := u.AllianceRepo.LatestBrokenByAgentID(ctx, req.Context.GameID, actor.ID)
		if err != nil && !errors.Is(err, ports.ErrNotFound) {
			return Snapshot{}, err
		}
		if err == nil {
			snap.ActorBrokenAlliance = &broken
		}
	}

	for _, cdType := range []game.CooldownType{game.CooldownAlliance, game.CooldownBattle} {
		cd, err := u.CooldownRepo.ActiveByAgentAndType(ctx, req.Context.GameID, actor.ID, cdType, now)
		if err != nil && !errors.Is(err, ports.ErrNotFound) {
			return Snapshot{}, err
		}
		if err == nil {
			snap.ActorCooldowns[cdType] = cd
		}
	}

	if req.Action.Type == game.ActionBattle {
		if snap.ActorActiveBattle, err = u.optionalBattle(ctx, req.Context.GameID, actor.ID); err != nil {
			return Snapshot{}, err
		}
		if snap.Target != nil {
			if snap.TargetActiveBattle, err = u.optionalBattle(ctx, req.Context.GameID, snap.Target.ID); err != nil {
				return Snapshot{}, err
			}
		}
	}

	return snap, nil
}

func (u UseCase) optionalAlliance(ctx context.Context, gameID, agentID string) (*game.Alliance, error) {
	alliance, err := u.AllianceRepo.ActiveByAgentID(ctx, gameID, agentID)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &alliance, nil
}

func (u UseCase) optionalBattle(ctx context.Context, gameID, agentID string) (*game.Battle, error) {
	battle, err := u.BattleRepo.ActiveByAgentID(ctx, gameID, agentID)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &battle, nil
}

func (u UseCase) apply(ctx context.Context, req Request, snap Snapshot, feedback game.ValidationFeedback, now time.Time) ([]game.DomainEvent, settleCall, error) {
	switch req.Action.Type {
	case game.ActionMove:
		return u.applyMove(ctx, req, snap, now)
	case game.ActionAlly:
		return u.applyAlly(ctx, req, snap, now)
	case game.ActionBreakAlliance:
		return u.applyBreakAlliance(ctx, req, snap, now)
	case game.ActionBattle:
		return u.applyBattle(ctx, req, snap, now)
	case game.ActionIgnore:
		return u.applyIgnore(ctx, req, snap, now)
	default:
		return nil, nil, ErrInvalidRequest
	}
}

func (u UseCase) applyMove(ctx context.Context, req Request, snap Snapshot, now time.Time) ([]game.DomainEvent, settleCall, error) {
	check, err := u.Movement.CanMove(ctx, req.Context.GameID, snap.Actor.ID)
	if err != nil {
		return nil, nil, err
	}
	if !check.CanMove {
		return nil, nil, &movementBlocked{reason: check.Reason}
	}

	next := snap.Actor
	next.Position = *req.Action.Coordinates
	next.Version++
	if err := u.AgentRepo.SaveWithVersion(ctx, next, snap.Actor.Version); err != nil {
		return nil, nil, err
	}

	terrain := game.TerrainAt(next.Position)
	if err := u.Movement.ApplyTerrainEffect(ctx, req.Context.GameID, snap.Actor.ID, terrain); err != nil {
		return nil, nil, err
	}

	events := []game.DomainEvent{u.event("agent_moved", req.Context, now, map[string]any{
		"x":       next.Position.X,
		"y":       next.Position.Y,
		"terrain": string(terrain),
	})}
	return events, nil, nil
}

// movementBlocked converts a movement-provider denial back into a rejection
// result instead of a transaction error.
type movementBlocked struct{ reason string }

func (e *movementBlocked) Error() string { return e.reason }

func (u UseCase) applyAlly(ctx context.Context, req Request, snap Snapshot, now time.Time) ([]game.DomainEvent, settleCall, error) {
	target := *snap.Target
	alliance := game.Alliance{
		ID:          uuid.NewString(),
		GameID:      req.Context.GameID,
		InitiatorID: snap.Actor.ID,
		JoinerID:    target.ID,
		Status:      game.AllianceActive,
		FormedAt:    now,
	}
	if err := u.AllianceRepo.Create(ctx, alliance); err != nil {
		return nil, nil, err
	}
	for _, agentID := range []string{snap.Actor.ID, target.ID} {
		if err := u.createCooldown(ctx, req.Context.GameID, agentID, game.CooldownAlliance, now.Add(u.Cooldowns.Alliance)); err != nil {
			return nil, nil, err
		}
	}

	events := []game.DomainEvent{u.event("alliance_formed", req.Context, now, map[string]any{
		"alliance_id": alliance.ID,
		"initiator":   snap.Actor.ID,
		"joiner":      target.ID,
		"message":     req.Action.Message,
	})}
	settle := func(callCtx context.Context) (ports.TxReference, error) {
		return u.Settlement.FormAlliance(callCtx, req.Context.GameOnchainID, snap.Actor.OnchainID, target.OnchainID)
	}
	return events, settle, nil
}

func (u UseCase) applyBreakAlliance(ctx context.Context, req Request, snap Snapshot, now time.Time) ([]game.DomainEvent, settleCall, error) {
	target := *snap.Target
	pair := *snap.ActorAlliance
	if err := u.AllianceRepo.MarkBroken(ctx, pair.ID, now); err != nil {
		return nil, nil, err
	}
	for _, agentID := range []string{snap.Actor.ID, target.ID} {
		if err := u.createCooldown(ctx, req.Context.GameID, agentID, game.CooldownAlliance, now.Add(u.Cooldowns.Alliance)); err != nil {
			return nil, nil, err
		}
	}

	events := []game.DomainEvent{u.event("alliance_broken", req.Context, now, map[string]any{
		"alliance_id": pair.ID,
	})}
	settle := func(callCtx context.Context) (ports.TxReference, error) {
		return u.Settlement.BreakAlliance(callCtx, req.Context.GameOnchainID, snap.Actor.OnchainID, target.OnchainID)
	}
	return events, settle, nil
}

func (u UseCase) applyBattle(ctx context.Context, req Request, snap Snapshot, now time.Time) ([]game.DomainEvent, settleCall, error) {
	target := *snap.Target

	attackerAlly, err := u.livingPartner(ctx, req.Context.GameID, snap.ActorAlliance, snap.Actor.ID)
	if err != nil {
		return nil, nil, err
	}
	defenderAlly, err := u.livingPartner(ctx, req.Context.GameID, snap.TargetAlliance, target.ID)
	if err != nil {
		return nil, nil, err
	}

	battle := game.Battle{
		GameID:        req.Context.GameID,
		GameOnchainID: req.Context.GameOnchainID,
		AttackerID:    snap.Actor.ID,
		DefenderID:    target.ID,
		Status:        game.BattleActive,
		StartedAt:     now,
	}
	stake := snap.Actor.Tokens + target.Tokens
	if attackerAlly != nil {
		battle.AttackerAllyID = &attackerAlly.ID
		stake += attackerAlly.Tokens
	}
	if defenderAlly != nil {
		battle.DefenderAllyID = &defenderAlly.ID
		stake += defenderAlly.Tokens
	}
	battle.Type = game.InferBattleType(battle.AttackerAllyID, battle.DefenderAllyID)
	battle.TokensStaked = stake
	battle.ID = combat.GenerateBattleID(battle.ParticipantIDs(), battle.StartedAt, battle.GameID)

	if err := u.BattleRepo.Create(ctx, battle); err != nil {
		return nil, nil, err
	}
	if err := u.createCooldown(ctx, req.Context.GameID, snap.Actor.ID, game.CooldownBattle, now.Add(u.Cooldowns.Battle)); err != nil {
		return nil, nil, err
	}

	events := []game.DomainEvent{u.event("battle_started", req.Context, now, map[string]any{
		"battle_id":     battle.ID,
		"battle_type":   string(battle.Type),
		"attacker_id":   battle.AttackerID,
		"defender_id":   battle.DefenderID,
		"tokens_staked": battle.TokensStaked,
	})}
	settle := func(callCtx context.Context) (ports.TxReference, error) {
		return u.Settlement.StartBattle(callCtx, ports.BattleStartParams{
			GameOnchainID:     req.Context.GameOnchainID,
			BattleID:          battle.ID,
			Topology:          battle.Type,
			AttackerOnchainID: snap.Actor.OnchainID,
			DefenderOnchainID: target.OnchainID,
		})
	}
	return events, settle, nil
}

func (u UseCase) applyIgnore(ctx context.Context, req Request, snap Snapshot, now time.Time) ([]game.DomainEvent, settleCall, error) {
	target := *snap.Target
	record := ports.IgnoreRecord{
		ID:       uuid.NewString(),
		GameID:   req.Context.GameID,
		AgentID:  snap.Actor.ID,
		TargetID: target.ID,
		AddedAt:  now,
	}
	if err := u.IgnoreRepo.Create(ctx, record); err != nil {
		return nil, nil, err
	}
	events := []game.DomainEvent{u.event("agent_ignored", req.Context, now, map[string]any{
		"target_id": target.ID,
	})}
	return events, nil, nil
}

// livingPartner resolves an alliance into a combat-eligible ally record.
func (u UseCase) livingPartner(ctx context.Context, gameID string, alliance *game.Alliance, agentID string) (*game.Agent, error) {
	if alliance == nil {
		return nil, nil
	}
	partnerID, ok := alliance.PartnerOf(agentID)
	if !ok {
		return nil, nil
	}
	partner, err := u.AgentRepo.GetByID(ctx, gameID, partnerID)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !partner.IsAlive {
		return nil, nil
	}
	return &partner, nil
}

func (u UseCase) createCooldown(ctx context.Context, gameID, agentID string, cdType game.CooldownType, endsAt time.Time) error {
	return u.CooldownRepo.Create(ctx, game.Cooldown{
		ID:      uuid.NewString(),
		GameID:  gameID,
		AgentID: agentID,
		Type:    cdType,
		EndsAt:  endsAt,
	})
}

func (u UseCase) event(eventType string, actx game.ActionContext, now time.Time, payload map[string]any) game.DomainEvent {
	return game.DomainEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		GameID:     actx.GameID,
		AgentID:    actx.AgentID,
		OccurredAt: now,
		Payload:    payload,
	}
}

func isTargeted(t game.ActionType) bool {
	switch t {
	case game.ActionAlly, game.ActionBattle, game.ActionIgnore, game.ActionBreakAlliance:
		return true
	default:
		return false
	}
}

// locksPair marks the actions whose validation reads pair-wide state (active
// alliances, active battles) that the same transaction then writes.
// BREAK_ALLIANCE and IGNORE stay lock-free: MarkBroken is a status CAS and
// ignore records have no invariant to race on.
func locksPair(t game.ActionType) bool {
	switch t {
	case game.ActionAlly, game.ActionBattle:
		return true
	default:
		return false
	}
}
