package action

import (
	"fmt"
	"time"

	"gridwar/internal/domain/game"
)

// Snapshot is the read-only world view a validation decision is made against.
// The use case assembles it inside the same transaction that commits the
// action's effects, so every field reflects the latest committed state.
type Snapshot struct {
	Now   time.Time
	Actor game.Agent

	// Target is nil when the on-chain id lookup found nothing.
	Target         *game.Agent
	ActorAlliance  *game.Alliance
	TargetAlliance *game.Alliance

	// ActorBrokenAlliance is the actor's most recently broken alliance, used
	// for the re-formation cooldown window.
	ActorBrokenAlliance  *game.Alliance
	BrokenAllianceWindow time.Duration

	ActorCooldowns map[game.CooldownType]game.Cooldown

	ActorActiveBattle  *game.Battle
	TargetActiveBattle *game.Battle
}

// Validate evaluates the rules for one action in order, short-circuiting on
// the first failure. The message substrings ("not alive", "not found",
// "already has an active alliance", "already exists", "cooldown") are a
// stable contract; callers pattern-match on them.
func Validate(snap Snapshot, act game.GameAction) game.ValidationFeedback {
	if !snap.Actor.IsAlive {
		return game.Reject(game.ErrorAgent, fmt.Sprintf("agent %s is not alive", snap.Actor.ID), map[string]any{
			"agent_id": snap.Actor.ID,
		})
	}

	switch act.Type {
	case game.ActionMove:
		return validateMove(act)
	case game.ActionAlly:
		return validateAlly(snap, act)
	case game.ActionBreakAlliance:
		return validateBreakAlliance(snap, act)
	case game.ActionBattle:
		return validateBattle(snap, act)
	case game.ActionIgnore:
		return validateIgnore(snap, act)
	default:
		return game.Reject(game.ErrorAgent, fmt.Sprintf("unsupported action type %q", act.Type), nil)
	}
}

func validateMove(act game.GameAction) game.ValidationFeedback {
	if act.Coordinates == nil {
		return game.Reject(game.ErrorMovement, "move action requires coordinates", nil)
	}
	return game.Accept(nil)
}

func requireTarget(snap Snapshot, act game.GameAction) (game.Agent, *game.ValidationFeedback) {
	if snap.Target == nil {
		fb := game.Reject(game.ErrorAgent, fmt.Sprintf("target agent %d not found", act.TargetID), map[string]any{
			"target_onchain_id": act.TargetID,
		})
		return game.Agent{}, &fb
	}
	return *snap.Target, nil
}

func validateAlly(snap Snapshot, act game.GameAction) game.ValidationFeedback {
	target, fail := requireTarget(snap, act)
	if fail != nil {
		return *fail
	}
	if !target.IsAlive {
		return game.Reject(game.ErrorAgent, fmt.Sprintf("target agent %s is not alive", target.ID), map[string]any{
			"target_id": target.ID,
		})
	}
	if target.ID == snap.Actor.ID {
		return game.Reject(game.ErrorAlliance, "agent cannot form an alliance with itself", nil)
	}

	if pair := snap.ActorAlliance; pair != nil {
		if partner, ok := pair.PartnerOf(snap.Actor.ID); ok && partner == target.ID {
			return game.Reject(game.ErrorAlliance, "alliance already exists between these agents", map[string]any{
				"alliance_id": pair.ID,
			})
		}
	}
	if snap.TargetAlliance != nil {
		return game.Reject(game.ErrorAlliance, fmt.Sprintf("target agent %s already has an active alliance", target.ID), map[string]any{
			"target_id": target.ID,
		})
	}
	if snap.ActorAlliance != nil {
		return game.Reject(game.ErrorAlliance, fmt.Sprintf("agent %s already has an active alliance", snap.Actor.ID), map[string]any{
			"agent_id": snap.Actor.ID,
		})
	}

	// A recently broken alliance blocks new formations for the whole window,
	// whoever the new partner would be.
	if broken := snap.ActorBrokenAlliance; broken != nil && broken.EndedAt != nil {
		windowEnd := broken.EndedAt.Add(snap.BrokenAllianceWindow)
		if snap.Now.Before(windowEnd) {
			return game.Reject(game.ErrorCooldown, "alliance formation is on cooldown after a recent break", map[string]any{
				"ends_at": windowEnd,
			})
		}
	}
	if fb := rejectIfCoolingDown(snap, game.CooldownAlliance); fb != nil {
		return *fb
	}
	return game.Accept(map[string]any{"target_id": target.ID})
}

func validateBreakAlliance(snap Snapshot, act game.GameAction) game.ValidationFeedback {
	target, fail := requireTarget(snap, act)
	if fail != nil {
		return *fail
	}
	pair := snap.ActorAlliance
	if pair == nil {
		return game.Reject(game.ErrorAlliance, fmt.Sprintf("agent %s has no active alliance", snap.Actor.ID), nil)
	}
	if partner, ok := pair.PartnerOf(snap.Actor.ID); !ok || partner != target.ID {
		return game.Reject(game.ErrorAlliance, fmt.Sprintf("no active alliance with target agent %s", target.ID), nil)
	}
	return game.Accept(map[string]any{"alliance_id": pair.ID})
}

func validateBattle(snap Snapshot, act game.GameAction) game.ValidationFeedback {
	target, fail := requireTarget(snap, act)
	if fail != nil {
		return *fail
	}
	if !target.IsAlive {
		return game.Reject(game.ErrorAgent, fmt.Sprintf("target agent %s is not alive", target.ID), map[string]any{
			"target_id": target.ID,
		})
	}
	if target.ID == snap.Actor.ID {
		return game.Reject(game.ErrorBattle, "agent cannot battle itself", nil)
	}
	if fb := rejectIfCoolingDown(snap, game.CooldownBattle); fb != nil {
		return *fb
	}
	if snap.ActorActiveBattle != nil {
		return game.Reject(game.ErrorBattle, fmt.Sprintf("agent %s is already in an active battle", snap.Actor.ID), map[string]any{
			"battle_id": snap.ActorActiveBattle.ID,
		})
	}
	if snap.TargetActiveBattle != nil {
		return game.Reject(game.ErrorBattle, fmt.Sprintf("target agent %s is already in an active battle", target.ID), map[string]any{
			"battle_id": snap.TargetActiveBattle.ID,
		})
	}
	return game.Accept(map[string]any{"target_id": target.ID})
}

func validateIgnore(snap Snapshot, act game.GameAction) game.ValidationFeedback {
	target, fail := requireTarget(snap, act)
	if fail != nil {
		return *fail
	}
	return game.Accept(map[string]any{"target_id": target.ID})
}

func rejectIfCoolingDown(snap Snapshot, cooldownType game.CooldownType) *game.ValidationFeedback {
	cd, ok := snap.ActorCooldowns[cooldownType]
	if !ok || !cd.ActiveAt(snap.Now) {
		return nil
	}
	fb := game.Reject(game.ErrorCooldown, fmt.Sprintf("%s cooldown active until %s", cooldownType, cd.EndsAt.UTC().Format(time.RFC3339)), map[string]any{
		"cooldown_type": string(cooldownType),
		"ends_at":       cd.EndsAt,
	})
	return &fb
}
