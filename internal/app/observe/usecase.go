package observe

import (
	"context"
	"errors"
	"time"

	"gridwar/internal/app/ports"
	"gridwar/internal/domain/game"
)

var ErrInvalidRequest = errors.New("invalid observe request")

type Request struct {
	GameID  string `json:"game_id"`
	AgentID string `json:"agent_id"`
}

type Response struct {
	Agent          game.Agent           `json:"agent"`
	ActiveAlliance *game.Alliance       `json:"active_alliance,omitempty"`
	ActiveBattle   *game.Battle         `json:"active_battle,omitempty"`
	Cooldowns      map[string]time.Time `json:"cooldowns,omitempty"`
}

// UseCase is the read surface an agent's decision source polls before acting.
type UseCase struct {
	AgentRepo    ports.AgentRepository
	AllianceRepo ports.AllianceRepository
	BattleRepo   ports.BattleRepository
	CooldownRepo ports.CooldownRepository
	Now          func() time.Time
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	if req.GameID == "" || req.AgentID == "" {
		return Response{}, ErrInvalidRequest
	}
	nowFn := u.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	now := nowFn()

	agent, err := u.AgentRepo.GetByID(ctx, req.GameID, req.AgentID)
	if err != nil {
		return Response{}, err
	}
	out := Response{Agent: agent}

	alliance, err := u.AllianceRepo.ActiveByAgentID(ctx, req.GameID, req.AgentID)
	if err != nil && !errors.Is(err, ports.ErrNotFound) {
		return Response{}, err
	}
	if err == nil {
		out.ActiveAlliance = &alliance
	}

	battle, err := u.BattleRepo.ActiveByAgentID(ctx, req.GameID, req.AgentID)
	if err != nil && !errors.Is(err, ports.ErrNotFound) {
		return Response{}, err
	}
	if err == nil {
		out.ActiveBattle = &battle
	}

	for _, cdType := range []game.CooldownType{game.CooldownAlliance, game.CooldownBattle, game.CooldownMovement} {
		cd, err := u.CooldownRepo.ActiveByAgentAndType(ctx, req.GameID, req.AgentID, cdType, now)
		if err != nil && !errors.Is(err, ports.ErrNotFound) {
			return Response{}, err
		}
		if err == nil {
			if out.Cooldowns == nil {
				out.Cooldowns = map[string]time.Time{}
			}
			out.Cooldowns[string(cdType)] = cd.EndsAt
		}
	}
	return out, nil
}
