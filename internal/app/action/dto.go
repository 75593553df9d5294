package action

import "gridwar/internal/domain/game"

type Request struct {
	Context game.ActionContext `json:"context"`
	Action  game.GameAction    `json:"action"`
}

type Response struct {
	Result game.ActionResult  `json:"result"`
	Events []game.DomainEvent `json:"events,omitempty"`
}
