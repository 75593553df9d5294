package game

import "time"

type ActionType string

const (
	ActionMove          ActionType = "MOVE"
	ActionBattle        ActionType = "BATTLE"
	ActionAlly          ActionType = "ALLY"
	ActionBreakAlliance ActionType = "BREAK_ALLIANCE"
	ActionIgnore        ActionType = "IGNORE"
)

// GameAction is the tagged union produced by an agent's decision source.
// It is consumed once and never stored verbatim; only its effects persist.
type GameAction struct {
	Type        ActionType `json:"type"`
	Coordinates *Position  `json:"coordinates,omitempty"`
	TargetID    int64      `json:"target_id,omitempty"`
	Message     string     `json:"message,omitempty"`
}

// ActionContext identifies the acting agent and its game on both sides of the
// chain boundary.
type ActionContext struct {
	GameID         string `json:"game_id"`
	GameOnchainID  int64  `json:"game_onchain_id"`
	AgentID        string `json:"agent_id"`
	AgentOnchainID int64  `json:"agent_onchain_id"`
}

type FeedbackErrorType string

const (
	ErrorAgent       FeedbackErrorType = "AgentError"
	ErrorAlliance    FeedbackErrorType = "AllianceError"
	ErrorBattle      FeedbackErrorType = "BattleError"
	ErrorCooldown    FeedbackErrorType = "CooldownError"
	ErrorMovement    FeedbackErrorType = "MovementError"
	ErrorPersistence FeedbackErrorType = "PersistenceError"
	ErrorSettlement  FeedbackErrorType = "SettlementError"
)

type FeedbackError struct {
	Type    FeedbackErrorType `json:"type"`
	Message string            `json:"message"`
	Context map[string]any    `json:"context,omitempty"`
}

// ValidationFeedback carries the accept/reject decision plus structured detail.
// Error.Message substrings are a stable contract; callers pattern-match on them.
type ValidationFeedback struct {
	IsValid bool           `json:"is_valid"`
	Error   *FeedbackError `json:"error,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

func Accept(data map[string]any) ValidationFeedback {
	return ValidationFeedback{IsValid: true, Data: data}
}

func Reject(errType FeedbackErrorType, message string, context map[string]any) ValidationFeedback {
	return ValidationFeedback{
		IsValid: false,
		Error:   &FeedbackError{Type: errType, Message: message, Context: context},
	}
}

type ActionResult struct {
	Success  bool               `json:"success"`
	Feedback ValidationFeedback `json:"feedback"`
}

type DomainEvent struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	GameID     string         `json:"game_id"`
	AgentID    string         `json:"agent_id"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload,omitempty"`
}
