package replay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gridwar/internal/app/ports"
	"gridwar/internal/domain/game"

	"github.com/klauspost/compress/zstd"
)

var ErrInvalidRequest = errors.New("invalid replay request")

const defaultLimit = 200

type Request struct {
	GameID  string `json:"game_id"`
	AgentID string `json:"agent_id"`
	Limit   int    `json:"limit,omitempty"`
}

type Response struct {
	Events []game.DomainEvent `json:"events"`
}

type UseCase struct {
	Events ports.EventRepository
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	if req.GameID == "" || req.AgentID == "" {
		return Response{}, ErrInvalidRequest
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	events, err := u.Events.ListByGameAndAgent(ctx, req.GameID, req.AgentID, limit)
	if err != nil && !errors.Is(err, ports.ErrNotFound) {
		return Response{}, err
	}
	return Response{Events: events}, nil
}

// Export returns the agent's event log as zstd-compressed JSON, suitable for
// offline replay tooling.
func (u UseCase) Export(ctx context.Context, req Request) ([]byte, error) {
	resp, err := u.Execute(ctx, req)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(resp.Events)
	if err != nil {
		return nil, fmt.Errorf("marshal events: %w", err)
	}

	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	if err != nil {
		return nil, fmt.Errorf("init zstd writer: %w", err)
	}
	if _, err := enc.Write(raw); err != nil {
		enc.Close()
		return nil, fmt.Errorf("compress events: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("flush zstd writer: %w", err)
	}
	return buf.Bytes(), nil
}
