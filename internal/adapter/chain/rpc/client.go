package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"gridwar/internal/app/ports"
)

// Client talks to the settlement program gateway. Every instruction is a
// single POST; the gateway answers with the opaque transaction signature.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type callRequest struct {
	Method string         `json:"method"`
	Params map[string]any `json:"params"`
}

type callResponse struct {
	Signature string `json:"signature"`
	Error     string `json:"error,omitempty"`
}

func (c *Client) call(ctx context.Context, method string, params map[string]any) (ports.TxReference, error) {
	body, err := json.Marshal(callRequest{Method: method, Params: params})
	if err != nil {
		return "", fmt.Errorf("marshal %s request: %w", method, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/instructions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call %s: %w", method, err)
	}
	defer resp.Body.Close()

	var out callResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode %s response: %w", method, err)
	}
	if resp.StatusCode != http.StatusOK || out.Error != "" {
		return "", fmt.Errorf("%s rejected (status %d): %s", method, resp.StatusCode, out.Error)
	}
	return ports.TxReference(out.Signature), nil
}

func (c *Client) RegisterAgent(ctx context.Context, gameOnchainID, agentOnchainID int64) (ports.TxReference, error) {
	return c.call(ctx, "register_agent", map[string]any{
		"game_id":  gameOnchainID,
		"agent_id": agentOnchainID,
	})
}

func (c *Client) KillAgent(ctx context.Context, gameOnchainID, agentOnchainID int64) (ports.TxReference, error) {
	return c.call(ctx, "kill_agent", map[string]any{
		"game_id":  gameOnchainID,
		"agent_id": agentOnchainID,
	})
}

func (c *Client) FormAlliance(ctx context.Context, gameOnchainID, initiatorOnchainID, joinerOnchainID int64) (ports.TxReference, error) {
	return c.call(ctx, "form_alliance", map[string]any{
		"game_id":      gameOnchainID,
		"initiator_id": initiatorOnchainID,
		"joiner_id":    joinerOnchainID,
	})
}

func (c *Client) BreakAlliance(ctx context.Context, gameOnchainID, initiatorOnchainID, joinerOnchainID int64) (ports.TxReference, error) {
	return c.call(ctx, "break_alliance", map[string]any{
		"game_id":      gameOnchainID,
		"initiator_id": initiatorOnchainID,
		"joiner_id":    joinerOnchainID,
	})
}

func (c *Client) StartBattle(ctx context.Context, params ports.BattleStartParams) (ports.TxReference, error) {
	return c.call(ctx, "start_battle", map[string]any{
		"game_id":     params.GameOnchainID,
		"battle_id":   params.BattleID,
		"topology":    string(params.Topology),
		"attacker_id": params.AttackerOnchainID,
		"defender_id": params.DefenderOnchainID,
	})
}

func (c *Client) ResolveBattle(ctx context.Context, params ports.BattleResolveParams) (ports.TxReference, error) {
	return c.call(ctx, "resolve_battle", map[string]any{
		"game_id":             params.GameOnchainID,
		"battle_id":           params.BattleID,
		"topology":            string(params.Topology),
		"winner_id":           params.WinnerOnchainID,
		"attacker_won":        params.AttackerWon,
		"transfer_percentage": params.TransferPercentage,
		"dead_agent_ids":      params.DeadOnchainIDs,
	})
}
