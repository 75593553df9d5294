package mock

import (
	"context"
	"fmt"
	"sync"

	"gridwar/internal/app/ports"
)

// Client records every settlement call instead of reaching a chain. Used in
// tests and DSN-less local runs.
type Client struct {
	mu    sync.Mutex
	calls []Call

	// FailWith, when set, makes every call return this error.
	FailWith error
}

type Call struct {
	Method string
	Args   any
}

func (c *Client) record(method string, args any) (ports.TxReference, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.FailWith != nil {
		return "", c.FailWith
	}
	c.calls = append(c.calls, Call{Method: method, Args: args})
	return ports.TxReference(fmt.Sprintf("mock-tx-%d", len(c.calls))), nil
}

func (c *Client) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Call, len(c.calls))
	copy(out, c.calls)
	return out
}

func (c *Client) RegisterAgent(_ context.Context, gameOnchainID, agentOnchainID int64) (ports.TxReference, error) {
	return c.record("register_agent", []int64{gameOnchainID, agentOnchainID})
}

func (c *Client) KillAgent(_ context.Context, gameOnchainID, agentOnchainID int64) (ports.TxReference, error) {
	return c.record("kill_agent", []int64{gameOnchainID, agentOnchainID})
}

func (c *Client) FormAlliance(_ context.Context, gameOnchainID, initiatorOnchainID, joinerOnchainID int64) (ports.TxReference, error) {
	return c.record("form_alliance", []int64{gameOnchainID, initiatorOnchainID, joinerOnchainID})
}

func (c *Client) BreakAlliance(_ context.Context, gameOnchainID, initiatorOnchainID, joinerOnchainID int64) (ports.TxReference, error) {
	return c.record("break_alliance", []int64{gameOnchainID, initiatorOnchainID, joinerOnchainID})
}

func (c *Client) StartBattle(_ context.Context, params ports.BattleStartParams) (ports.TxReference, error) {
	return c.record("start_battle", params)
}

func (c *Client) ResolveBattle(_ context.Context, params ports.BattleResolveParams) (ports.TxReference, error) {
	return c.record("resolve_battle", params)
}
