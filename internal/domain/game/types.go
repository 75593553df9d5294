package game

import "time"

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Agent is a simulation participant. Liveness is the authoritative flag:
// !IsAlive implies DeathAt != nil, regardless of remaining health.
type Agent struct {
	ID        string     `json:"id"`
	OnchainID int64      `json:"onchain_id"`
	GameID    string     `json:"game_id"`
	Health    int        `json:"health"`
	IsAlive   bool       `json:"is_alive"`
	Position  Position   `json:"position"`
	Tokens    int64      `json:"tokens"`
	DeathAt   *time.Time `json:"death_at,omitempty"`
	Version   int64      `json:"version"`
}

type AllianceStatus string

const (
	AllianceActive AllianceStatus = "active"
	AllianceBroken AllianceStatus = "broken"
)

// Alliance has a directed origin (initiator/joiner) but symmetric effect.
type Alliance struct {
	ID          string         `json:"id"`
	GameID      string         `json:"game_id"`
	InitiatorID string         `json:"initiator_id"`
	JoinerID    string         `json:"joiner_id"`
	Status      AllianceStatus `json:"status"`
	FormedAt    time.Time      `json:"formed_at"`
	EndedAt     *time.Time     `json:"ended_at,omitempty"`
}

func (a Alliance) PartnerOf(agentID string) (string, bool) {
	switch agentID {
	case a.InitiatorID:
		return a.JoinerID, true
	case a.JoinerID:
		return a.InitiatorID, true
	default:
		return "", false
	}
}

type BattleStatus string

const (
	BattleActive   BattleStatus = "active"
	BattleResolved BattleStatus = "resolved"
)

type BattleType string

const (
	BattleSimple             BattleType = "simple"
	BattleAgentVsAlliance    BattleType = "agent_vs_alliance"
	BattleAllianceVsAlliance BattleType = "alliance_vs_alliance"
)

// Battle moves through exactly one transition, Active -> Resolved. EndedAt and
// WinnerID stay nil until the resolver applies that transition, once.
type Battle struct {
	ID             string       `json:"id"`
	GameID         string       `json:"game_id"`
	GameOnchainID  int64        `json:"game_onchain_id"`
	AttackerID     string       `json:"attacker_id"`
	AttackerAllyID *string      `json:"attacker_ally_id,omitempty"`
	DefenderID     string       `json:"defender_id"`
	DefenderAllyID *string      `json:"defender_ally_id,omitempty"`
	Type           BattleType   `json:"type"`
	Status         BattleStatus `json:"status"`
	TokensStaked   int64        `json:"tokens_staked"`
	StartedAt      time.Time    `json:"started_at"`
	EndedAt        *time.Time   `json:"ended_at,omitempty"`
	WinnerID       *string      `json:"winner_id,omitempty"`
}

func (b Battle) ParticipantIDs() []string {
	out := []string{b.AttackerID, b.DefenderID}
	if b.AttackerAllyID != nil {
		out = append(out, *b.AttackerAllyID)
	}
	if b.DefenderAllyID != nil {
		out = append(out, *b.DefenderAllyID)
	}
	return out
}

// InferBattleType maps the ally layout onto the combat topology.
func InferBattleType(attackerAlly, defenderAlly *string) BattleType {
	switch {
	case attackerAlly != nil && defenderAlly != nil:
		return BattleAllianceVsAlliance
	case attackerAlly != nil || defenderAlly != nil:
		return BattleAgentVsAlliance
	default:
		return BattleSimple
	}
}

type CooldownType string

const (
	CooldownAlliance CooldownType = "alliance"
	CooldownMovement CooldownType = "movement"
	CooldownBattle   CooldownType = "battle"
)

// Cooldown is a time-boxed restriction; it expires naturally once now >= EndsAt.
type Cooldown struct {
	ID      string       `json:"id"`
	GameID  string       `json:"game_id"`
	AgentID string       `json:"agent_id"`
	Type    CooldownType `json:"type"`
	EndsAt  time.Time    `json:"ends_at"`
}

func (c Cooldown) ActiveAt(now time.Time) bool {
	return now.Before(c.EndsAt)
}

type TerrainType string

const (
	TerrainPlains   TerrainType = "plains"
	TerrainMountain TerrainType = "mountain"
	TerrainRiver    TerrainType = "river"
)
