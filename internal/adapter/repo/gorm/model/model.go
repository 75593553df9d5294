package model

import "time"

type Agent struct {
	ID        string `gorm:"primaryKey"`
	OnchainID int64  `gorm:"index:idx_agents_game_onchain,unique"`
	GameID    string `gorm:"index:idx_agents_game_onchain,unique;index"`
	Health    int32
	IsAlive   bool
	X         int32
	Y         int32
	Tokens    int64
	DeathAt   *time.Time
	Version   int64
	UpdatedAt time.Time
}

type Alliance struct {
	ID          string `gorm:"primaryKey"`
	GameID      string `gorm:"index"`
	InitiatorID string `gorm:"index"`
	JoinerID    string `gorm:"index"`
	Status      string `gorm:"index"`
	FormedAt    time.Time
	EndedAt     *time.Time
}

type Battle struct {
	ID             string `gorm:"primaryKey"`
	GameID         string `gorm:"index"`
	GameOnchainID  int64
	AttackerID     string `gorm:"index"`
	AttackerAllyID *string
	DefenderID     string `gorm:"index"`
	DefenderAllyID *string
	Type           string
	Status         string `gorm:"index:idx_battles_status_started"`
	TokensStaked   int64
	StartedAt      time.Time `gorm:"index:idx_battles_status_started"`
	EndedAt        *time.Time
	WinnerID       *string
}

type Cooldown struct {
	ID      string `gorm:"primaryKey"`
	GameID  string `gorm:"index:idx_cooldowns_lookup"`
	AgentID string `gorm:"index:idx_cooldowns_lookup"`
	Type    string `gorm:"index:idx_cooldowns_lookup"`
	EndsAt  time.Time
}

type Ignore struct {
	ID       string `gorm:"primaryKey"`
	GameID   string `gorm:"index"`
	AgentID  string `gorm:"index"`
	TargetID string
	AddedAt  time.Time
}

type DomainEvent struct {
	ID         string `gorm:"primaryKey"`
	GameID     string `gorm:"index:idx_events_game_agent"`
	AgentID    string `gorm:"index:idx_events_game_agent"`
	Type       string
	OccurredAt time.Time `gorm:"index"`
	Payload    []byte
}
