package combat

import "math/rand"

const (
	lossPercentMin  = 20
	lossPercentMax  = 30
	deathRollChance = 0.05
)

// Member is one combatant on a side: its primary agent or an ally.
type Member struct {
	AgentID string
	Stake   int64
}

type Side struct {
	Members []Member
}

func (s Side) TotalStake() int64 {
	var total int64
	for _, m := range s.Members {
		total += m.Stake
	}
	return total
}

type Winner string

const (
	WinnerSideA Winner = "sideA"
	WinnerSideB Winner = "sideB"
)

type Outcome struct {
	Winner             Winner
	PercentageLost     int
	TotalTokensAtStake int64
	AgentsToDie        []string
}

// Resolve runs the weighted-probability contest between two sides. Higher
// stake (or headcount, when no tokens are staked) only biases the odds; the
// single uniform draw decides. Loss percentage and the per-member 5% death
// rolls are drawn independently of the win draw. Pure given its random source.
func Resolve(sideA, sideB Side, rng *rand.Rand) Outcome {
	stakeA := sideA.TotalStake()
	stakeB := sideB.TotalStake()
	total := stakeA + stakeB

	var probA float64
	if total == 0 {
		// Headcount-weighted coin flip when nothing is staked.
		countA := len(sideA.Members)
		probA = float64(countA) / float64(countA+len(sideB.Members))
	} else {
		probA = float64(stakeA) / float64(total)
	}

	winner := WinnerSideB
	losing := sideA
	if rng.Float64() < probA {
		winner = WinnerSideA
		losing = sideB
	}

	percentageLost := lossPercentMin + rng.Intn(lossPercentMax-lossPercentMin+1)

	var agentsToDie []string
	for _, m := range losing.Members {
		if rng.Float64() < deathRollChance {
			agentsToDie = append(agentsToDie, m.AgentID)
		}
	}

	return Outcome{
		Winner:             winner,
		PercentageLost:     percentageLost,
		TotalTokensAtStake: total,
		AgentsToDie:        agentsToDie,
	}
}

// ApplyHealthLoss returns the loser's post-battle health: the loss percentage
// is taken off as points and the result clamps at zero. Reaching zero this way
// is the health-depletion death path; the 5% roll is a separate cause.
func ApplyHealthLoss(health, percentageLost int) int {
	next := health - percentageLost
	if next < 0 {
		return 0
	}
	return next
}
