package ports

import "gridwar/internal/domain/game"

type ActionMetrics interface {
	RecordAccepted(actionType game.ActionType)
	RecordRejected(actionType game.ActionType)
	RecordFailure()
}

type ResolverMetrics interface {
	RecordResolved(topology game.BattleType)
	RecordResolveSkipped()
	RecordResolveFailure()
}
