package inmemory

import (
	"sync"

	"gridwar/internal/domain/game"
)

type Snapshot struct {
	ActionAccepted   uint64            `json:"action_accepted"`
	ActionRejected   uint64            `json:"action_rejected"`
	ActionFailure    uint64            `json:"action_failure"`
	ByActionType     map[string]uint64 `json:"by_action_type"`
	BattlesResolved  uint64            `json:"battles_resolved"`
	ResolveSkipped   uint64            `json:"resolve_skipped"`
	ResolveFailures  uint64            `json:"resolve_failures"`
	ByBattleTopology map[string]uint64 `json:"by_battle_topology"`
}

// Recorder counts action and resolution outcomes for the /ops/kpi surface.
type Recorder struct {
	mu              sync.Mutex
	accepted        uint64
	rejected        uint64
	failure         uint64
	byAction        map[string]uint64
	resolved        uint64
	resolveSkipped  uint64
	resolveFailures uint64
	byTopology      map[string]uint64
}

func NewRecorder() *Recorder {
	return &Recorder{
		byAction:   map[string]uint64{},
		byTopology: map[string]uint64{},
	}
}

func (r *Recorder) RecordAccepted(actionType game.ActionType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accepted++
	r.byAction[string(actionType)]++
}

func (r *Recorder) RecordRejected(actionType game.ActionType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejected++
	r.byAction[string(actionType)]++
}

func (r *Recorder) RecordFailure() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failure++
}

func (r *Recorder) RecordResolved(topology game.BattleType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolved++
	r.byTopology[string(topology)]++
}

func (r *Recorder) RecordResolveSkipped() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolveSkipped++
}

func (r *Recorder) RecordResolveFailure() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolveFailures++
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := Snapshot{
		ActionAccepted:   r.accepted,
		ActionRejected:   r.rejected,
		ActionFailure:    r.failure,
		BattlesResolved:  r.resolved,
		ResolveSkipped:   r.resolveSkipped,
		ResolveFailures:  r.resolveFailures,
		ByActionType:     make(map[string]uint64, len(r.byAction)),
		ByBattleTopology: make(map[string]uint64, len(r.byTopology)),
	}
	for k, v := range r.byAction {
		out.ByActionType[k] = v
	}
	for k, v := range r.byTopology {
		out.ByBattleTopology[k] = v
	}
	return out
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}
