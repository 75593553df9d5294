package inmemory

import (
	"testing"

	"gridwar/internal/domain/game"
)

func TestRecorderCounts(t *testing.T) {
	r := NewRecorder()
	r.RecordAccepted(game.ActionMove)
	r.RecordAccepted(game.ActionBattle)
	r.RecordRejected(game.ActionBattle)
	r.RecordFailure()
	r.RecordResolved(game.BattleSimple)
	r.RecordResolved(game.BattleSimple)
	r.RecordResolveSkipped()
	r.RecordResolveFailure()

	snap := r.Snapshot()
	if snap.ActionAccepted != 2 || snap.ActionRejected != 1 || snap.ActionFailure != 1 {
		t.Fatalf("action counters = %+v", snap)
	}
	if snap.ByActionType["BATTLE"] != 2 {
		t.Fatalf("battle action count = %d, want 2", snap.ByActionType["BATTLE"])
	}
	if snap.BattlesResolved != 2 || snap.ResolveSkipped != 1 || snap.ResolveFailures != 1 {
		t.Fatalf("resolver counters = %+v", snap)
	}
	if snap.ByBattleTopology["simple"] != 2 {
		t.Fatalf("simple topology count = %d, want 2", snap.ByBattleTopology["simple"])
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	r := NewRecorder()
	r.RecordAccepted(game.ActionMove)

	snap := r.Snapshot()
	snap.ByActionType["MOVE"] = 99

	if r.Snapshot().ByActionType["MOVE"] != 1 {
		t.Fatal("mutating a snapshot leaked into the recorder")
	}
}
