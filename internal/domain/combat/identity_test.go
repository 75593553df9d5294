package combat

import (
	"testing"
	"time"
)

func TestGenerateBattleID_PermutationInvariant(t *testing.T) {
	start := time.Unix(1700000000, 0)

	a := GenerateBattleID([]string{"agent-1", "agent-2"}, start, "game-1")
	b := GenerateBattleID([]string{"agent-2", "agent-1"}, start, "game-1")
	if a != b {
		t.Fatalf("expected identical id under participant permutation, got %s vs %s", a, b)
	}

	c := GenerateBattleID([]string{"x", "a", "m", "b"}, start, "game-1")
	d := GenerateBattleID([]string{"b", "m", "a", "x"}, start, "game-1")
	if c != d {
		t.Fatalf("expected identical id for 4-party permutation, got %s vs %s", c, d)
	}
}

func TestGenerateBattleID_SensitiveToStartTimeAndGame(t *testing.T) {
	start := time.Unix(1700000000, 0)
	base := GenerateBattleID([]string{"agent-1", "agent-2"}, start, "game-1")

	if got := GenerateBattleID([]string{"agent-1", "agent-2"}, start.Add(time.Second), "game-1"); got == base {
		t.Fatalf("expected different id for different start time")
	}
	if got := GenerateBattleID([]string{"agent-1", "agent-2"}, start, "game-2"); got == base {
		t.Fatalf("expected different id for different game")
	}
}

func TestGenerateBattleID_DoesNotMutateInput(t *testing.T) {
	ids := []string{"z", "a"}
	GenerateBattleID(ids, time.Unix(0, 0), "g")
	if ids[0] != "z" || ids[1] != "a" {
		t.Fatalf("input slice mutated: %v", ids)
	}
}
