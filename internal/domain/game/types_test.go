package game

import (
	"testing"
	"time"
)

func TestInferBattleType(t *testing.T) {
	ally := "ally"
	cases := []struct {
		name     string
		attacker *string
		defender *string
		want     BattleType
	}{
		{"no allies", nil, nil, BattleSimple},
		{"attacker allied", &ally, nil, BattleAgentVsAlliance},
		{"defender allied", nil, &ally, BattleAgentVsAlliance},
		{"both allied", &ally, &ally, BattleAllianceVsAlliance},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := InferBattleType(tc.attacker, tc.defender); got != tc.want {
				t.Fatalf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestBattleParticipantIDs(t *testing.T) {
	allyA, allyB := "a2", "b2"
	b := Battle{AttackerID: "a1", DefenderID: "b1", AttackerAllyID: &allyA, DefenderAllyID: &allyB}
	got := b.ParticipantIDs()
	want := []string{"a1", "b1", "a2", "b2"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestAlliancePartnerOf(t *testing.T) {
	a := Alliance{InitiatorID: "x", JoinerID: "y"}
	if p, ok := a.PartnerOf("x"); !ok || p != "y" {
		t.Fatalf("PartnerOf(x) = %q,%v", p, ok)
	}
	if p, ok := a.PartnerOf("y"); !ok || p != "x" {
		t.Fatalf("PartnerOf(y) = %q,%v", p, ok)
	}
	if _, ok := a.PartnerOf("z"); ok {
		t.Fatal("PartnerOf(z) must report no membership")
	}
}

func TestCooldownActiveAt(t *testing.T) {
	end := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cd := Cooldown{EndsAt: end}
	if !cd.ActiveAt(end.Add(-time.Second)) {
		t.Fatal("cooldown must be active before EndsAt")
	}
	// The boundary instant is already expired.
	if cd.ActiveAt(end) {
		t.Fatal("cooldown must expire exactly at EndsAt")
	}
}
