package negotiation

import "testing"

func TestSimulation_TeamRole(t *testing.T) {
	sim := Simulation{PlaintiffTeamID: "team-p", DefendantTeamID: "team-d"}

	if role, err := sim.TeamRole("team-p"); err != nil || role != RolePlaintiff {
		t.Errorf("TeamRole(team-p) = %v, %v", role, err)
	}
	if role, err := sim.TeamRole("team-d"); err != nil || role != RoleDefendant {
		t.Errorf("TeamRole(team-d) = %v, %v", role, err)
	}
	if _, err := sim.TeamRole("team-x"); err != ErrTeamNotInSimulation {
		t.Errorf("TeamRole(team-x) error = %v, want %v", err, ErrTeamNotInSimulation)
	}

	teams := sim.Teams()
	if teams[RolePlaintiff] != "team-p" || teams[RoleDefendant] != "team-d" {
		t.Errorf("Teams() = %v", teams)
	}
}

func TestSimulation_IsTerminal(t *testing.T) {
	for _, tt := range []struct {
		status Status
		want   bool
	}{
		{StatusSetup, false},
		{StatusActive, false},
		{StatusPaused, false},
		{StatusCompleted, true},
		{StatusArbitration, true},
	} {
		if got := (Simulation{Status: tt.status}).IsTerminal(); got != tt.want {
			t.Errorf("IsTerminal(%s) = %v, want %v", tt.status, got, tt.want)
		}
	}
}
