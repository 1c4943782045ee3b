package negotiation

import (
	"context"
	"testing"
	"time"
)

// submitPair puts one offer per side in the active round and advances when
// more rounds follow.
func submitPair(t *testing.T, svc Service, repo *memRepo, sim Simulation, plaintiff, defendant float64, advance bool) Simulation {
	t.Helper()
	rnd := activeRound(t, repo, sim.ID)
	if _, err := svc.SubmitOffer(context.Background(), testActor, rnd.ID, NewOffer{
		TeamID: "team-p", Amount: plaintiff, Justification: "claim",
	}); err != nil {
		t.Fatalf("SubmitOffer() failed: %v", err)
	}
	if _, err := svc.SubmitCounterOffer(context.Background(), testActor, rnd.ID, NewOffer{
		TeamID: "team-d", Amount: defendant, Justification: "counter",
	}); err != nil {
		t.Fatalf("SubmitCounterOffer() failed: %v", err)
	}
	if advance {
		advanced, err := svc.AdvanceRound(context.Background(), testActor, sim.ID)
		if err != nil {
			t.Fatalf("AdvanceRound() failed: %v", err)
		}
		return advanced
	}
	return sim
}

func TestService_Convergence(t *testing.T) {
	svc, repo, _ := newTestService(nil)
	sim := startSimulation(t, svc)

	// distinct submission times so the latest-offer rule is deterministic
	base := time.Date(2021, 3, 15, 10, 0, 0, 0, time.UTC)
	step := 0
	nowFunc = func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Minute)
	}
	defer func() { nowFunc = time.Now }()

	// no offers yet
	report, err := svc.Convergence(context.Background(), sim.ID)
	if err != nil {
		t.Fatalf("Convergence() failed: %v", err)
	}
	if report.Gap != nil || report.GapPercentage != nil {
		t.Error("Gap must be undefined before both sides have offered")
	}
	if report.MovementTrend != TrendInsufficientData {
		t.Errorf("MovementTrend = %v, want %v", report.MovementTrend, TrendInsufficientData)
	}
	if report.SettlementProbability != 25 {
		t.Errorf("SettlementProbability = %d, want 25", report.SettlementProbability)
	}

	// round 1: 300000 vs 150000, round 2: 250000 vs 150000 (converging)
	sim = submitPair(t, svc, repo, sim, 300000, 150000, true)
	sim = submitPair(t, svc, repo, sim, 250000, 150000, false)

	report, err = svc.Convergence(context.Background(), sim.ID)
	if err != nil {
		t.Fatalf("Convergence() failed: %v", err)
	}
	if report.Gap == nil || *report.Gap != 100000 {
		t.Fatalf("Gap = %v, want 100000", report.Gap)
	}
	if report.GapPercentage == nil || *report.GapPercentage != 40.0 {
		t.Fatalf("GapPercentage = %v, want 40.0", report.GapPercentage)
	}
	if report.MovementTrend != TrendConverging {
		t.Errorf("MovementTrend = %v, want %v", report.MovementTrend, TrendConverging)
	}
	// converging (60) + mid gap (0) + round pressure ((2-1)*5)
	if report.SettlementProbability != 65 {
		t.Errorf("SettlementProbability = %d, want 65", report.SettlementProbability)
	}
}

func TestService_Convergence_oneSidedRoundIgnored(t *testing.T) {
	svc, repo, _ := newTestService(nil)
	sim := startSimulation(t, svc)

	sim = submitPair(t, svc, repo, sim, 300000, 150000, true)

	// only the plaintiff offers in round 2; the gap falls back to round 1
	rnd := activeRound(t, repo, sim.ID)
	if _, err := svc.SubmitOffer(context.Background(), testActor, rnd.ID, NewOffer{
		TeamID: "team-p", Amount: 280000, Justification: "claim",
	}); err != nil {
		t.Fatalf("SubmitOffer() failed: %v", err)
	}

	report, err := svc.Convergence(context.Background(), sim.ID)
	if err != nil {
		t.Fatalf("Convergence() failed: %v", err)
	}
	if report.Gap == nil || *report.Gap != 150000 {
		t.Fatalf("Gap = %v, want 150000 from round 1", report.Gap)
	}
	if report.MovementTrend != TrendInsufficientData {
		t.Errorf("MovementTrend = %v, want %v", report.MovementTrend, TrendInsufficientData)
	}
}

func TestService_Pressure(t *testing.T) {
	svc, repo, _ := newTestService(nil)
	sim := startSimulation(t, svc) // round 1 of 5

	report, err := svc.Pressure(context.Background(), sim.ID)
	if err != nil {
		t.Fatalf("Pressure() failed: %v", err)
	}
	if report.TimelinePressure != PressureLow {
		t.Errorf("TimelinePressure = %v, want %v", report.TimelinePressure, PressureLow)
	}
	if report.PressureLevel != 2 {
		t.Errorf("PressureLevel = %d, want 2", report.PressureLevel)
	}
	// probability 25 -> satisfaction Low -> mood concerned
	if report.Satisfaction != SatisfactionLow {
		t.Errorf("Satisfaction = %v, want %v", report.Satisfaction, SatisfactionLow)
	}
	if report.Mood != string(Concerned) {
		t.Errorf("Mood = %v, want %v", report.Mood, Concerned)
	}
	if report.Confidence != 3 {
		t.Errorf("Confidence = %d, want 3", report.Confidence)
	}
	if report.SatisfactionScore != 4 {
		t.Errorf("SatisfactionScore = %d, want 4", report.SatisfactionScore)
	}

	// converge hard and land in the final round: critical pressure, pleased mood
	sim = submitPair(t, svc, repo, sim, 300000, 150000, true)
	sim = submitPair(t, svc, repo, sim, 200000, 180000, true) // gap 20000, converging
	sim = submitPair(t, svc, repo, sim, 195000, 185000, true) // gap 10000, converging
	sim, err = svc.AdvanceRound(context.Background(), testActor, sim.ID)
	if err != nil {
		t.Fatalf("AdvanceRound() failed: %v", err)
	}

	report, err = svc.Pressure(context.Background(), sim.ID)
	if err != nil {
		t.Fatalf("Pressure() failed: %v", err)
	}
	if report.TimelinePressure != PressureCritical {
		t.Errorf("TimelinePressure = %v, want %v", report.TimelinePressure, PressureCritical)
	}
	if report.PressureLevel != 5 {
		t.Errorf("PressureLevel = %d, want 5", report.PressureLevel)
	}
	// probability clamps at 95 -> Very High -> pleased
	if report.Satisfaction != SatisfactionVeryHigh {
		t.Errorf("Satisfaction = %v, want %v", report.Satisfaction, SatisfactionVeryHigh)
	}
	if report.Mood != string(Pleased) {
		t.Errorf("Mood = %v, want %v", report.Mood, Pleased)
	}
}
