package negotiation

import "context"

// Convergence derives the gap, movement trend and settlement probability for
// a simulation. The gap reflects the most recent round in which both sides
// have submitted an offer; it stays undefined until such a round exists.
func (svc *service) Convergence(ctx context.Context, simulationID string) (ConvergenceReport, error) {
	sim, err := svc.repo.GetSimulationByID(ctx, simulationID)
	if err != nil {
		return ConvergenceReport{}, err
	}
	rounds, err := svc.repo.QueryRoundsBySimulation(ctx, simulationID)
	if err != nil {
		return ConvergenceReport{}, err
	}
	offers, err := svc.repo.QueryOffersBySimulation(ctx, simulationID)
	if err != nil {
		return ConvergenceReport{}, err
	}

	offersByRound := make(map[string][]Offer, len(rounds))
	for _, off := range offers {
		offersByRound[off.RoundID] = append(offersByRound[off.RoundID], off)
	}

	trend := MovementTrend(rounds, offersByRound)

	report := ConvergenceReport{MovementTrend: trend}
	var (
		gap      float64
		gapKnown bool
	)
	// rounds come ordered by ascending number; walk backwards for the most
	// recent one with offers from both sides
	for i := len(rounds) - 1; i >= 0; i-- {
		roundOffers := offersByRound[rounds[i].ID]
		if g, ok := RoundGap(roundOffers); ok {
			gap, gapKnown = g, true
			report.Gap = &gap
			if pct, ok := GapPercentage(roundOffers); ok {
				report.GapPercentage = &pct
			}
			break
		}
	}

	report.SettlementProbability = SettlementProbability(trend, gap, gapKnown, sim.CurrentRound)
	return report, nil
}

// Pressure composes timeline pressure with a mood indicator derived from the
// current settlement probability.
func (svc *service) Pressure(ctx context.Context, simulationID string) (PressureReport, error) {
	sim, err := svc.repo.GetSimulationByID(ctx, simulationID)
	if err != nil {
		return PressureReport{}, err
	}
	conv, err := svc.Convergence(ctx, simulationID)
	if err != nil {
		return PressureReport{}, err
	}

	pressure := TimelinePressure(sim)
	satisfaction := satisfactionFromProbability(conv.SettlementProbability)
	return PressureReport{
		TimelinePressure:  pressure,
		PressureLevel:     PressureLevel(pressure),
		Mood:              string(moodFromSatisfaction(satisfaction)),
		Confidence:        SatisfactionConfidence(satisfaction),
		Satisfaction:      satisfaction,
		SatisfactionScore: SatisfactionScore(satisfaction),
	}, nil
}
