package negotiation

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/mazungumzo/core"
)

func (svc *service) QueryRounds(ctx context.Context, simulationID string) ([]Round, error) {
	if _, err := svc.repo.GetSimulationByID(ctx, simulationID); err != nil {
		return nil, err
	}
	return svc.repo.QueryRoundsBySimulation(ctx, simulationID)
}

// openRound creates the next round with status=active and a deadline derived
// from the simulation's round duration. Round numbers must stay contiguous
// starting at 1 and never exceed the simulation's total rounds.
func (svc *service) openRound(ctx context.Context, sim Simulation, number int, exec ...core.DBExecutor) (Round, error) {
	if number > sim.TotalRounds {
		return Round{}, errors.Wrapf(ErrRoundNotAdvanceable,
			"round %d would exceed the %d configured rounds", number, sim.TotalRounds)
	}

	rounds, err := svc.repo.QueryRoundsBySimulation(ctx, sim.ID, exec...)
	if err != nil {
		return Round{}, err
	}
	var last int
	for _, rnd := range rounds {
		if rnd.IsActive() {
			return Round{}, errors.Wrapf(ErrRoundNotAdvanceable,
				"round %d is still active", rnd.Number)
		}
		if rnd.Number > last {
			last = rnd.Number
		}
	}
	if number != last+1 {
		return Round{}, errors.Wrapf(ErrRoundNotAdvanceable,
			"round %d is not contiguous with the last round %d", number, last)
	}

	duration := sim.Config.RoundDuration
	if duration <= 0 {
		duration = svc.conf.Negotiation.RoundDuration
	}
	now := nowFunc().UTC()
	return svc.repo.CreateRound(ctx, Round{
		SimulationID: sim.ID,
		Number:       number,
		Deadline:     now.Add(duration),
		Status:       RoundStatusActive,
		CreatedAt:    now,
	}, exec...)
}

// closeActiveRound marks the simulation's active round completed.
func (svc *service) closeActiveRound(ctx context.Context, sim Simulation, exec ...core.DBExecutor) (Round, error) {
	rnd, err := svc.repo.GetActiveRound(ctx, sim.ID, exec...)
	if err != nil {
		if errors.Cause(err) == ErrRoundNotFound {
			return Round{}, errors.Wrap(ErrRoundNotAdvanceable, "no active round to close")
		}
		return Round{}, err
	}
	now := nowFunc().UTC()
	rnd.Status = RoundStatusCompleted
	rnd.CompletedAt = &now
	return svc.repo.UpdateRound(ctx, rnd, exec...)
}

// AdvanceRound atomically closes the active round and opens the next one.
// It is an explicit instructor action; deadlines are surfaced but never
// enforced by a background sweep.
func (svc *service) AdvanceRound(ctx context.Context, actor Actor, id string) (Simulation, error) {
	var (
		sim Simulation
		rnd Round
	)
	err := svc.runTx(ctx, func(exec ...core.DBExecutor) error {
		var err error
		if sim, err = svc.repo.GetSimulationForUpdate(ctx, id, exec...); err != nil {
			return err
		}
		if sim.Status != StatusActive {
			return newInvalidTransition("advance rounds of", sim.Status, StatusActive)
		}
		if sim.CurrentRound >= sim.TotalRounds {
			return errors.Wrapf(ErrRoundNotAdvanceable,
				"round %d is the final round", sim.CurrentRound)
		}

		if _, err = svc.closeActiveRound(ctx, sim, exec...); err != nil {
			return err
		}
		if rnd, err = svc.openRound(ctx, sim, sim.CurrentRound+1, exec...); err != nil {
			return err
		}

		sim.CurrentRound++
		sim.UpdatedAt = nowFunc().UTC()
		sim, err = svc.repo.UpdateSimulation(ctx, sim, exec...)
		return err
	})
	if err != nil {
		return Simulation{}, err
	}

	svc.recordActivity(eventRoundAdvanced, actor, map[string]interface{}{
		"simulation_id": sim.ID,
		"round_number":  rnd.Number,
	})
	svc.notifyRoundOpened(sim, rnd)
	return sim, nil
}
