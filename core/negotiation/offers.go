package negotiation

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/mazungumzo/core"
)

var errRoundClosed = errors.New("offers may only be submitted to the active round")

func (svc *service) QueryOffers(ctx context.Context, roundID string) ([]Offer, error) {
	if _, err := svc.repo.GetRoundByID(ctx, roundID); err != nil {
		return nil, err
	}
	return svc.repo.QueryOffersByRound(ctx, roundID)
}

func (svc *service) SubmitOffer(ctx context.Context, actor Actor, roundID string, no NewOffer) (Offer, error) {
	return svc.submitOffer(ctx, actor, roundID, no, OfferTypeInitialDemand)
}

func (svc *service) SubmitCounterOffer(ctx context.Context, actor Actor, roundID string, no NewOffer) (Offer, error) {
	return svc.submitOffer(ctx, actor, roundID, no, OfferTypeCounterOffer)
}

func (svc *service) submitOffer(ctx context.Context, actor Actor, roundID string, no NewOffer, typ OfferType) (Offer, error) {
	var off Offer
	err := svc.runTx(ctx, func(exec ...core.DBExecutor) error {
		rnd, err := svc.repo.GetRoundByID(ctx, roundID, exec...)
		if err != nil {
			return err
		}
		sim, err := svc.repo.GetSimulationForUpdate(ctx, rnd.SimulationID, exec...)
		if err != nil {
			return err
		}
		// re-read now that the simulation is locked: a concurrent advance can
		// no longer close this round under us
		if rnd, err = svc.repo.GetRoundByID(ctx, roundID, exec...); err != nil {
			return err
		}

		if sim.Status != StatusActive {
			return core.NewValidationError(
				errors.Errorf("offers may only be submitted while the simulation is active; simulation is %s", sim.Status))
		}
		if !rnd.IsActive() {
			return core.NewValidationError(errRoundClosed,
				core.FieldError{Field: "round_id", Error: errRoundClosed.Error()})
		}

		role, err := sim.TeamRole(no.TeamID)
		if err != nil {
			return core.NewValidationError(err,
				core.FieldError{Field: "team_id", Error: err.Error()})
		}

		if typ == OfferTypeCounterOffer {
			_, found, err := svc.latestOpposingOffer(ctx, sim, role, rnd.Number, exec...)
			if err != nil {
				return err
			}
			if !found {
				return ErrNoOpposingOffer
			}
		}

		off, err = svc.repo.CreateOffer(ctx, Offer{
			RoundID:          rnd.ID,
			TeamID:           no.TeamID,
			Role:             role,
			Amount:           no.Amount,
			Justification:    no.Justification,
			NonMonetaryTerms: no.NonMonetaryTerms,
			Type:             typ,
			SubmittedBy:      actor.ID,
			SubmittedAt:      nowFunc().UTC(),
		}, exec...)
		return err
	})
	if err != nil {
		return Offer{}, err
	}

	svc.recordActivity(eventOfferSubmitted, actor, map[string]interface{}{
		"offer_id":   off.ID,
		"round_id":   off.RoundID,
		"team_id":    off.TeamID,
		"offer_type": string(off.Type),
	})
	return off, nil
}

// latestOpposingOffer finds the most recent offer by the opposing side in the
// given round or any earlier one, most recent by submission time, breaking
// ties by round number.
func (svc *service) latestOpposingOffer(
	ctx context.Context,
	sim Simulation,
	requestingRole Role,
	uptoRound int,
	exec ...core.DBExecutor,
) (Offer, bool, error) {
	rounds, err := svc.repo.QueryRoundsBySimulation(ctx, sim.ID, exec...)
	if err != nil {
		return Offer{}, false, err
	}
	offers, err := svc.repo.QueryOffersBySimulation(ctx, sim.ID, exec...)
	if err != nil {
		return Offer{}, false, err
	}

	roundNumbers := make(map[string]int, len(rounds))
	for _, rnd := range rounds {
		roundNumbers[rnd.ID] = rnd.Number
	}

	opposing := requestingRole.Opposing()
	var (
		latest Offer
		found  bool
	)
	for _, off := range offers {
		if off.Role != opposing || roundNumbers[off.RoundID] > uptoRound {
			continue
		}
		if !found ||
			off.SubmittedAt.After(latest.SubmittedAt) ||
			(off.SubmittedAt.Equal(latest.SubmittedAt) && roundNumbers[off.RoundID] > roundNumbers[latest.RoundID]) {
			latest = off
			found = true
		}
	}
	return latest, found, nil
}
