// Package dummy provides in-memory repositories for tests and local runs
// without a database.
package dummy

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/trezcool/mazungumzo/core"
	"github.com/trezcool/mazungumzo/core/negotiation"
)

type negotiationRepository struct {
	mu          sync.RWMutex
	simulations map[string]negotiation.Simulation
	rounds      map[string]negotiation.Round
	offers      map[string]negotiation.Offer
}

var _ negotiation.Repository = (*negotiationRepository)(nil)

func NewNegotiationRepository() negotiation.Repository {
	return &negotiationRepository{
		simulations: make(map[string]negotiation.Simulation),
		rounds:      make(map[string]negotiation.Round),
		offers:      make(map[string]negotiation.Offer),
	}
}

func (repo *negotiationRepository) CreateSimulation(_ context.Context, sim negotiation.Simulation, _ ...core.DBExecutor) (negotiation.Simulation, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	sim.ID = uuid.New().String()
	repo.simulations[sim.ID] = sim
	return sim, nil
}

func (repo *negotiationRepository) GetSimulationByID(_ context.Context, id string, _ ...core.DBExecutor) (negotiation.Simulation, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	sim, ok := repo.simulations[id]
	if !ok {
		return negotiation.Simulation{}, negotiation.ErrSimulationNotFound
	}
	return sim, nil
}

func (repo *negotiationRepository) GetSimulationForUpdate(ctx context.Context, id string, exec ...core.DBExecutor) (negotiation.Simulation, error) {
	// no row locks in memory; the service serializes through the mutex
	return repo.GetSimulationByID(ctx, id, exec...)
}

func (repo *negotiationRepository) UpdateSimulation(_ context.Context, sim negotiation.Simulation, _ ...core.DBExecutor) (negotiation.Simulation, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, ok := repo.simulations[sim.ID]; !ok {
		return negotiation.Simulation{}, negotiation.ErrSimulationNotFound
	}
	repo.simulations[sim.ID] = sim
	return sim, nil
}

func (repo *negotiationRepository) CreateRound(_ context.Context, rnd negotiation.Round, _ ...core.DBExecutor) (negotiation.Round, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	rnd.ID = uuid.New().String()
	repo.rounds[rnd.ID] = rnd
	return rnd, nil
}

func (repo *negotiationRepository) GetRoundByID(_ context.Context, id string, _ ...core.DBExecutor) (negotiation.Round, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	rnd, ok := repo.rounds[id]
	if !ok {
		return negotiation.Round{}, negotiation.ErrRoundNotFound
	}
	return rnd, nil
}

func (repo *negotiationRepository) GetActiveRound(_ context.Context, simulationID string, _ ...core.DBExecutor) (negotiation.Round, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	for _, rnd := range repo.rounds {
		if rnd.SimulationID == simulationID && rnd.IsActive() {
			return rnd, nil
		}
	}
	return negotiation.Round{}, negotiation.ErrRoundNotFound
}

func (repo *negotiationRepository) QueryRoundsBySimulation(_ context.Context, simulationID string, _ ...core.DBExecutor) ([]negotiation.Round, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	var rounds []negotiation.Round
	for _, rnd := range repo.rounds {
		if rnd.SimulationID == simulationID {
			rounds = append(rounds, rnd)
		}
	}
	sort.Slice(rounds, func(i, j int) bool { return rounds[i].Number < rounds[j].Number })
	return rounds, nil
}

func (repo *negotiationRepository) UpdateRound(_ context.Context, rnd negotiation.Round, _ ...core.DBExecutor) (negotiation.Round, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, ok := repo.rounds[rnd.ID]; !ok {
		return negotiation.Round{}, negotiation.ErrRoundNotFound
	}
	repo.rounds[rnd.ID] = rnd
	return rnd, nil
}

func (repo *negotiationRepository) CreateOffer(_ context.Context, off negotiation.Offer, _ ...core.DBExecutor) (negotiation.Offer, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	off.ID = uuid.New().String()
	repo.offers[off.ID] = off
	return off, nil
}

func (repo *negotiationRepository) QueryOffersByRound(_ context.Context, roundID string, _ ...core.DBExecutor) ([]negotiation.Offer, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	var offers []negotiation.Offer
	for _, off := range repo.offers {
		if off.RoundID == roundID {
			offers = append(offers, off)
		}
	}
	sortOffers(offers)
	return offers, nil
}

func (repo *negotiationRepository) QueryOffersBySimulation(_ context.Context, simulationID string, _ ...core.DBExecutor) ([]negotiation.Offer, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	roundIDs := make(map[string]bool)
	for _, rnd := range repo.rounds {
		if rnd.SimulationID == simulationID {
			roundIDs[rnd.ID] = true
		}
	}

	var offers []negotiation.Offer
	for _, off := range repo.offers {
		if roundIDs[off.RoundID] {
			offers = append(offers, off)
		}
	}
	sortOffers(offers)
	return offers, nil
}

func sortOffers(offers []negotiation.Offer) {
	sort.Slice(offers, func(i, j int) bool {
		if offers[i].SubmittedAt.Equal(offers[j].SubmittedAt) {
			return offers[i].ID < offers[j].ID
		}
		return offers[i].SubmittedAt.Before(offers[j].SubmittedAt)
	})
}
