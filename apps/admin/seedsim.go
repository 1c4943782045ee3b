package main

import (
	"context"
	"time"

	"github.com/trezcool/mazungumzo/core/negotiation"
)

type seedSimOptions struct {
	title          string
	totalRounds    int
	plaintiffTeam  string
	defendantTeam  string
	plaintiffMin   float64
	plaintiffIdeal float64
	defendantIdeal float64
	defendantMax   float64
}

// seedSimulation creates a simulation in `setup` directly through the
// repository; the instructor drives the lifecycle through the API afterwards.
func (cli *commandLine) seedSimulation(opts seedSimOptions) error {
	now := time.Now().UTC()
	sim := negotiation.Simulation{
		Title:                  opts.title,
		Status:                 negotiation.StatusSetup,
		CurrentRound:           1,
		TotalRounds:            opts.totalRounds,
		PlaintiffTeamID:        opts.plaintiffTeam,
		DefendantTeamID:        opts.defendantTeam,
		PlaintiffMinAcceptable: opts.plaintiffMin,
		PlaintiffIdeal:         opts.plaintiffIdeal,
		DefendantIdeal:         opts.defendantIdeal,
		DefendantMaxAcceptable: opts.defendantMax,
		Config: negotiation.SimulationConfig{
			RoundDuration: cli.conf.Negotiation.RoundDuration,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	sim, err := cli.negRepo.CreateSimulation(context.Background(), sim)
	if err != nil {
		return err
	}
	logger.Printf("created simulation %s (%q, %d rounds)\n", sim.ID, sim.Title, sim.TotalRounds)
	return nil
}
