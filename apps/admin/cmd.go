package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"

	"github.com/trezcool/mazungumzo/core"
	"github.com/trezcool/mazungumzo/core/negotiation"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db      *sql.DB
	negRepo negotiation.Repository
	conf    *core.Config
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [args] - run DB migrations (up|up-by-one|up-to|down|down-to|redo|reset|status|version|create|fix)")
	fmt.Println("  seedsim [flags]        - create a demo negotiation simulation")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	seedSimCmd := flag.NewFlagSet("seedsim", flag.ExitOnError)
	seedSimTitle := seedSimCmd.String("title", "Demo Settlement Negotiation", "The simulation title.")
	seedSimRounds := seedSimCmd.Int("rounds", 5, "Total number of negotiation rounds.")
	seedSimPlaintiff := seedSimCmd.String("plaintiff", "team-plaintiff", "The plaintiff team ID.")
	seedSimDefendant := seedSimCmd.String("defendant", "team-defendant", "The defendant team ID.")
	seedSimPMin := seedSimCmd.Float64("plaintiff-min", 150000, "Plaintiff's minimum acceptable amount.")
	seedSimPIdeal := seedSimCmd.Float64("plaintiff-ideal", 300000, "Plaintiff's ideal amount.")
	seedSimDIdeal := seedSimCmd.Float64("defendant-ideal", 100000, "Defendant's ideal amount.")
	seedSimDMax := seedSimCmd.Float64("defendant-max", 250000, "Defendant's maximum acceptable amount.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "seedsim":
		if err := seedSimCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.seedSimulation(seedSimOptions{
			title:          *seedSimTitle,
			totalRounds:    *seedSimRounds,
			plaintiffTeam:  *seedSimPlaintiff,
			defendantTeam:  *seedSimDefendant,
			plaintiffMin:   *seedSimPMin,
			plaintiffIdeal: *seedSimPIdeal,
			defendantIdeal: *seedSimDIdeal,
			defendantMax:   *seedSimDMax,
		})
	default:
		cli.printUsage()
		return errHelp
	}
}
