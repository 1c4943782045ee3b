package main

import (
	"log"
	"os"

	"github.com/trezcool/mazungumzo/core"
	"github.com/trezcool/mazungumzo/storage/database"
	sqlxrepos "github.com/trezcool/mazungumzo/storage/database/sqlx"
)

var logger *log.Logger // todo: logger service

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up DB
	sqlDB, err := database.Open(conf)
	errAndDie(err)
	defer sqlDB.Close()
	errAndDie(sqlDB.Ping())
	db := sqlxrepos.NewDB(sqlDB)

	// start CLI
	cli := commandLine{
		db:      sqlDB,
		negRepo: sqlxrepos.NewNegotiationRepository(db),
		conf:    conf,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
