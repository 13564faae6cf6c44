package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/school"
	"github.com/trezcool/darasa/services/logger"
	"github.com/trezcool/darasa/storage/database"
	"github.com/trezcool/darasa/storage/database/sqlite"
)

func main() {
	conf := core.NewConfig()

	zl, err := logsvc.NewZap(conf)
	if err != nil {
		log.Fatalf("setting up logger: %v", err)
	}
	logger := logsvc.NewRollbarLogger(zl.Named("ADMIN"), conf)
	logger.Enable(false)

	// set up DB
	if err = database.CreateIfNotExist(conf); err != nil {
		logger.Fatal("creating data directory", err)
	}
	db, err := sqlitedb.Open(context.Background(), conf.Database.Path, conf.Database.BusyTimeout)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening %s", conf.Database.Path), err)
	}

	// start CLI
	cli := commandLine{
		svc: school.NewService(db),
		in:  os.Stdin,
		out: os.Stdout,
	}
	err = cli.run(os.Args[1:])
	if cerr := db.Close(); cerr != nil {
		logger.Error("failed to close database", cerr)
	}
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
