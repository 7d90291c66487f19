package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"vending-inventory/internal/config"
	"vending-inventory/internal/database"
	"vending-inventory/internal/logger"

	"go.uber.org/zap"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: migrate [-dir migrations] up|down|status\n")
	flag.PrintDefaults()
}

func main() {
	dir := flag.String("dir", "", "migrations directory (defaults to DB_MIGRATIONS_DIR)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if cfg.Database.Driver != config.DriverPostgres {
		fmt.Fprintf(os.Stderr, "migrations need DB_DRIVER=%s, got %q\n", config.DriverPostgres, cfg.Database.Driver)
		os.Exit(1)
	}
	if *dir == "" {
		*dir = cfg.Database.MigrationsDir
	}

	log, err := logger.New(cfg.Server.Env, cfg.Server.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	dbService, err := database.New(context.Background(), cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer dbService.Close()

	switch command := flag.Arg(0); command {
	case "up":
		err = database.RunMigrations(dbService.DB(), *dir, log)
	case "down":
		err = database.RollbackMigration(dbService.DB(), *dir, log)
	case "status":
		err = database.GetMigrationStatus(dbService.DB(), *dir)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Error("Migration command failed", zap.Error(err))
		os.Exit(1)
	}
}
