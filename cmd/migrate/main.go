package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dropbuddy/dropbuddy/internal/app"
	"github.com/dropbuddy/dropbuddy/internal/database"
	"github.com/dropbuddy/dropbuddy/pkg/logger"
)

const usage = `Usage: dropbuddy-migrate [flags] <command>

Commands:
  up      Apply schema migrations
  seed    Apply schema migrations and insert seed data
  status  Show the managed tables and whether they exist
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("dropbuddy-migrate", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)
	fs.Usage = func() { fmt.Fprint(os.Stdout, usage) }

	var configPath string
	fs.StringVar(&configPath, "config", "", "Path to configuration directory")

	if err := fs.Parse(args); err != nil {
		return err
	}

	command := fs.Arg(0)
	if command == "" {
		fs.Usage()
		return errors.New("a command is required")
	}

	_ = godotenv.Load()

	var cfg *app.Config
	var err error
	if configPath == "" {
		cfg, err = app.LoadConfig()
	} else {
		cfg, err = app.LoadConfig(configPath)
	}
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("required environment variable %s is not set", app.EnvDatabaseURL)
	}

	if err := app.ConfigureLogging(cfg.Logging); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	defer logger.Sync()

	log := logger.WithModule("migrate")

	db, err := database.Open(cfg.Database.DatabaseOpenConfig())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
	}()

	switch command {
	case "up":
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Info("migrations applied", zap.Strings("tables", database.MigratedTables()))
	case "seed":
		if err := database.AutoMigrateAndSeed(db); err != nil {
			return fmt.Errorf("migrate and seed: %w", err)
		}
		log.Info("migrations and seed data applied")
	case "status":
		printStatus(db)
	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", command)
	}

	return nil
}

func printStatus(db *gorm.DB) {
	migrator := db.Migrator()
	for _, table := range database.MigratedTables() {
		state := "missing"
		if migrator.HasTable(table) {
			state = "present"
		}
		fmt.Printf("%-16s %s\n", table, state)
	}
}
