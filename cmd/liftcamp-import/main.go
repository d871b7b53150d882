package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/claude/liftcamp/internal/config"
	"github.com/claude/liftcamp/internal/importer"
	"github.com/claude/liftcamp/internal/service"
	"github.com/claude/liftcamp/internal/storage"
	"github.com/joho/godotenv"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	exportPath := flag.String("path", "", "path to legacy SQLite export (required)")
	dryRun := flag.Bool("dry-run", false, "report counts without inserting into database")
	flag.Parse()

	_ = godotenv.Load()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *exportPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: liftcamp-import -config config.yaml -path /path/to/export.db [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dsn := cfg.Database.DSN()

	// Run migrations
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	ctx := context.Background()

	if *dryRun {
		log.Info("DRY RUN mode — no data will be written to the database")
	}

	// Connect database
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	imp := importer.New(db, log, *dryRun)
	stats, touched, err := imp.Import(ctx, *exportPath)
	if err != nil {
		log.Error("import failed", "error", err)
		os.Exit(1)
	}

	log.Info("import finished",
		"athletes", stats.Athletes,
		"blocks", stats.Blocks,
		"sessions", stats.Sessions,
		"results", stats.Results,
		"skipped", stats.Skipped,
	)

	// Rebuild ledgers for every athlete whose results changed
	if !*dryRun && len(touched) > 0 {
		svc := service.New(db, nil, cfg.Program, log)
		now := time.Now().UTC()
		for _, athleteID := range touched {
			if err := svc.Recompute(ctx, athleteID, now); err != nil {
				log.Error("recompute failed", "athlete", athleteID, "error", err)
			}
		}
		log.Info("ledgers recomputed", "athletes", len(touched))
	}
}
