package main

import (
	"context"
	"log/slog"
	"os"

	pkgdb "github.com/floroz/bidmaster/pkg/database"
	"github.com/floroz/bidmaster/services/auction-service/internal/config"
	"github.com/floroz/bidmaster/services/auction-service/migrations"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	config.LoadDotEnv()
	cfg, err := config.Load()
	if err == nil {
		err = cfg.RequireDatabase()
	}
	if err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	applied, err := pkgdb.Migrate(context.Background(), cfg.DatabaseURL, migrations.FS)
	if err != nil {
		logger.Error("Migration failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Migrations applied", "count", applied)
}
