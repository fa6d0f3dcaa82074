package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"catalog/internal/config"
	"catalog/internal/database"
	"catalog/internal/logger"
	"catalog/migrations"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	command := pflag.String("command", "up", "migration command: up, down, status or version")
	dir := pflag.String("dir", "", "read migrations from this directory instead of the embedded set")
	pflag.Parse()

	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() { _ = log.Sync() }()

	if err := run(context.Background(), cfg, log, *command, *dir); err != nil {
		log.Error("Migration command failed", zap.String("command", *command), zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger, command, dir string) error {
	var source fs.FS = migrations.FS
	if dir != "" {
		source = os.DirFS(dir)
	}

	db, err := database.New(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	switch command {
	case "up":
		return database.RunMigrations(db.DB(), source, ".", log)
	case "down":
		return database.RollbackMigration(db.DB(), source, ".", log)
	case "status":
		return database.GetMigrationStatus(db.DB(), source, ".")
	case "version":
		version, err := database.GetMigrationVersion(db.DB(), source)
		if err != nil {
			return err
		}
		log.Info("Current migration version", zap.Int64("version", version))
		return nil
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}
