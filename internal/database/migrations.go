package database

import (
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

func prepareGoose(migrationsFS fs.FS) error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return nil
}

// RunMigrations executes all pending migrations found in dir of migrationsFS
func RunMigrations(db *sql.DB, migrationsFS fs.FS, dir string, logger *zap.Logger) error {
	if err := prepareGoose(migrationsFS); err != nil {
		return err
	}

	logger.Info("Checking for pending migrations...", zap.String("dir", dir))

	if err := goose.Up(db, dir); err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Migrations completed successfully")
	return nil
}

// RollbackMigration reverts the most recently applied migration
func RollbackMigration(db *sql.DB, migrationsFS fs.FS, dir string, logger *zap.Logger) error {
	if err := prepareGoose(migrationsFS); err != nil {
		return err
	}

	if err := goose.Down(db, dir); err != nil {
		logger.Error("Failed to roll back migration", zap.Error(err))
		return fmt.Errorf("failed to roll back migration: %w", err)
	}

	logger.Info("Rolled back one migration")
	return nil
}

// GetMigrationStatus prints the current migration status
func GetMigrationStatus(db *sql.DB, migrationsFS fs.FS, dir string) error {
	if err := prepareGoose(migrationsFS); err != nil {
		return err
	}

	return goose.Status(db, dir)
}

// GetMigrationVersion returns the version of the latest applied migration
func GetMigrationVersion(db *sql.DB, migrationsFS fs.FS) (int64, error) {
	if err := prepareGoose(migrationsFS); err != nil {
		return 0, err
	}

	version, err := goose.GetDBVersion(db)
	if err != nil {
		return 0, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, nil
}
