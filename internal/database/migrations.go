package database

import (
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

func setDialect() error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return nil
}

// RunMigrations executes all pending database migrations
func RunMigrations(db *sql.DB, migrationsDir string, logger *zap.Logger) error {
	if err := setDialect(); err != nil {
		return err
	}

	logger.Info("Checking for pending migrations...", zap.String("dir", migrationsDir))

	if err := goose.Up(db, migrationsDir); err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, err := goose.GetDBVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	logger.Info("Migrations completed successfully", zap.Int64("version", version))
	return nil
}

// RollbackMigration reverts the most recently applied migration
func RollbackMigration(db *sql.DB, migrationsDir string, logger *zap.Logger) error {
	if err := setDialect(); err != nil {
		return err
	}

	if err := goose.Down(db, migrationsDir); err != nil {
		logger.Error("Failed to roll back migration", zap.Error(err))
		return fmt.Errorf("failed to roll back migration: %w", err)
	}

	logger.Info("Rolled back one migration")
	return nil
}

// GetMigrationStatus prints the applied state of every migration
func GetMigrationStatus(db *sql.DB, migrationsDir string) error {
	if err := setDialect(); err != nil {
		return err
	}

	return goose.Status(db, migrationsDir)
}
