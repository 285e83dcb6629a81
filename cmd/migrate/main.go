package main

import (
	"flag"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"store-backend-api/internal/database"
)

func main() {
	var (
		dbPath         = flag.String("db", "./data/store.db", "Database file path")
		migrationsPath = flag.String("migrations", "./migrations", "Migrations directory path")
		action         = flag.String("action", "up", "Migration action: up, down, status, validate")
		verbose        = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	logger := logrus.New()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	absDBPath, err := filepath.Abs(*dbPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to get absolute database path")
	}

	absMigrationsPath, err := filepath.Abs(*migrationsPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to get absolute migrations path")
	}

	logger.WithFields(logrus.Fields{
		"db_path":         absDBPath,
		"migrations_path": absMigrationsPath,
		"action":          *action,
	}).Info("Starting migration tool")

	cm := database.NewConnectionManager(&database.ConnectionConfig{
		DatabasePath:   absDBPath,
		MigrationsPath: absMigrationsPath,
		MaxOpenConns:   1,
		MaxIdleConns:   1,
		Logger:         logger,
	})

	switch *action {
	case "up":
		err = withConnection(cm, func(mm *database.MigrationManager) error {
			return mm.RunMigrations()
		})
	case "down":
		err = withConnection(cm, func(mm *database.MigrationManager) error {
			return mm.RollbackMigration()
		})
	case "status":
		err = withConnection(cm, func(mm *database.MigrationManager) error {
			status, err := mm.GetMigrationStatus()
			if err != nil {
				return err
			}
			fmt.Printf("Migration Status:\n")
			fmt.Printf("  Version: %d\n", status.Version)
			fmt.Printf("  Applied: %t\n", status.Applied)
			fmt.Printf("  Dirty: %t\n", status.Dirty)
			return nil
		})
	case "validate":
		err = withConnection(cm, func(mm *database.MigrationManager) error {
			return mm.ValidateSchema()
		})
	default:
		logger.WithField("action", *action).Fatal("Unknown action. Use: up, down, status, validate")
	}

	if err != nil {
		logger.WithError(err).Fatal("Migration action failed")
	}

	logger.Info("Migration tool completed successfully")
}

func withConnection(cm *database.ConnectionManager, fn func(*database.MigrationManager) error) error {
	if err := cm.Connect(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer cm.Close()

	return fn(cm.GetMigrationManager())
}
