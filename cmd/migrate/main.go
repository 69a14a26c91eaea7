package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/claydohscope/storefront/internal/config"
	"github.com/claydohscope/storefront/internal/repository/postgres"
)

func main() {
	dbCfg := config.LoadDatabase()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	dsn := dbCfg.DSN()
	if dsnEnv := os.Getenv("DATABASE_URL"); dsnEnv != "" {
		dsn = dsnEnv
	} else if err := ensureDatabase(dbCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to prepare database: %v\n", err)
		os.Exit(1)
	}

	db, err := postgres.Open(dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := postgres.RunMigrations(context.Background(), db, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing migration: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Migration completed successfully!")
}

// ensureDatabase connects to the maintenance database and creates the target database if needed
func ensureDatabase(cfg config.DatabaseConfig) error {
	admin := cfg
	admin.DBName = "postgres"

	postgresDB, err := sql.Open("postgres", admin.DSN())
	if err != nil {
		return err
	}
	defer postgresDB.Close()

	var exists bool
	err = postgresDB.QueryRow(
		"SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", cfg.DBName,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check database existence: %w", err)
	}

	if !exists {
		fmt.Printf("Database '%s' does not exist. Creating...\n", cfg.DBName)
		if _, err := postgresDB.Exec("CREATE DATABASE " + pq.QuoteIdentifier(cfg.DBName)); err != nil {
			return fmt.Errorf("failed to create database: %w", err)
		}
		fmt.Printf("Database '%s' created successfully.\n", cfg.DBName)
	}
	return nil
}
