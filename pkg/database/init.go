package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// InitializeDatabase creates cfg.DBName if it does not exist yet. It
// connects to the maintenance 'postgres' database to do so.
func InitializeDatabase(ctx context.Context, cfg Config) error {
	if cfg.DBName == "" {
		return fmt.Errorf("no database name provided")
	}

	admin := cfg
	admin.DBName = "postgres"

	conn, err := openSQLDB(ctx, admin)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres database: %w", err)
	}
	defer conn.Close()

	if err := createDatabaseIfNotExists(ctx, conn, cfg.DBName); err != nil {
		return fmt.Errorf("failed to create database %q: %w", cfg.DBName, err)
	}
	return nil
}

func createDatabaseIfNotExists(ctx context.Context, conn *sql.DB, dbName string) error {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)`
	if err := conn.QueryRowContext(ctx, query, dbName).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check if database exists: %w", err)
	}
	if exists {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	// CREATE DATABASE does not accept bind parameters.
	if _, err := conn.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(dbName)); err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	return nil
}
