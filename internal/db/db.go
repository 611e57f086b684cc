// Package db persists aircraft state history in PostgreSQL for the
// headless collector.
package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/JasperJeuken/SkyTracker/pkg/config"
	_ "github.com/lib/pq" // PostgreSQL driver
)

//go:embed schema.sql
var schemaSQL embed.FS

// DB wraps a database connection with helper methods.
type DB struct {
	*sql.DB
	config config.DatabaseConfig
}

// Connect establishes a connection to the PostgreSQL database.
func Connect(cfg config.DatabaseConfig) (*DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.Username,
		cfg.Password,
		cfg.Database,
		cfg.SSLMode,
	)

	sqlDB, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{
		DB:     sqlDB,
		config: cfg,
	}, nil
}

// InitSchema creates or updates the database schema.
// This should be called once at application startup.
func (db *DB) InitSchema(ctx context.Context) error {
	schemaBytes, err := schemaSQL.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}

	if _, err := db.ExecContext(ctx, string(schemaBytes)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return nil
}

// CleanupOldData removes state history older than maxAge.
// Should be called periodically to prevent unbounded growth.
func (db *DB) CleanupOldData(ctx context.Context, maxAge time.Duration) error {
	cutoff := time.Now().UTC().Add(-maxAge)

	_, err := db.ExecContext(ctx,
		`DELETE FROM aircraft_states WHERE observed_at < $1`,
		cutoff,
	)
	if err != nil {
		return fmt.Errorf("failed to delete old states: %w", err)
	}

	return nil
}

// GetStats returns database statistics.
func (db *DB) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var stateCount int64
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM aircraft_states`,
	).Scan(&stateCount)
	if err != nil {
		return nil, err
	}
	stats["state_records"] = stateCount

	var aircraftCount int
	err = db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT callsign) FROM aircraft_states`,
	).Scan(&aircraftCount)
	if err != nil {
		return nil, err
	}
	stats["distinct_aircraft"] = aircraftCount

	var latest sql.NullTime
	err = db.QueryRowContext(ctx,
		`SELECT MAX(observed_at) FROM aircraft_states`,
	).Scan(&latest)
	if err != nil {
		return nil, err
	}
	if latest.Valid {
		stats["latest_observation"] = latest.Time
	}

	return stats, nil
}
