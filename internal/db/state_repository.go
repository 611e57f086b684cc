package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/JasperJeuken/SkyTracker/pkg/skyapi"
)

// StateRepository handles database operations for aircraft state history.
type StateRepository struct {
	db *DB
}

// NewStateRepository creates a new state repository.
func NewStateRepository(db *DB) *StateRepository {
	return &StateRepository{db: db}
}

// SaveBatch inserts a batch of snapshots in one transaction. Re-observed
// states (same callsign and timestamp) are skipped, so overlapping fetches
// never produce duplicate rows.
// Returns the number of newly inserted rows.
func (r *StateRepository) SaveBatch(ctx context.Context, snapshots []skyapi.Snapshot) (int, error) {
	if len(snapshots) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO aircraft_states (
			callsign, latitude, longitude, heading,
			ground_speed, vertical_speed, altitude, model, observed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (callsign, observed_at) DO NOTHING`,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, snap := range snapshots {
		res, err := stmt.ExecContext(ctx,
			snap.Callsign, snap.Lat, snap.Lon,
			nullFloat(snap.Heading),
			nullFloat(snap.GroundSpeed),
			nullFloat(snap.VerticalSpeed),
			nullFloat(snap.Altitude),
			nullString(snap.Model),
			snap.ObservedAt.UTC(),
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert state for %s: %w", snap.Callsign, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit batch: %w", err)
	}

	return inserted, nil
}

// LatestStates returns the most recent recorded state of every aircraft
// inside the bounding box.
func (r *StateRepository) LatestStates(ctx context.Context, bounds skyapi.Bounds) ([]skyapi.Snapshot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT ON (callsign)
			callsign, latitude, longitude, heading,
			ground_speed, vertical_speed, altitude, model, observed_at
		 FROM aircraft_states
		 WHERE latitude BETWEEN $1 AND $2
		   AND longitude BETWEEN $3 AND $4
		 ORDER BY callsign, observed_at DESC`,
		bounds.South, bounds.North, bounds.West, bounds.East,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest states: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

// Track returns the recorded history of one aircraft since the given time,
// most recent first. limit 0 = all points.
func (r *StateRepository) Track(ctx context.Context, callsign string, since time.Time, limit int) ([]skyapi.HistoryPoint, error) {
	query := `SELECT latitude, longitude, heading, altitude, observed_at
		 FROM aircraft_states
		 WHERE callsign = $1 AND observed_at >= $2
		 ORDER BY observed_at DESC`
	args := []interface{}{callsign, since.UTC()}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query track for %s: %w", callsign, err)
	}
	defer rows.Close()

	var points []skyapi.HistoryPoint
	for rows.Next() {
		var (
			p        skyapi.HistoryPoint
			heading  sql.NullFloat64
			altitude sql.NullFloat64
		)
		if err := rows.Scan(&p.Lat, &p.Lon, &heading, &altitude, &p.Time); err != nil {
			return nil, fmt.Errorf("failed to scan track point: %w", err)
		}
		p.Heading = floatPtr(heading)
		p.Altitude = floatPtr(altitude)
		points = append(points, p)
	}

	return points, rows.Err()
}

// scanSnapshots reads snapshot rows produced by the state queries.
func scanSnapshots(rows *sql.Rows) ([]skyapi.Snapshot, error) {
	var snapshots []skyapi.Snapshot
	for rows.Next() {
		var (
			snap                              skyapi.Snapshot
			heading, speedH, speedV, altitude sql.NullFloat64
			model                             sql.NullString
		)
		err := rows.Scan(&snap.Callsign, &snap.Lat, &snap.Lon,
			&heading, &speedH, &speedV, &altitude, &model, &snap.ObservedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan state: %w", err)
		}
		snap.Heading = floatPtr(heading)
		snap.GroundSpeed = floatPtr(speedH)
		snap.VerticalSpeed = floatPtr(speedV)
		snap.Altitude = floatPtr(altitude)
		if model.Valid {
			snap.Model = &model.String
		}
		snapshots = append(snapshots, snap)
	}

	return snapshots, rows.Err()
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
