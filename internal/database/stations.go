package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"stationbook/internal/models"
)

// SeedStations applies the configured station list to the database.
// Stations are seed-only in this service: rows are upserted by id with
// created_at preserved, and there is no delete path.
func (db *DB) SeedStations(ctx context.Context, stations []models.Station) error {
	now := time.Now()
	for _, st := range stations {
		_, err := db.ExecContext(ctx, `
			INSERT INTO stations (id, name, specs, rate_per_hour, created_at, updated_at)
			VALUES (?, ?, ?, ?, COALESCE((SELECT created_at FROM stations WHERE id = ?), ?), ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				specs = excluded.specs,
				rate_per_hour = excluded.rate_per_hour,
				updated_at = excluded.updated_at`,
			st.ID, st.Name, st.Specs, st.RatePerHour, st.ID, now, now,
		)
		if err != nil {
			return fmt.Errorf("seed station %d: %w", st.ID, err)
		}
	}
	return nil
}

// ListStations returns all stations ordered by id.
func (db *DB) ListStations(ctx context.Context) ([]models.Station, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, specs, rate_per_hour, created_at
		FROM stations ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stations []models.Station
	for rows.Next() {
		var st models.Station
		var specs sql.NullString
		if err := rows.Scan(&st.ID, &st.Name, &specs, &st.RatePerHour, &st.CreatedAt); err != nil {
			return nil, err
		}
		st.Specs = specs.String
		stations = append(stations, st)
	}
	return stations, rows.Err()
}

// GetStationByID returns one station or ErrStationNotFound.
func (db *DB) GetStationByID(ctx context.Context, id int64) (*models.Station, error) {
	var st models.Station
	var specs sql.NullString
	err := db.QueryRowContext(ctx, `
		SELECT id, name, specs, rate_per_hour, created_at
		FROM stations WHERE id = ?`, id,
	).Scan(&st.ID, &st.Name, &specs, &st.RatePerHour, &st.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStationNotFound
	}
	if err != nil {
		return nil, err
	}
	st.Specs = specs.String
	return &st, nil
}
