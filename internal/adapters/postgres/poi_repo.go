package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/jelajah/internal/core/domain"
)

// POIRepo implements ports.POIRepository with pgx.
type POIRepo struct {
	db *DB
}

// NewPOIRepo creates a new POIRepo.
func NewPOIRepo(db *DB) *POIRepo {
	return &POIRepo{db: db}
}

// Describe names the backing table.
func (r *POIRepo) Describe() string {
	return "postgres:pois"
}

// LoadAll returns every POI in dataset order.
func (r *POIRepo) LoadAll(ctx context.Context) ([]domain.PointOfInterest, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name, COALESCE(description, ''),
		       ST_Y(location::geometry) as lat,
		       ST_X(location::geometry) as lon
		FROM pois
		ORDER BY ordinal
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pois []domain.PointOfInterest
	for rows.Next() {
		var p domain.PointOfInterest
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Location.Lat, &p.Location.Lon); err != nil {
			return nil, err
		}
		pois = append(pois, p)
	}
	return pois, rows.Err()
}

// ReplaceAll swaps the whole dataset inside one transaction, so readers see
// either the old set or the new one.
func (r *POIRepo) ReplaceAll(ctx context.Context, pois []domain.PointOfInterest) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM pois`); err != nil {
		return fmt.Errorf("clear pois: %w", err)
	}

	batch := &pgx.Batch{}
	for i, p := range pois {
		batch.Queue(`
			INSERT INTO pois (id, ordinal, name, description, location)
			VALUES ($1, $2, $3, $4, ST_SetSRID(ST_MakePoint($5, $6), 4326)::geography)
		`, p.ID, i, p.Name, p.Description, p.Location.Lon, p.Location.Lat)
	}
	br := tx.SendBatch(ctx, batch)
	for range pois {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("batch close: %w", err)
	}

	return tx.Commit(ctx)
}

// Count returns the number of stored POIs.
func (r *POIRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM pois`).Scan(&n)
	return n, err
}
