package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/samirrijal/driverdash/internal/core/domain"
)

// RouteHistoryRepo implements ports.RouteHistoryRepository.
type RouteHistoryRepo struct {
	db *DB
}

func NewRouteHistoryRepo(db *DB) *RouteHistoryRepo { return &RouteHistoryRepo{db: db} }

// Insert stores a record and fills in its generated id and creation time.
func (r *RouteHistoryRepo) Insert(ctx context.Context, rec *domain.RouteRecord) error {
	path, err := encodePath(rec.Path)
	if err != nil {
		return err
	}
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO route_history (trip_id, auto_selected_trip_id, algorithm, path, best_score_km, inverted, fallback)
		VALUES (NULLIF($1, ''), NULLIF($2, ''), NULLIF($3, ''), $4, $5, $6, $7)
		RETURNING id::text, created_at
	`, rec.TripID, rec.AutoSelectedTripID, rec.Algorithm, path,
		rec.BestScoreKm, rec.Inverted, rec.Fallback).Scan(&rec.ID, &rec.CreatedAt)
}

// ListByTrip returns the newest records for a trip first.
func (r *RouteHistoryRepo) ListByTrip(ctx context.Context, tripID string, limit int) ([]domain.RouteRecord, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id::text, COALESCE(trip_id, ''), COALESCE(auto_selected_trip_id, ''), COALESCE(algorithm, ''),
		       path, best_score_km, inverted, fallback, created_at
		FROM route_history
		WHERE trip_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, tripID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.RouteRecord, 0, limit)
	for rows.Next() {
		var (
			rec  domain.RouteRecord
			path []byte
		)
		if err := rows.Scan(&rec.ID, &rec.TripID, &rec.AutoSelectedTripID, &rec.Algorithm,
			&path, &rec.BestScoreKm, &rec.Inverted, &rec.Fallback, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if rec.Path, err = decodePath(path); err != nil {
			return nil, fmt.Errorf("record %s: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Paths are stored as JSONB [[lat, lon], ...].
func encodePath(path []domain.GeoPoint) ([]byte, error) {
	pairs := make([][2]float64, len(path))
	for i, p := range path {
		pairs[i] = [2]float64{p.Lat, p.Lon}
	}
	return json.Marshal(pairs)
}

func decodePath(data []byte) ([]domain.GeoPoint, error) {
	if len(data) == 0 {
		return []domain.GeoPoint{}, nil
	}
	var pairs [][2]float64
	if err := json.Unmarshal(data, &pairs); err != nil {
		return nil, fmt.Errorf("decode path: %w", err)
	}
	path := make([]domain.GeoPoint, len(pairs))
	for i, p := range pairs {
		path[i] = domain.GeoPoint{Lat: p[0], Lon: p[1]}
	}
	return path, nil
}
