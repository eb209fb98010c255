package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	out "github.com/Anaya3104-pk/smart-bus-pass-system/internal/tracking/application/ports/out"
	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/tracking/domain"
)

type locationPgRepository struct {
	pool *pgxpool.Pool
}

func NewLocationPgRepository(pool *pgxpool.Pool) out.LocationRepository {
	return &locationPgRepository{pool: pool}
}

func (r *locationPgRepository) AppendHistory(ctx context.Context, busID int64, lat, lng, speed float64, now time.Time) error {
	query := `
		INSERT INTO bus_locations (bus_id, latitude, longitude, speed, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if _, err := r.pool.Exec(ctx, query, busID, lat, lng, speed, now); err != nil {
		return fmt.Errorf("insert location sample: %w", err)
	}
	return nil
}

func (r *locationPgRepository) QueryHistory(ctx context.Context, busID int64, hoursBack, limit int) ([]domain.LocationSample, error) {
	query := `
		SELECT location_id, bus_id, latitude, longitude, speed, recorded_at
		FROM bus_locations
		WHERE bus_id = $1
		  AND recorded_at >= NOW() - ($2 * INTERVAL '1 hour')
		ORDER BY recorded_at DESC
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, busID, hoursBack, limit)
	if err != nil {
		return nil, fmt.Errorf("query location history: %w", err)
	}
	defer rows.Close()

	samples := []domain.LocationSample{}
	for rows.Next() {
		var s domain.LocationSample
		if err := rows.Scan(&s.LocationID, &s.BusID, &s.Latitude, &s.Longitude, &s.Speed, &s.Timestamp); err != nil {
			return nil, fmt.Errorf("scan location sample: %w", err)
		}
		samples = append(samples, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate location history: %w", err)
	}

	return samples, nil
}
