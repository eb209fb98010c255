package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	out "github.com/Anaya3104-pk/smart-bus-pass-system/internal/tracking/application/ports/out"
	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/tracking/domain"
)

type busPgRepository struct {
	pool *pgxpool.Pool
}

func NewBusPgRepository(pool *pgxpool.Pool) out.BusRepository {
	return &busPgRepository{pool: pool}
}

// UpsertCurrentLocation overwrites the bus's location unconditionally.
// No ordering guard: an out-of-order sample can replace a newer one,
// which is acceptable at seconds-scale GPS polling.
func (r *busPgRepository) UpsertCurrentLocation(ctx context.Context, busID int64, lat, lng float64, now time.Time) error {
	query := `
		INSERT INTO buses (bus_id, current_lat, current_lng, last_updated, is_tracking)
		VALUES ($1, $2, $3, $4, TRUE)
		ON CONFLICT (bus_id) DO UPDATE
		SET current_lat  = EXCLUDED.current_lat,
		    current_lng  = EXCLUDED.current_lng,
		    last_updated = EXCLUDED.last_updated,
		    is_tracking  = TRUE
	`

	if _, err := r.pool.Exec(ctx, query, busID, lat, lng, now); err != nil {
		return fmt.Errorf("upsert bus location: %w", err)
	}
	return nil
}

func (r *busPgRepository) QueryLive(ctx context.Context, routeID *int64) ([]domain.LiveBus, error) {
	query := `
		SELECT
			b.bus_id,
			b.bus_number,
			b.route_id,
			b.current_lat,
			b.current_lng,
			b.last_updated,
			b.status,
			b.is_tracking,
			COALESCE(r.route_name, ''),
			COALESCE(r.start_point, ''),
			COALESCE(r.end_point, '')
		FROM buses b
		LEFT JOIN routes r ON b.route_id = r.route_id
		WHERE b.status = 'active'
		  AND b.is_tracking = TRUE
		  AND b.current_lat IS NOT NULL
		  AND b.current_lng IS NOT NULL
	`

	args := []any{}
	if routeID != nil {
		query += ` AND b.route_id = $1`
		args = append(args, *routeID)
	}
	query += ` ORDER BY b.last_updated DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query live buses: %w", err)
	}
	defer rows.Close()

	buses := []domain.LiveBus{}
	for rows.Next() {
		var b domain.LiveBus
		if err := rows.Scan(
			&b.BusID,
			&b.BusNumber,
			&b.RouteID,
			&b.CurrentLat,
			&b.CurrentLng,
			&b.LastUpdated,
			&b.Status,
			&b.IsTracking,
			&b.RouteName,
			&b.StartPoint,
			&b.EndPoint,
		); err != nil {
			return nil, fmt.Errorf("scan live bus: %w", err)
		}
		buses = append(buses, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate live buses: %w", err)
	}

	return buses, nil
}

func (r *busPgRepository) RouteOf(ctx context.Context, busID int64) (*int64, error) {
	var routeID *int64
	err := r.pool.QueryRow(ctx,
		`SELECT route_id FROM buses WHERE bus_id = $1`, busID,
	).Scan(&routeID)
	if err != nil {
		return nil, fmt.Errorf("lookup bus route: %w", err)
	}
	return routeID, nil
}
