package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	out "github.com/Anaya3104-pk/smart-bus-pass-system/internal/tracking/application/ports/out"
	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/tracking/domain"
)

type routePgRepository struct {
	pool *pgxpool.Pool
}

func NewRoutePgRepository(pool *pgxpool.Pool) out.RouteRepository {
	return &routePgRepository{pool: pool}
}

func (r *routePgRepository) ListActive(ctx context.Context) ([]domain.Route, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT route_id, route_name, start_point, end_point, distance_km, fare, active
		FROM routes
		WHERE active = TRUE
		ORDER BY route_id
	`)
	if err != nil {
		return nil, fmt.Errorf("query routes: %w", err)
	}
	defer rows.Close()

	routes := []domain.Route{}
	for rows.Next() {
		var rt domain.Route
		if err := rows.Scan(&rt.RouteID, &rt.RouteName, &rt.StartPoint, &rt.EndPoint, &rt.DistanceKm, &rt.Fare, &rt.Active); err != nil {
			return nil, fmt.Errorf("scan route: %w", err)
		}
		routes = append(routes, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate routes: %w", err)
	}

	return routes, nil
}

// ActiveRouteForUser reads the pass table owned by the CRUD layer. Newest
// approved, unexpired pass decides the route.
func (r *routePgRepository) ActiveRouteForUser(ctx context.Context, userID int64) (*domain.Route, error) {
	var rt domain.Route
	err := r.pool.QueryRow(ctx, `
		SELECT r.route_id, r.route_name, r.start_point, r.end_point, r.distance_km, r.fare, r.active
		FROM bus_passes bp
		JOIN routes r ON bp.route_id = r.route_id
		WHERE bp.user_id = $1
		  AND bp.status = 'approved'
		  AND (bp.expiry_date IS NULL OR bp.expiry_date >= NOW())
		ORDER BY bp.created_at DESC
		LIMIT 1
	`, userID).Scan(&rt.RouteID, &rt.RouteName, &rt.StartPoint, &rt.EndPoint, &rt.DistanceKm, &rt.Fare, &rt.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNoActivePass
		}
		return nil, fmt.Errorf("lookup active pass: %w", err)
	}

	return &rt, nil
}
