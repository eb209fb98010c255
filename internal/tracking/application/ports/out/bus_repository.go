package out

import (
	"context"
	"time"

	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/tracking/domain"
)

// BusRepository owns the current-state row per bus.
type BusRepository interface {
	// UpsertCurrentLocation overwrites the bus's location fields
	// unconditionally and marks it tracking. Last write wins; there is
	// no ordering guard across concurrent samples.
	UpsertCurrentLocation(ctx context.Context, busID int64, lat, lng float64, now time.Time) error

	// QueryLive returns tracked, active buses with known coordinates,
	// joined with their route, newest update first.
	QueryLive(ctx context.Context, routeID *int64) ([]domain.LiveBus, error)

	// RouteOf reports the route the bus is assigned to, nil when none.
	RouteOf(ctx context.Context, busID int64) (*int64, error)
}
