package out

import (
	"context"

	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/tracking/domain"
)

// RouteRepository reads route data owned by the CRUD layer.
type RouteRepository interface {
	ListActive(ctx context.Context) ([]domain.Route, error)

	// ActiveRouteForUser resolves the route of the user's approved,
	// unexpired pass. Returns domain.ErrNoActivePass when there is none.
	ActiveRouteForUser(ctx context.Context, userID int64) (*domain.Route, error)
}
