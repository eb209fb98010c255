package in

import (
	"context"

	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/tracking/domain"
)

type ListRoutesUseCase interface {
	Execute(ctx context.Context) ([]domain.Route, error)
}

type GetActiveRouteUseCase interface {
	// Execute resolves the route of the principal's approved, unexpired
	// pass. Viewers use it to decide which route to subscribe to.
	Execute(ctx context.Context, userID int64) (*domain.Route, error)
}
