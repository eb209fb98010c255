package in

import (
	"context"

	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/tracking/domain"
)

type GetLiveBusesUseCase interface {
	// Execute returns every actively tracked bus, most recently updated
	// first, optionally filtered to one route.
	Execute(ctx context.Context, routeID *int64) ([]domain.LiveBus, error)
}
