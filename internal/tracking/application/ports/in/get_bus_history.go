package in

import (
	"context"

	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/tracking/domain"
)

type GetBusHistoryInput struct {
	BusID     int64
	HoursBack int
}

type GetBusHistoryUseCase interface {
	Execute(ctx context.Context, input GetBusHistoryInput) ([]domain.LocationSample, error)
}
