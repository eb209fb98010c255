package usecase

import (
	"context"
	"fmt"

	in "github.com/Anaya3104-pk/smart-bus-pass-system/internal/tracking/application/ports/in"
	out "github.com/Anaya3104-pk/smart-bus-pass-system/internal/tracking/application/ports/out"
	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/tracking/domain"
)

const (
	defaultLookbackHours = 24
	historyRowLimit      = 100
)

type getBusHistoryUseCase struct {
	locationRepo out.LocationRepository
}

func NewGetBusHistoryUseCase(locationRepo out.LocationRepository) in.GetBusHistoryUseCase {
	return &getBusHistoryUseCase{locationRepo: locationRepo}
}

func (uc *getBusHistoryUseCase) Execute(ctx context.Context, input in.GetBusHistoryInput) ([]domain.LocationSample, error) {
	hours := input.HoursBack
	if hours <= 0 {
		hours = defaultLookbackHours
	}

	samples, err := uc.locationRepo.QueryHistory(ctx, input.BusID, hours, historyRowLimit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	return samples, nil
}
