package usecase

import (
	"context"
	"fmt"

	in "github.com/Anaya3104-pk/smart-bus-pass-system/internal/tracking/application/ports/in"
	out "github.com/Anaya3104-pk/smart-bus-pass-system/internal/tracking/application/ports/out"
	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/tracking/domain"
)

type getLiveBusesUseCase struct {
	busRepo out.BusRepository
}

func NewGetLiveBusesUseCase(busRepo out.BusRepository) in.GetLiveBusesUseCase {
	return &getLiveBusesUseCase{busRepo: busRepo}
}

func (uc *getLiveBusesUseCase) Execute(ctx context.Context, routeID *int64) ([]domain.LiveBus, error) {
	buses, err := uc.busRepo.QueryLive(ctx, routeID)
	if err != nil {
		return nil, fmt.Errorf("query live buses: %w", err)
	}
	return buses, nil
}
