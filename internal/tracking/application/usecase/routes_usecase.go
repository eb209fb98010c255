package usecase

import (
	"context"
	"fmt"

	in "github.com/Anaya3104-pk/smart-bus-pass-system/internal/tracking/application/ports/in"
	out "github.com/Anaya3104-pk/smart-bus-pass-system/internal/tracking/application/ports/out"
	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/tracking/domain"
)

type listRoutesUseCase struct {
	routeRepo out.RouteRepository
}

func NewListRoutesUseCase(routeRepo out.RouteRepository) in.ListRoutesUseCase {
	return &listRoutesUseCase{routeRepo: routeRepo}
}

func (uc *listRoutesUseCase) Execute(ctx context.Context) ([]domain.Route, error) {
	routes, err := uc.routeRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	return routes, nil
}

type getActiveRouteUseCase struct {
	routeRepo out.RouteRepository
}

func NewGetActiveRouteUseCase(routeRepo out.RouteRepository) in.GetActiveRouteUseCase {
	return &getActiveRouteUseCase{routeRepo: routeRepo}
}

func (uc *getActiveRouteUseCase) Execute(ctx context.Context, userID int64) (*domain.Route, error) {
	route, err := uc.routeRepo.ActiveRouteForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return route, nil
}
