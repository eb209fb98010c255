package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	in "github.com/Anaya3104-pk/smart-bus-pass-system/internal/tracking/application/ports/in"
	out "github.com/Anaya3104-pk/smart-bus-pass-system/internal/tracking/application/ports/out"
	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/tracking/domain"
	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/shared/logger"
)

// sideEffectTimeout bounds the dispatched history/broadcast work so a
// stuck broker cannot pile goroutines up behind it.
const sideEffectTimeout = 5 * time.Second

type coordinatePayload struct {
	Latitude  float64 `validate:"gte=-90,lte=90"`
	Longitude float64 `validate:"gte=-180,lte=180"`
}

type updateLocationUseCase struct {
	busRepo      out.BusRepository
	locationRepo out.LocationRepository
	broadcaster  out.Broadcaster
	eventPub     out.EventPublisher // nil when no broker is configured
	validate     *validator.Validate
	log          *logger.Logger

	// dispatch runs fire-and-forget side effects. Replaced with a
	// synchronous runner in tests.
	dispatch func(fn func())
}

func NewUpdateLocationUseCase(
	busRepo out.BusRepository,
	locationRepo out.LocationRepository,
	broadcaster out.Broadcaster,
	eventPub out.EventPublisher,
	log *logger.Logger,
) in.UpdateLocationUseCase {
	return &updateLocationUseCase{
		busRepo:      busRepo,
		locationRepo: locationRepo,
		broadcaster:  broadcaster,
		eventPub:     eventPub,
		validate:     validator.New(),
		log:          log,
		dispatch:     func(fn func()) { go fn() },
	}
}

// Execute records one GPS sample. Only the current-state write is
// authoritative: its failure fails the request. History append, the
// subscriber broadcast and the broker relay are dispatched without being
// awaited, and their failures are logged, never surfaced.
func (uc *updateLocationUseCase) Execute(ctx context.Context, input in.UpdateLocationInput) (*in.UpdateLocationOutput, error) {
	if err := uc.validate.Struct(coordinatePayload{
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
	}); err != nil {
		return nil, domain.ErrInvalidCoordinates
	}

	now := time.Now().UTC()

	if err := uc.busRepo.UpsertCurrentLocation(ctx, input.BusID, input.Latitude, input.Longitude, now); err != nil {
		uc.log.Error("current location write failed", "bus_id", input.BusID, "error", err.Error())
		return nil, fmt.Errorf("update bus location: %w", err)
	}

	update := domain.LocationUpdate{
		BusID:     input.BusID,
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
		Speed:     input.Speed,
		Timestamp: now,
	}

	routeID, err := uc.busRepo.RouteOf(ctx, input.BusID)
	if err != nil {
		uc.log.Warn("route lookup failed, broadcasting without route scope",
			"bus_id", input.BusID, "error", err.Error())
	} else {
		update.RouteID = routeID
	}

	uc.dispatch(func() { uc.appendHistory(update) })
	uc.dispatch(func() { uc.fanOut(update) })

	return &in.UpdateLocationOutput{
		BusID:     input.BusID,
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
		Timestamp: now,
	}, nil
}

func (uc *updateLocationUseCase) appendHistory(update domain.LocationUpdate) {
	ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
	defer cancel()

	err := uc.locationRepo.AppendHistory(ctx, update.BusID, update.Latitude, update.Longitude, update.Speed, update.Timestamp)
	if err != nil {
		uc.log.Error("history append failed", "bus_id", update.BusID, "error", err.Error())
	}
}

func (uc *updateLocationUseCase) fanOut(update domain.LocationUpdate) {
	if err := uc.broadcaster.BroadcastLocation(update); err != nil {
		uc.log.Error("subscriber broadcast failed", "bus_id", update.BusID, "error", err.Error())
	}

	if uc.eventPub == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
	defer cancel()

	if err := uc.eventPub.PublishLocationUpdate(ctx, update); err != nil {
		uc.log.Error("broker relay failed", "bus_id", update.BusID, "error", err.Error())
	}
}
