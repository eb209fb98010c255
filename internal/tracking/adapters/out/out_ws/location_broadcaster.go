package out_ws

import (
	"encoding/json"
	"fmt"

	out "github.com/Anaya3104-pk/smart-bus-pass-system/internal/tracking/application/ports/out"
	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/shared/ws"
	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/tracking/domain"
)

// Envelope is the wire frame pushed to subscribers.
type Envelope struct {
	Event string                `json:"event"`
	Data  domain.LocationUpdate `json:"data"`
}

type locationBroadcaster struct {
	hub *ws.Hub
}

func NewLocationBroadcaster(hub *ws.Hub) out.Broadcaster {
	return &locationBroadcaster{hub: hub}
}

// BroadcastLocation publishes the sample twice: the general update event
// on the bus's route topic, and the bus-scoped event on the bus topic.
// Buses without a route assignment only reach bus-topic subscribers.
func (b *locationBroadcaster) BroadcastLocation(update domain.LocationUpdate) error {
	general, err := json.Marshal(Envelope{Event: domain.EventLocationUpdate, Data: update})
	if err != nil {
		return fmt.Errorf("marshal location update: %w", err)
	}
	busScoped, err := json.Marshal(Envelope{Event: domain.BusEvent(update.BusID), Data: update})
	if err != nil {
		return fmt.Errorf("marshal bus event: %w", err)
	}

	if update.RouteID != nil {
		b.hub.Publish(domain.RouteTopic(*update.RouteID), general)
	}
	b.hub.Publish(domain.BusTopic(update.BusID), busScoped)

	return nil
}
