package out

import (
	"context"

	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/tracking/domain"
)

// Broadcaster pushes an accepted sample to connected subscribers.
// Delivery is at-most-once per subscriber; a disconnected viewer simply
// misses the message and reconciles via the live snapshot query.
type Broadcaster interface {
	BroadcastLocation(update domain.LocationUpdate) error
}

// EventPublisher relays accepted samples to the message broker for
// consumers outside this process.
type EventPublisher interface {
	PublishLocationUpdate(ctx context.Context, update domain.LocationUpdate) error
}
