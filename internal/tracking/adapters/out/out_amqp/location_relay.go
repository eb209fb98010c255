package out_amqp

import (
	"context"
	"encoding/json"
	"fmt"

	out "github.com/Anaya3104-pk/smart-bus-pass-system/internal/tracking/application/ports/out"
	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/shared/logger"
	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/shared/mq"
	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/tracking/domain"
)

type locationRelay struct {
	mq  *mq.RabbitMQ
	log *logger.Logger
}

// NewLocationRelay publishes accepted samples to the location fan-out
// exchange for consumers outside this process (analytics, other services).
func NewLocationRelay(mq *mq.RabbitMQ, log *logger.Logger) out.EventPublisher {
	return &locationRelay{mq: mq, log: log}
}

func (p *locationRelay) PublishLocationUpdate(ctx context.Context, update domain.LocationUpdate) error {
	body, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("marshal location update: %w", err)
	}

	if err := p.mq.Publish(ctx, mq.LocationExchange, "", body); err != nil {
		return fmt.Errorf("publish location update: %w", err)
	}

	p.log.Debug("location update relayed", "bus_id", update.BusID)
	return nil
}
