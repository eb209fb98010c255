package mq

import (
	"fmt"

	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/shared/logger"
)

const (
	// LocationExchange receives every accepted GPS sample; any service
	// interested in bus movement binds its own queue to it.
	LocationExchange = "bus_location_fanout"

	// LocationQueue is a durable catch-all binding kept for analytics jobs
	// that are not always running.
	LocationQueue = "bus.location.log"
)

// SetupTopology declares the location fan-out exchange and its durable
// queue. Declarations are idempotent, so re-running at every boot is safe.
func SetupTopology(mq *RabbitMQ, log *logger.Logger) error {
	ch := mq.Channel()
	if ch == nil {
		return fmt.Errorf("rabbitmq channel not available")
	}

	if err := ch.ExchangeDeclare(
		LocationExchange,
		"fanout",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("declare %s: %w", LocationExchange, err)
	}

	if _, err := ch.QueueDeclare(LocationQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", LocationQueue, err)
	}
	if err := ch.QueueBind(LocationQueue, "", LocationExchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", LocationQueue, err)
	}

	log.Info("rabbitmq topology ready", "exchange", LocationExchange)
	return nil
}
