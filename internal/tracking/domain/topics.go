package domain

import "strconv"

// Broadcast event names, matching what subscribed clients listen for.
const (
	EventLocationUpdate = "bus:location:update"
	eventBusPrefix      = "bus:location:"
)

// BusEvent is the bus-scoped event name for one vehicle.
func BusEvent(busID int64) string {
	return eventBusPrefix + strconv.FormatInt(busID, 10)
}

// Hub topic names. Delivery is scoped server-side by per-route topics;
// bus topics exist for clients that follow a single vehicle.
func RouteTopic(routeID int64) string {
	return "route:" + strconv.FormatInt(routeID, 10)
}

func BusTopic(busID int64) string {
	return "bus:" + strconv.FormatInt(busID, 10)
}
