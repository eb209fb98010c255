package in_ws

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/shared/auth"
	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/shared/logger"
	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/shared/ws"
	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/tracking/domain"
)

// ViewerWSHandler serves the student map connections: viewers join the
// topic of their route (or of a single bus) and receive pushed samples.
type ViewerWSHandler struct {
	hub *ws.Hub
	log *logger.Logger
}

func NewViewerWSHandler(jwtSvc *auth.JWTService, log *logger.Logger) *ViewerWSHandler {
	authFunc := func(token string) (int64, string, error) {
		claims, err := jwtSvc.ValidateToken(token)
		if err != nil {
			return 0, "", err
		}
		return claims.UserID, claims.Role, nil
	}

	hub := ws.NewHub(authFunc, log)

	handler := &ViewerWSHandler{hub: hub, log: log}
	hub.SetMessageHandler(handler.handleMessage)

	return handler
}

// Hub exposes the hub for broadcasting and shutdown.
func (h *ViewerWSHandler) Hub() *ws.Hub {
	return h.hub
}

// ServeWS — GET /ws/track
func (h *ViewerWSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	h.hub.ServeWS(w, r)
}

type routeMessage struct {
	RouteID int64 `json:"route_id"`
}

type busMessage struct {
	BusID int64 `json:"bus_id"`
}

func (h *ViewerWSHandler) handleMessage(client *ws.Client, msgType string, data json.RawMessage) error {
	switch msgType {
	case "join-route":
		var msg routeMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return fmt.Errorf("malformed join-route: %w", err)
		}
		h.hub.Subscribe(client, domain.RouteTopic(msg.RouteID))
		h.log.Debug("viewer joined route", "client_id", client.ID, "route_id", msg.RouteID)
		return h.ack(client, "joined-route", msg.RouteID)

	case "leave-route":
		var msg routeMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return fmt.Errorf("malformed leave-route: %w", err)
		}
		h.hub.Unsubscribe(client, domain.RouteTopic(msg.RouteID))
		return h.ack(client, "left-route", msg.RouteID)

	case "join-bus":
		var msg busMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return fmt.Errorf("malformed join-bus: %w", err)
		}
		h.hub.Subscribe(client, domain.BusTopic(msg.BusID))
		return h.ack(client, "joined-bus", msg.BusID)

	case "leave-bus":
		var msg busMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return fmt.Errorf("malformed leave-bus: %w", err)
		}
		h.hub.Unsubscribe(client, domain.BusTopic(msg.BusID))
		return h.ack(client, "left-bus", msg.BusID)

	case "ping":
		return h.sendJSON(client, map[string]string{"event": "pong"})

	default:
		h.log.Debug("unknown viewer message type", "client_id", client.ID, "msg_type", msgType)
		return nil
	}
}

func (h *ViewerWSHandler) ack(client *ws.Client, event string, id int64) error {
	return h.sendJSON(client, map[string]any{"event": event, "id": id})
}

func (h *ViewerWSHandler) sendJSON(client *ws.Client, data any) error {
	msg, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if !client.Send(msg) {
		return fmt.Errorf("client %s send buffer full", client.ID)
	}
	return nil
}
