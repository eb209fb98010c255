package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/shared/logger"
)

const (
	pingInterval   = 30 * time.Second
	pongWait       = 60 * time.Second
	maxMessageSize = 8192
	writeWait      = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict origins once the deployed frontend host is fixed
		return true
	},
}

// AuthFunc validates a bearer token from an optional auth message.
// When nil, connections are anonymous.
type AuthFunc func(token string) (userID int64, role string, err error)

// MessageHandler is invoked for every typed message a client sends.
type MessageHandler func(client *Client, messageType string, data json.RawMessage) error

// Client is one WebSocket connection.
type Client struct {
	ID     string
	UserID int64
	Role   string
	conn   *websocket.Conn
	send   chan []byte
	hub    *Hub
	log    *logger.Logger
}

// Send queues a raw message for the client. Returns false when the client's
// buffer is full; the hub will drop such clients on the next publish.
func (c *Client) Send(message []byte) bool {
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

// Hub owns every live connection and the topic membership tables.
//
// Membership is kept in two mirrored maps: connection -> topics and
// topic -> connections. Both are mutated only by Subscribe, Unsubscribe
// and remove, always under mu, so a publish never observes a
// half-registered subscriber.
type Hub struct {
	mu        sync.RWMutex
	clients   map[string]*Client
	subs      map[string]map[string]struct{} // client ID -> topic set
	topicSubs map[string]map[string]*Client  // topic -> client ID -> client

	authFunc       AuthFunc
	messageHandler MessageHandler
	log            *logger.Logger
}

func NewHub(authFunc AuthFunc, log *logger.Logger) *Hub {
	return &Hub{
		clients:   make(map[string]*Client),
		subs:      make(map[string]map[string]struct{}),
		topicSubs: make(map[string]map[string]*Client),
		authFunc:  authFunc,
		log:       log,
	}
}

// SetMessageHandler installs the handler for incoming client messages.
func (h *Hub) SetMessageHandler(handler MessageHandler) {
	h.messageHandler = handler
}

// Subscribe joins the client to a topic.
func (h *Hub) Subscribe(client *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return // already torn down
	}
	if h.subs[client.ID] == nil {
		h.subs[client.ID] = make(map[string]struct{})
	}
	h.subs[client.ID][topic] = struct{}{}

	if h.topicSubs[topic] == nil {
		h.topicSubs[topic] = make(map[string]*Client)
	}
	h.topicSubs[topic][client.ID] = client
}

// Unsubscribe removes the client from a topic.
func (h *Hub) Unsubscribe(client *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unsubscribeLocked(client.ID, topic)
}

func (h *Hub) unsubscribeLocked(clientID, topic string) {
	if topics, ok := h.subs[clientID]; ok {
		delete(topics, topic)
		if len(topics) == 0 {
			delete(h.subs, clientID)
		}
	}
	if conns, ok := h.topicSubs[topic]; ok {
		delete(conns, clientID)
		if len(conns) == 0 {
			delete(h.topicSubs, topic)
		}
	}
}

// Publish delivers the message to every subscriber of the topic,
// at most once each. Slow clients are skipped, not waited for.
func (h *Hub) Publish(topic string, message []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, client := range h.topicSubs[topic] {
		if client.Send(message) {
			delivered++
		} else {
			h.log.Warn("subscriber buffer full, dropping message",
				"client_id", client.ID, "topic", topic)
		}
	}
	return delivered
}

// PublishJSON marshals data and publishes it.
func (h *Hub) PublishJSON(topic string, data any) (int, error) {
	msg, err := json.Marshal(data)
	if err != nil {
		return 0, err
	}
	return h.Publish(topic, msg), nil
}

// Topics returns the topics the client is currently joined to.
func (h *Hub) Topics(client *Client) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	topics := make([]string, 0, len(h.subs[client.ID]))
	for t := range h.subs[client.ID] {
		topics = append(topics, t)
	}
	return topics
}

// SubscriberCount reports how many connections are joined to a topic.
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topicSubs[topic])
}

// ClientCount reports the number of live connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) add(client *Client) {
	h.mu.Lock()
	h.clients[client.ID] = client
	h.mu.Unlock()

	h.log.Info("ws client connected", "client_id", client.ID, "user_id", client.UserID)
}

// remove tears the client down completely: connection table and every
// topic membership, so reconnect churn cannot leak registrations.
func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client.ID]; ok {
		delete(h.clients, client.ID)
		for topic := range h.subs[client.ID] {
			h.unsubscribeLocked(client.ID, topic)
		}
		delete(h.subs, client.ID)
		close(client.send)
	}
	h.mu.Unlock()

	h.log.Info("ws client disconnected", "client_id", client.ID)
}

// Shutdown closes every connection.
func (h *Hub) Shutdown(ctx context.Context) {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		_ = c.conn.Close()
	}
}

// ServeWS upgrades the HTTP request and starts the read/write pumps.
// Clients may send an auth message at any time to attach an identity;
// none is required to subscribe.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("ws upgrade failed", "error", err.Error())
		return
	}

	client := &Client{
		ID:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, 256),
		hub:  h,
		log:  h.log,
	}

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	h.add(client)

	_ = conn.WriteJSON(map[string]string{"status": "connected", "client_id": client.ID})

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.remove(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn("ws read error", "client_id", c.ID, "error", err.Error())
			}
			break
		}

		var msg struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data,omitempty"`
		}
		if err := json.Unmarshal(message, &msg); err != nil {
			c.log.Warn("ws message parse failed", "client_id", c.ID, "error", err.Error())
			continue
		}

		if msg.Type == "auth" {
			c.handleAuth(msg.Data)
			continue
		}

		if c.hub.messageHandler != nil {
			if err := c.hub.messageHandler(c, msg.Type, msg.Data); err != nil {
				c.log.Warn("ws message handler failed",
					"client_id", c.ID, "msg_type", msg.Type, "error", err.Error())
			}
		}
	}
}

func (c *Client) handleAuth(data json.RawMessage) {
	if c.hub.authFunc == nil {
		return
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		c.sendJSON(map[string]string{"error": "malformed auth message"})
		return
	}

	userID, role, err := c.hub.authFunc(payload.Token)
	if err != nil {
		c.log.Warn("ws auth failed", "client_id", c.ID, "error", err.Error())
		c.sendJSON(map[string]string{"error": "invalid token"})
		return
	}

	c.UserID = userID
	c.Role = role
	c.sendJSON(map[string]any{"status": "authenticated", "user_id": userID})
}

// sendJSON queues a marshalled frame; all writes after the pumps start
// must go through the send channel.
func (c *Client) sendJSON(data any) {
	msg, err := json.Marshal(data)
	if err != nil {
		return
	}
	c.Send(msg)
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
