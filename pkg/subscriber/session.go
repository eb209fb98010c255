// Package subscriber implements the viewer side of the live tracking
// protocol: an initial snapshot fetch, a websocket route subscription,
// and reconciliation of pushed samples into a local bus view.
package subscriber

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// BusView is the session's last-known state for one bus. Fields that the
// incremental push does not carry (bus number, route name) survive merges.
type BusView struct {
	BusID     int64     `json:"bus_id"`
	BusNumber string    `json:"bus_number"`
	RouteID   *int64    `json:"route_id"`
	RouteName string    `json:"route_name"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Speed     float64   `json:"speed"`
	UpdatedAt time.Time `json:"updated_at"`
}

type pushUpdate struct {
	BusID     int64     `json:"busId"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Speed     float64   `json:"speed"`
	Timestamp time.Time `json:"timestamp"`
	RouteID   *int64    `json:"route_id"`
}

type envelope struct {
	Event string     `json:"event"`
	Data  pushUpdate `json:"data"`
}

type snapshotBus struct {
	BusID       int64      `json:"bus_id"`
	BusNumber   string     `json:"bus_number"`
	RouteID     *int64     `json:"route_id"`
	RouteName   string     `json:"route_name"`
	CurrentLat  *float64   `json:"current_lat"`
	CurrentLng  *float64   `json:"current_lng"`
	LastUpdated *time.Time `json:"last_updated"`
}

type snapshotResponse struct {
	Success bool          `json:"success"`
	Buses   []snapshotBus `json:"buses"`
}

// Session is a route-scoped viewer session. Safe for concurrent reads
// while the receive loop runs.
type Session struct {
	baseURL string
	routeID int64

	httpClient *http.Client
	dialer     *websocket.Dialer

	mu    sync.RWMutex
	view  map[int64]*BusView
	conn  *websocket.Conn
	errCh chan error
}

// New creates a session for the given route against the service base URL
// (e.g. "http://localhost:5000").
func New(baseURL string, routeID int64) *Session {
	return &Session{
		baseURL:    baseURL,
		routeID:    routeID,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		dialer:     websocket.DefaultDialer,
		view:       make(map[int64]*BusView),
		errCh:      make(chan error, 1),
	}
}

// Start fetches the initial snapshot, opens the push connection, joins the
// route topic and fetches the snapshot once more to cover the gap between
// page load and subscription. The receive loop runs until ctx is done or
// the connection drops.
func (s *Session) Start(ctx context.Context) error {
	if err := s.Reconcile(ctx); err != nil {
		return fmt.Errorf("initial snapshot: %w", err)
	}

	wsURL, err := s.websocketURL()
	if err != nil {
		return err
	}

	conn, _, err := s.dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial push channel: %w", err)
	}

	join := map[string]any{
		"type": "join-route",
		"data": map[string]int64{"route_id": s.routeID},
	}
	if err := conn.WriteJSON(join); err != nil {
		_ = conn.Close()
		return fmt.Errorf("join route: %w", err)
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	// Reconcile again after the subscription is live; anything published
	// between the first snapshot and the join would otherwise be missed.
	if err := s.Reconcile(ctx); err != nil {
		_ = conn.Close()
		return fmt.Errorf("post-join snapshot: %w", err)
	}

	go s.receiveLoop(ctx, conn)
	return nil
}

// Reconcile replaces stale entries with the server's current snapshot.
func (s *Session) Reconcile(ctx context.Context) error {
	u := fmt.Sprintf("%s/bus/live?routeId=%d", s.baseURL, s.routeID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("snapshot query: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("snapshot query: unexpected status %d", resp.StatusCode)
	}

	var snapshot snapshotResponse
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range snapshot.Buses {
		if b.CurrentLat == nil || b.CurrentLng == nil {
			continue
		}
		entry := s.view[b.BusID]
		if entry == nil {
			entry = &BusView{BusID: b.BusID}
			s.view[b.BusID] = entry
		}
		entry.BusNumber = b.BusNumber
		entry.RouteID = b.RouteID
		entry.RouteName = b.RouteName
		entry.Latitude = *b.CurrentLat
		entry.Longitude = *b.CurrentLng
		if b.LastUpdated != nil {
			entry.UpdatedAt = *b.LastUpdated
		}
	}
	return nil
}

func (s *Session) receiveLoop(ctx context.Context, conn *websocket.Conn) {
	defer func() {
		// Keep the last-known view: stale-but-available beats empty.
		_ = conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		var env envelope
		if err := conn.ReadJSON(&env); err != nil {
			select {
			case s.errCh <- err:
			default:
			}
			return
		}

		s.apply(env)
	}
}

// apply merges one pushed envelope into the local view. Updates for other
// routes are discarded: the channel may be coarser-grained than the
// subscription, so the client re-checks.
func (s *Session) apply(env envelope) {
	if env.Event != "bus:location:update" &&
		env.Event != "bus:location:"+strconv.FormatInt(env.Data.BusID, 10) {
		return
	}

	if env.Data.RouteID != nil && *env.Data.RouteID != s.routeID {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.view[env.Data.BusID]
	if entry == nil {
		entry = &BusView{BusID: env.Data.BusID}
		s.view[env.Data.BusID] = entry
	}
	// Merge, never replace: the push payload does not carry bus number or
	// route name.
	entry.Latitude = env.Data.Latitude
	entry.Longitude = env.Data.Longitude
	entry.Speed = env.Data.Speed
	entry.UpdatedAt = env.Data.Timestamp
	if env.Data.RouteID != nil {
		entry.RouteID = env.Data.RouteID
	}
}

// Buses returns a copy of the current view.
func (s *Session) Buses() []BusView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	buses := make([]BusView, 0, len(s.view))
	for _, b := range s.view {
		buses = append(buses, *b)
	}
	return buses
}

// Bus returns the last-known state for one bus.
func (s *Session) Bus(busID int64) (BusView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.view[busID]
	if !ok {
		return BusView{}, false
	}
	return *b, true
}

// Err reports the first receive-loop failure, if any.
func (s *Session) Err() error {
	select {
	case err := <-s.errCh:
		return err
	default:
		return nil
	}
}

// Close drops the push connection without discarding the view.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		_ = s.conn.Close()
		s.conn = nil
	}
}

func (s *Session) websocketURL() (string, error) {
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/ws/track"
	return u.String(), nil
}
