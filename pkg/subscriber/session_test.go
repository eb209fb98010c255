package subscriber

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/shared/auth"
	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/shared/config"
	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/shared/logger"
	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/tracking/adapters/in/in_ws"
	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/tracking/adapters/out/out_ws"
	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/tracking/domain"
)

func routeIDPtr(id int64) *int64 { return &id }

func pushEnvelope(event string, busID int64, lat, lng, speed float64, routeID *int64) envelope {
	return envelope{
		Event: event,
		Data: pushUpdate{
			BusID:     busID,
			Latitude:  lat,
			Longitude: lng,
			Speed:     speed,
			Timestamp: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
			RouteID:   routeID,
		},
	}
}

func TestApplyInsertsUnseenBus(t *testing.T) {
	s := New("http://example", 42)

	s.apply(pushEnvelope("bus:location:update", 1, 12.9, 77.6, 5, routeIDPtr(42)))

	bus, ok := s.Bus(1)
	if !ok {
		t.Fatal("bus not inserted")
	}
	if bus.Latitude != 12.9 || bus.Longitude != 77.6 || bus.Speed != 5 {
		t.Errorf("unexpected view: %+v", bus)
	}
}

func TestApplyMergesWithoutLosingStaticFields(t *testing.T) {
	s := New("http://example", 42)
	s.view[1] = &BusView{
		BusID:     1,
		BusNumber: "KA-01-1234",
		RouteName: "Route 1",
		Latitude:  10,
		Longitude: 70,
	}

	s.apply(pushEnvelope("bus:location:update", 1, 12.9, 77.6, 5, routeIDPtr(42)))

	bus, _ := s.Bus(1)
	if bus.Latitude != 12.9 || bus.Longitude != 77.6 {
		t.Errorf("coordinates not merged: %+v", bus)
	}
	if bus.BusNumber != "KA-01-1234" || bus.RouteName != "Route 1" {
		t.Errorf("static fields lost on merge: %+v", bus)
	}
}

func TestApplyDiscardsOtherRoutes(t *testing.T) {
	s := New("http://example", 42)

	s.apply(pushEnvelope("bus:location:update", 1, 12.9, 77.6, 5, routeIDPtr(7)))

	if _, ok := s.Bus(1); ok {
		t.Error("update for another route was applied")
	}
}

func TestApplyAcceptsBusScopedEvent(t *testing.T) {
	s := New("http://example", 42)

	s.apply(pushEnvelope("bus:location:9", 9, 12.9, 77.6, 0, routeIDPtr(42)))

	if _, ok := s.Bus(9); !ok {
		t.Error("bus-scoped event was not applied")
	}
}

func TestApplyIgnoresUnknownEvents(t *testing.T) {
	s := New("http://example", 42)

	s.apply(pushEnvelope("something:else", 1, 12.9, 77.6, 0, routeIDPtr(42)))

	if _, ok := s.Bus(1); ok {
		t.Error("unknown event mutated the view")
	}
}

func TestReconcileLoadsSnapshot(t *testing.T) {
	lat, lng := 12.9, 77.6
	updated := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bus/live" || r.URL.Query().Get("routeId") != "42" {
			t.Errorf("unexpected snapshot request: %s", r.URL)
		}
		_ = json.NewEncoder(w).Encode(snapshotResponse{
			Success: true,
			Buses: []snapshotBus{
				{BusID: 1, BusNumber: "KA-01-1234", RouteID: routeIDPtr(42), RouteName: "Route 1",
					CurrentLat: &lat, CurrentLng: &lng, LastUpdated: &updated},
				{BusID: 2, BusNumber: "KA-01-9999", RouteID: routeIDPtr(42)}, // no fix yet
			},
		})
	}))
	defer server.Close()

	s := New(server.URL, 42)
	if err := s.Reconcile(context.Background()); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	bus, ok := s.Bus(1)
	if !ok {
		t.Fatal("snapshot bus missing from view")
	}
	if bus.Latitude != 12.9 || bus.BusNumber != "KA-01-1234" || !bus.UpdatedAt.Equal(updated) {
		t.Errorf("unexpected view: %+v", bus)
	}

	if _, ok := s.Bus(2); ok {
		t.Error("bus without coordinates entered the view")
	}
}

func TestReconcileMatchesLatestSampleAfterMissedPushes(t *testing.T) {
	// A viewer that missed N pushes must converge to the newest state
	// from the snapshot alone.
	var latest atomic.Value
	latest.Store([2]float64{13.5, 78.1})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		coords := latest.Load().([2]float64)
		now := time.Now().UTC()
		_ = json.NewEncoder(w).Encode(snapshotResponse{
			Success: true,
			Buses: []snapshotBus{
				{BusID: 1, RouteID: routeIDPtr(42), CurrentLat: &coords[0], CurrentLng: &coords[1], LastUpdated: &now},
			},
		})
	}))
	defer server.Close()

	s := New(server.URL, 42)
	if err := s.Reconcile(context.Background()); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	bus, _ := s.Bus(1)
	if bus.Latitude != 13.5 || bus.Longitude != 78.1 {
		t.Errorf("view did not converge to latest sample: %+v", bus)
	}
}

func TestSessionEndToEnd(t *testing.T) {
	jwtService := auth.NewJWTService(config.JWTConfig{Secret: "test-secret", ExpiryMinutes: 5})
	viewer := in_ws.NewViewerWSHandler(jwtService, logger.NewNop())
	broadcaster := out_ws.NewLocationBroadcaster(viewer.Hub())

	lat, lng := 12.0, 77.0
	mux := http.NewServeMux()
	mux.HandleFunc("GET /bus/live", func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().UTC()
		_ = json.NewEncoder(w).Encode(snapshotResponse{
			Success: true,
			Buses: []snapshotBus{
				{BusID: 1, BusNumber: "KA-01-1234", RouteID: routeIDPtr(42),
					CurrentLat: &lat, CurrentLng: &lng, LastUpdated: &now},
			},
		})
	})
	mux.HandleFunc("GET /ws/track", viewer.ServeWS)

	server := httptest.NewServer(mux)
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := New(server.URL, 42)
	if err := s.Start(ctx); err != nil {
		t.Fatalf("start session: %v", err)
	}
	defer s.Close()

	// Snapshot state is visible immediately.
	if bus, ok := s.Bus(1); !ok || bus.Latitude != 12.0 {
		t.Fatalf("snapshot state missing: %+v", bus)
	}

	// A pushed sample supersedes it. The join is acknowledged
	// asynchronously, so keep publishing until the session sees it.
	rid := int64(42)
	update := domain.LocationUpdate{
		BusID: 1, Latitude: 12.9, Longitude: 77.6, Speed: 5,
		Timestamp: time.Now().UTC(), RouteID: &rid,
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if err := broadcaster.BroadcastLocation(update); err != nil {
			t.Fatalf("broadcast: %v", err)
		}
		if bus, ok := s.Bus(1); ok && bus.Latitude == 12.9 {
			if bus.BusNumber != "KA-01-1234" {
				t.Errorf("merge lost bus number: %+v", bus)
			}
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("pushed sample never reached the session view")
}
