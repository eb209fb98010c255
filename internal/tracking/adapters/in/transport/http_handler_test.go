package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	in "github.com/Anaya3104-pk/smart-bus-pass-system/internal/tracking/application/ports/in"
	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/shared/auth"
	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/shared/config"
	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/shared/logger"
	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/tracking/domain"
)

type fakeUpdateLocationUC struct {
	calls []in.UpdateLocationInput
	err   error
}

func (f *fakeUpdateLocationUC) Execute(_ context.Context, input in.UpdateLocationInput) (*in.UpdateLocationOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.calls = append(f.calls, input)
	return &in.UpdateLocationOutput{
		BusID:     input.BusID,
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
		Timestamp: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
	}, nil
}

type fakeLiveUC struct {
	routeID *int64
	buses   []domain.LiveBus
}

func (f *fakeLiveUC) Execute(_ context.Context, routeID *int64) ([]domain.LiveBus, error) {
	f.routeID = routeID
	return f.buses, nil
}

type fakeHistoryUC struct {
	input   in.GetBusHistoryInput
	samples []domain.LocationSample
}

func (f *fakeHistoryUC) Execute(_ context.Context, input in.GetBusHistoryInput) ([]domain.LocationSample, error) {
	f.input = input
	return f.samples, nil
}

type fakeListRoutesUC struct{ routes []domain.Route }

func (f *fakeListRoutesUC) Execute(context.Context) ([]domain.Route, error) {
	return f.routes, nil
}

type fakeActiveRouteUC struct {
	userID int64
	route  *domain.Route
	err    error
}

func (f *fakeActiveRouteUC) Execute(_ context.Context, userID int64) (*domain.Route, error) {
	f.userID = userID
	if f.err != nil {
		return nil, f.err
	}
	return f.route, nil
}

type testServer struct {
	server    *httptest.Server
	updateUC  *fakeUpdateLocationUC
	liveUC    *fakeLiveUC
	historyUC *fakeHistoryUC
	activeUC  *fakeActiveRouteUC
	jwt       *auth.JWTService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	log := logger.NewNop()
	jwtService := auth.NewJWTService(config.JWTConfig{Secret: "test-secret", ExpiryMinutes: 5})

	ts := &testServer{
		updateUC:  &fakeUpdateLocationUC{},
		liveUC:    &fakeLiveUC{buses: []domain.LiveBus{}},
		historyUC: &fakeHistoryUC{samples: []domain.LocationSample{}},
		activeUC:  &fakeActiveRouteUC{},
		jwt:       jwtService,
	}

	h := NewHandler(ts.updateUC, ts.liveUC, ts.historyUC, &fakeListRoutesUC{routes: []domain.Route{}}, ts.activeUC, log)

	mux := http.NewServeMux()
	Routes(mux, h, func(w http.ResponseWriter, r *http.Request) {}, jwtService, log)

	ts.server = httptest.NewServer(mux)
	t.Cleanup(ts.server.Close)
	return ts
}

func (ts *testServer) bearer(t *testing.T) string {
	t.Helper()
	token, err := ts.jwt.GenerateToken(7, "conductor@example.com", "conductor")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return "Bearer " + token
}

func (ts *testServer) post(t *testing.T, path, body, authHeader string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, ts.server.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := ts.server.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func (ts *testServer) get(t *testing.T, path, authHeader string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, ts.server.URL+path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := ts.server.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestUpdateLocationSuccess(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.post(t, "/bus/update-location",
		`{"busId": 1, "latitude": 12.9, "longitude": 77.6, "speed": 5}`, ts.bearer(t))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body := decodeBody[UpdateLocationResponse](t, resp)
	if !body.Success || body.Message != "Location updated successfully" {
		t.Errorf("unexpected body: %+v", body)
	}
	if body.Data.BusID != 1 || body.Data.Latitude != 12.9 || body.Data.Longitude != 77.6 {
		t.Errorf("unexpected data: %+v", body.Data)
	}

	if len(ts.updateUC.calls) != 1 || ts.updateUC.calls[0].Speed != 5 {
		t.Errorf("usecase calls: %+v", ts.updateUC.calls)
	}
}

func TestUpdateLocationAcceptsNumericStrings(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.post(t, "/bus/update-location",
		`{"busId": "3", "latitude": "12.5", "longitude": "77.1"}`, ts.bearer(t))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	call := ts.updateUC.calls[0]
	if call.BusID != 3 || call.Latitude != 12.5 || call.Longitude != 77.1 || call.Speed != 0 {
		t.Errorf("coerced input wrong: %+v", call)
	}
}

func TestUpdateLocationMissingFields(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no busId", `{"latitude": 12.9, "longitude": 77.6}`},
		{"no latitude", `{"busId": 1, "longitude": 77.6}`},
		{"no longitude", `{"busId": 1, "latitude": 12.9}`},
		{"non-numeric latitude", `{"busId": 1, "latitude": "north", "longitude": 77.6}`},
		{"empty body", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)

			resp := ts.post(t, "/bus/update-location", tt.body, ts.bearer(t))
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}

			body := decodeBody[ErrorResponse](t, resp)
			if body.Success {
				t.Error("success flag set on validation failure")
			}
			if !strings.Contains(body.Message, "required") {
				t.Errorf("unexpected message: %q", body.Message)
			}
			if len(ts.updateUC.calls) != 0 {
				t.Error("usecase invoked despite validation failure")
			}
		})
	}
}

func TestUpdateLocationRequiresAuth(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.post(t, "/bus/update-location",
		`{"busId": 1, "latitude": 12.9, "longitude": 77.6}`, "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}

	resp = ts.post(t, "/bus/update-location",
		`{"busId": 1, "latitude": 12.9, "longitude": 77.6}`, "Bearer not-a-token")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 for bad token", resp.StatusCode)
	}
}

func TestLiveBusesNoAuthRequired(t *testing.T) {
	ts := newTestServer(t)
	lat, lng := 12.9, 77.6
	routeID := int64(42)
	bus := domain.LiveBus{RouteName: "Route 1", StartPoint: "Campus", EndPoint: "City"}
	bus.BusID = 1
	bus.RouteID = &routeID
	bus.CurrentLat, bus.CurrentLng = &lat, &lng
	ts.liveUC.buses = []domain.LiveBus{bus}

	resp := ts.get(t, "/bus/live?routeId=42", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body := decodeBody[LiveBusesResponse](t, resp)
	if !body.Success || body.Count != 1 || len(body.Buses) != 1 {
		t.Errorf("unexpected body: %+v", body)
	}
	if body.Buses[0].BusID != 1 || *body.Buses[0].CurrentLat != 12.9 {
		t.Errorf("unexpected bus: %+v", body.Buses[0])
	}

	if ts.liveUC.routeID == nil || *ts.liveUC.routeID != 42 {
		t.Error("routeId filter not passed to usecase")
	}
}

func TestLiveBusesInvalidRouteID(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.get(t, "/bus/live?routeId=abc", "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestBusHistoryEmpty(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.get(t, "/bus/999/history?hours=1", ts.bearer(t))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body := decodeBody[HistoryResponse](t, resp)
	if !body.Success || body.Count != 0 || body.BusID != 999 {
		t.Errorf("unexpected body: %+v", body)
	}
	if body.History == nil || len(body.History) != 0 {
		t.Errorf("expected empty history array, got %v", body.History)
	}

	if ts.historyUC.input.BusID != 999 || ts.historyUC.input.HoursBack != 1 {
		t.Errorf("usecase input: %+v", ts.historyUC.input)
	}
}

func TestBusHistoryRequiresAuth(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.get(t, "/bus/1/history", "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestActiveRouteUsesPrincipal(t *testing.T) {
	ts := newTestServer(t)
	ts.activeUC.route = &domain.Route{RouteID: 42, RouteName: "Route 1"}

	resp := ts.get(t, "/me/active-route", ts.bearer(t))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body := decodeBody[ActiveRouteResponse](t, resp)
	if body.Route == nil || body.Route.RouteID != 42 {
		t.Errorf("unexpected body: %+v", body)
	}
	if ts.activeUC.userID != 7 {
		t.Errorf("principal ID = %d, want 7", ts.activeUC.userID)
	}
}

func TestActiveRouteWithoutPass(t *testing.T) {
	ts := newTestServer(t)
	ts.activeUC.err = domain.ErrNoActivePass

	resp := ts.get(t, "/me/active-route", ts.bearer(t))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}
