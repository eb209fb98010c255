package transport

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	in "github.com/Anaya3104-pk/smart-bus-pass-system/internal/tracking/application/ports/in"
	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/shared/logger"
	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/tracking/domain"
)

const maxRequestBodySize = 1 << 20 // 1 MB

type Handler struct {
	updateLocationUC in.UpdateLocationUseCase
	getLiveBusesUC   in.GetLiveBusesUseCase
	getHistoryUC     in.GetBusHistoryUseCase
	listRoutesUC     in.ListRoutesUseCase
	getActiveRouteUC in.GetActiveRouteUseCase
	log              *logger.Logger
}

func NewHandler(
	updateLocationUC in.UpdateLocationUseCase,
	getLiveBusesUC in.GetLiveBusesUseCase,
	getHistoryUC in.GetBusHistoryUseCase,
	listRoutesUC in.ListRoutesUseCase,
	getActiveRouteUC in.GetActiveRouteUseCase,
	log *logger.Logger,
) *Handler {
	return &Handler{
		updateLocationUC: updateLocationUC,
		getLiveBusesUC:   getLiveBusesUC,
		getHistoryUC:     getHistoryUC,
		listRoutesUC:     listRoutesUC,
		getActiveRouteUC: getActiveRouteUC,
		log:              log,
	}
}

// Health — GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok","service":"tracking"}`))
}

// UpdateLocation — POST /bus/update-location
func (h *Handler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	var req UpdateLocationRequest
	if err := readJSON(r, &req); err != nil {
		h.log.Warn("update location invalid body", "error", err.Error())
		respondError(w, http.StatusBadRequest, domain.ErrMissingFields.Error())
		return
	}

	if !req.BusID.Set || !req.Latitude.Set || !req.Longitude.Set {
		respondError(w, http.StatusBadRequest, domain.ErrMissingFields.Error())
		return
	}

	output, err := h.updateLocationUC.Execute(r.Context(), in.UpdateLocationInput{
		BusID:     req.BusID.Value,
		Latitude:  req.Latitude.Value,
		Longitude: req.Longitude.Value,
		Speed:     req.Speed.Value, // zero when absent
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCoordinates) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error("update location failed", "bus_id", req.BusID.Value, "error", err.Error())
		respondError(w, http.StatusInternalServerError, "Error updating location")
		return
	}

	if userID, ok := GetUserIDFromContext(r.Context()); ok {
		h.log.Debug("location ingested", "bus_id", output.BusID, "user_id", userID)
	}

	respondJSON(w, http.StatusOK, UpdateLocationResponse{
		Success: true,
		Message: "Location updated successfully",
		Data: UpdateLocationData{
			BusID:     output.BusID,
			Latitude:  output.Latitude,
			Longitude: output.Longitude,
			Timestamp: output.Timestamp,
		},
	})
}

// LiveBuses — GET /bus/live?routeId=
func (h *Handler) LiveBuses(w http.ResponseWriter, r *http.Request) {
	var routeID *int64
	if raw := r.URL.Query().Get("routeId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid routeId")
			return
		}
		routeID = &id
	}

	buses, err := h.getLiveBusesUC.Execute(r.Context(), routeID)
	if err != nil {
		h.log.Error("live buses query failed", "error", err.Error())
		respondError(w, http.StatusInternalServerError, "Error fetching bus locations")
		return
	}

	respondJSON(w, http.StatusOK, LiveBusesResponse{
		Success: true,
		Buses:   buses,
		Count:   len(buses),
	})
}

// BusHistory — GET /bus/{busId}/history?hours=
func (h *Handler) BusHistory(w http.ResponseWriter, r *http.Request) {
	busID, err := strconv.ParseInt(r.PathValue("busId"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid bus id")
		return
	}

	hours := 0
	if raw := r.URL.Query().Get("hours"); raw != "" {
		hours, _ = strconv.Atoi(raw)
	}

	samples, err := h.getHistoryUC.Execute(r.Context(), in.GetBusHistoryInput{
		BusID:     busID,
		HoursBack: hours,
	})
	if err != nil {
		h.log.Error("history query failed", "bus_id", busID, "error", err.Error())
		respondError(w, http.StatusInternalServerError, "Error fetching history")
		return
	}

	respondJSON(w, http.StatusOK, HistoryResponse{
		Success: true,
		History: samples,
		BusID:   busID,
		Count:   len(samples),
	})
}

// Routes — GET /routes
func (h *Handler) Routes(w http.ResponseWriter, r *http.Request) {
	routes, err := h.listRoutesUC.Execute(r.Context())
	if err != nil {
		h.log.Error("routes query failed", "error", err.Error())
		respondError(w, http.StatusInternalServerError, "Error fetching routes")
		return
	}

	respondJSON(w, http.StatusOK, RoutesResponse{
		Success: true,
		Routes:  routes,
		Count:   len(routes),
	})
}

// ActiveRoute — GET /me/active-route
func (h *Handler) ActiveRoute(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	route, err := h.getActiveRouteUC.Execute(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNoActivePass) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		h.log.Error("active route lookup failed", "user_id", userID, "error", err.Error())
		respondError(w, http.StatusInternalServerError, "Error fetching active route")
		return
	}

	respondJSON(w, http.StatusOK, ActiveRouteResponse{Success: true, Route: route})
}

// Helper functions

func readJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxRequestBodySize)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return io.ErrUnexpectedEOF
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Success: false, Message: message})
}
