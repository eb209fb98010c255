package transport

import (
	"bytes"
	"strconv"
	"time"

	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/tracking/domain"
)

// Coordinate fields arrive from conductor devices as JSON numbers or
// numeric strings, depending on the phone client. Both are accepted;
// anything else is a validation failure.

// FlexFloat unmarshals a JSON number or a quoted numeric string.
type FlexFloat struct {
	Value float64
	Set   bool
}

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return nil // leave unset; handler treats it as missing
	}
	f.Value = v
	f.Set = true
	return nil
}

// FlexInt unmarshals a JSON integer or a quoted integer string.
type FlexInt struct {
	Value int64
	Set   bool
}

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	v, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return nil
	}
	f.Value = v
	f.Set = true
	return nil
}

type UpdateLocationRequest struct {
	BusID     FlexInt   `json:"busId"`
	Latitude  FlexFloat `json:"latitude"`
	Longitude FlexFloat `json:"longitude"`
	Speed     FlexFloat `json:"speed"`
}

type UpdateLocationData struct {
	BusID     int64     `json:"busId"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
}

type UpdateLocationResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Data    UpdateLocationData `json:"data"`
}

type LiveBusesResponse struct {
	Success bool             `json:"success"`
	Buses   []domain.LiveBus `json:"buses"`
	Count   int              `json:"count"`
}

type HistoryResponse struct {
	Success bool                    `json:"success"`
	History []domain.LocationSample `json:"history"`
	BusID   int64                   `json:"busId"`
	Count   int                     `json:"count"`
}

type RoutesResponse struct {
	Success bool           `json:"success"`
	Routes  []domain.Route `json:"routes"`
	Count   int            `json:"count"`
}

type ActiveRouteResponse struct {
	Success bool          `json:"success"`
	Route   *domain.Route `json:"route"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
