package in

import (
	"context"
	"time"
)

type UpdateLocationInput struct {
	BusID     int64
	Latitude  float64
	Longitude float64
	Speed     float64
}

type UpdateLocationOutput struct {
	BusID     int64     `json:"busId"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
}

type UpdateLocationUseCase interface {
	Execute(ctx context.Context, input UpdateLocationInput) (*UpdateLocationOutput, error)
}
