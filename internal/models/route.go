package models

import (
	"time"

	"github.com/google/uuid"
)

// RouteStop is one stop on a route, with cumulative distance and travel time
// from the route's first stop.
type RouteStop struct {
	StopID            uuid.UUID `json:"stopId"`
	Name              string    `json:"name"`
	DistanceFromStart float64   `json:"distanceFromStart"` // km
	EstimatedTime     float64   `json:"estimatedTime"`     // minutes from start
}

// BusRoute represents a shuttle route with its ordered stops
type BusRoute struct {
	ID                uuid.UUID   `json:"id"`
	Name              string      `json:"name"`
	VehicleCategoryID uuid.UUID   `json:"vehicleCategory"`
	Stops             []RouteStop `json:"stops"`
}

// StopByID returns the route stop with the given ID, or nil.
func (r *BusRoute) StopByID(stopID uuid.UUID) *RouteStop {
	for i := range r.Stops {
		if r.Stops[i].StopID == stopID {
			return &r.Stops[i]
		}
	}
	return nil
}

// BusTrip is a single scheduled run of a route
type BusTrip struct {
	ID         uuid.UUID `json:"id"`
	BusRouteID uuid.UUID `json:"busRoute"`
	TripNumber int       `json:"tripNumber"`
	StartTime  time.Time `json:"startTime"`
}

// VehicleCategory carries the seat capacity ticketing must respect
type VehicleCategory struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	NumberOfSeats int       `json:"numberOfSeats"`
}

// VehicleOperationStatus represents a vehicle's assignment state
type VehicleOperationStatus string

const (
	VehicleStatusAvailable   VehicleOperationStatus = "available"
	VehicleStatusPending     VehicleOperationStatus = "pending"
	VehicleStatusUnavailable VehicleOperationStatus = "unavailable"
)

// Vehicle represents one physical vehicle in the fleet
type Vehicle struct {
	ID                uuid.UUID              `json:"id"`
	Name              string                 `json:"name"`
	LicensePlate      string                 `json:"licensePlate"`
	VehicleCategoryID uuid.UUID              `json:"vehicleCategory"`
	OperationStatus   VehicleOperationStatus `json:"operationStatus"`
}

// UpdateVehicleStatusRequest represents an operation-status change request
type UpdateVehicleStatusRequest struct {
	OperationStatus VehicleOperationStatus `json:"operationStatus"`
}
