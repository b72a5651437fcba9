package models

import (
	"time"

	"github.com/google/uuid"
)

// ScheduleStatus represents the lifecycle state of a driver/vehicle assignment
type ScheduleStatus string

const (
	ScheduleStatusActive     ScheduleStatus = "active"
	ScheduleStatusInProgress ScheduleStatus = "in_progress"
	ScheduleStatusCompleted  ScheduleStatus = "completed"
	ScheduleStatusCancelled  ScheduleStatus = "cancelled"
)

// DriverBusSchedule is one driver+vehicle+route+time-window assignment
type DriverBusSchedule struct {
	ID                uuid.UUID      `json:"id"`
	DriverID          uuid.UUID      `json:"driver"`
	BusRouteID        uuid.UUID      `json:"busRoute"`
	VehicleID         uuid.UUID      `json:"vehicle"`
	TripNumber        int            `json:"tripNumber"`
	StartTime         time.Time      `json:"startTime"`
	EndTime           time.Time      `json:"endTime"`
	Status            ScheduleStatus `json:"status"`
	CheckinTime       *time.Time     `json:"checkinTime,omitempty"`
	CheckoutTime      *time.Time     `json:"checkoutTime,omitempty"`
	IsLate            bool           `json:"isLate"`
	IsEarlyCheckout   bool           `json:"isEarlyCheckout"`
	CurrentStopID     *uuid.UUID     `json:"currentStop,omitempty"`
	CompletedStops    []uuid.UUID    `json:"completedStops"`
	CurrentPassengers int            `json:"currentPassengers"`
	TotalPassengers   int            `json:"totalPassengers"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}

// CreateScheduleRequest represents an assignment creation request
type CreateScheduleRequest struct {
	DriverID   uuid.UUID `json:"driver"`
	BusRouteID uuid.UUID `json:"busRoute"`
	VehicleID  uuid.UUID `json:"vehicle"`
	TripNumber int       `json:"tripNumber"`
	StartTime  time.Time `json:"startTime"`
	EndTime    time.Time `json:"endTime"`
}

// StopProgressRequest updates a schedule's position along its route
type StopProgressRequest struct {
	CurrentStopID     uuid.UUID `json:"currentStop"`
	CurrentPassengers int       `json:"currentPassengers"`
}
