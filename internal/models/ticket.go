package models

import (
	"time"

	"github.com/google/uuid"
)

// TicketStatus represents the lifecycle state of a ticket
type TicketStatus string

const (
	TicketStatusPending   TicketStatus = "pending"
	TicketStatusBooked    TicketStatus = "booked"
	TicketStatusCheckedIn TicketStatus = "checked_in"
	TicketStatusCompleted TicketStatus = "completed"
	TicketStatusCancelled TicketStatus = "cancelled"
	TicketStatusExpired   TicketStatus = "expired"
)

// IsTerminal reports whether no further transition is possible from s.
func (s TicketStatus) IsTerminal() bool {
	switch s {
	case TicketStatusCompleted, TicketStatusCancelled, TicketStatusExpired:
		return true
	}
	return false
}

// PassengerInfo is the snapshot of passenger contact data embedded in a ticket
type PassengerInfo struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// Ticket represents one passenger reservation for a segment of a trip
type Ticket struct {
	ID                  uuid.UUID     `json:"id"`
	BusRouteID          uuid.UUID     `json:"busRoute"`
	BusTripID           uuid.UUID     `json:"busTrip"`
	FromStopID          uuid.UUID     `json:"fromStop"`
	ToStopID            uuid.UUID     `json:"toStop"`
	NumberOfSeats       int           `json:"numberOfSeats"`
	Fare                int64         `json:"fare"`
	BoardingTime        time.Time     `json:"boardingTime"`
	ExpectedDropOffTime time.Time     `json:"expectedDropOffTime"`
	Status              TicketStatus  `json:"status"`
	PassengerID         uuid.UUID     `json:"passenger"`
	PassengerInfo       PassengerInfo `json:"passengerInfo"`
	CreatedAt           time.Time     `json:"createdAt"`
	UpdatedAt           time.Time     `json:"updatedAt"`
}

// SegmentOccupancy tracks occupied seats for a (trip, fromStop, toStop) segment
type SegmentOccupancy struct {
	ID            uuid.UUID `json:"id"`
	BusTripID     uuid.UUID `json:"busTrip"`
	FromStopID    uuid.UUID `json:"fromStop"`
	ToStopID      uuid.UUID `json:"toStop"`
	SeatsOccupied int       `json:"seatsOccupied"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// CreateTicketRequest represents a booking request
type CreateTicketRequest struct {
	BusRouteID          uuid.UUID     `json:"busRoute"`
	BusTripID           uuid.UUID     `json:"busTrip"`
	FromStopID          uuid.UUID     `json:"fromStop"`
	ToStopID            uuid.UUID     `json:"toStop"`
	NumberOfSeats       int           `json:"numberOfSeats"`
	BoardingTime        time.Time     `json:"boardingTime"`
	ExpectedDropOffTime time.Time     `json:"expectedDropOffTime"`
	PassengerID         uuid.UUID     `json:"passenger"`
	PassengerInfo       PassengerInfo `json:"passengerInfo"`
}

// UpdateTicketStatusRequest represents a lifecycle transition request
type UpdateTicketStatusRequest struct {
	Status TicketStatus `json:"status"`
}

// AvailabilityResponse answers a segment availability query
type AvailabilityResponse struct {
	BusTripID      uuid.UUID `json:"busTrip"`
	FromStopID     uuid.UUID `json:"fromStop"`
	ToStopID       uuid.UUID `json:"toStop"`
	SeatsOccupied  int       `json:"seatsOccupied"`
	Capacity       int       `json:"capacity"`
	SeatsRequested int       `json:"seatsRequested"`
	Available      bool      `json:"available"`
}

// ActivePassenger is one entry of the on-board passenger list for a trip
type ActivePassenger struct {
	TicketID      uuid.UUID `json:"ticketId"`
	PassengerName string    `json:"passengerName"`
	FromStopID    uuid.UUID `json:"fromStop"`
	ToStopID      uuid.UUID `json:"toStop"`
	NumberOfSeats int       `json:"numberOfSeats"`
}
