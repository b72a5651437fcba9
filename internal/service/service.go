package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/models"
)

const (
	TaskQueue = "vinshuttle-booking-queue"

	// DefaultServiceType is the service type shuttle segment bookings are
	// priced under.
	DefaultServiceType = "booking_bus_route"
)

// BookingService owns the ticket lifecycle: creation, expiration, check-in,
// completion and cancellation, together with seat availability and fare
// quoting.
type BookingService interface {
	CreateTicket(ctx context.Context, req *models.CreateTicketRequest) (*models.Ticket, error)
	GetTicket(ctx context.Context, id uuid.UUID) (*models.Ticket, error)
	UpdateTicketStatus(ctx context.Context, id uuid.UUID, newStatus models.TicketStatus) (*models.Ticket, error)
	ExpireTicket(ctx context.Context, id uuid.UUID) (bool, error)
	CheckAvailability(ctx context.Context, tripID, fromStopID, toStopID uuid.UUID, seats int) (*models.AvailabilityResponse, error)
	GetActivePassengers(ctx context.Context, tripID uuid.UUID) ([]models.ActivePassenger, error)
	QuoteFare(ctx context.Context, routeID, fromStopID, toStopID uuid.UUID, seats int) (*models.FareQuote, error)
}

// ScheduleService manages driver/vehicle assignments and their conflict
// checks.
type ScheduleService interface {
	CreateSchedule(ctx context.Context, req *models.CreateScheduleRequest) (*models.DriverBusSchedule, error)
	GetSchedule(ctx context.Context, id uuid.UUID) (*models.DriverBusSchedule, error)
	ListDriverSchedules(ctx context.Context, driverID uuid.UUID, day *time.Time) ([]models.DriverBusSchedule, error)
	ListVehicleSchedules(ctx context.Context, vehicleID uuid.UUID, day *time.Time) ([]models.DriverBusSchedule, error)
	IsDriverBusy(ctx context.Context, driverID uuid.UUID, start, end time.Time, effectiveDate *time.Time) (bool, error)
	Checkin(ctx context.Context, id uuid.UUID) (*models.DriverBusSchedule, error)
	Checkout(ctx context.Context, id uuid.UUID) (*models.DriverBusSchedule, error)
	UpdateProgress(ctx context.Context, id uuid.UUID, req *models.StopProgressRequest) (*models.DriverBusSchedule, error)
	CancelSchedule(ctx context.Context, id uuid.UUID) error
}

// PricingService administers service configs and tiered vehicle pricing.
type PricingService interface {
	UpsertServiceConfig(ctx context.Context, cfg *models.ServiceConfig) (*models.ServiceConfig, error)
	GetServiceConfig(ctx context.Context, serviceType string) (*models.ServiceConfig, error)
	CreateVehiclePricing(ctx context.Context, vp *models.VehiclePricing) (*models.VehiclePricing, error)
	GetVehiclePricing(ctx context.Context, categoryID, configID uuid.UUID) (*models.VehiclePricing, error)
}

// TicketStore is the persistence surface the booking service needs.
type TicketStore interface {
	CreateTicket(ctx context.Context, t *models.Ticket) error
	GetTicketByID(ctx context.Context, id uuid.UUID) (*models.Ticket, error)
	TransitionTicketStatus(ctx context.Context, id uuid.UUID, from, to models.TicketStatus) (bool, error)
	TransitionAndReleaseSeats(ctx context.Context, t *models.Ticket, from, to models.TicketStatus) (bool, error)
	GetTicketsByTripAndStatus(ctx context.Context, tripID uuid.UUID, status models.TicketStatus) ([]models.Ticket, error)
}

// ReferenceData supplies routes, trips, categories and pricing configuration.
// Implemented by the directory package.
type ReferenceData interface {
	GetRoute(ctx context.Context, id uuid.UUID) (*models.BusRoute, error)
	GetTrip(ctx context.Context, id uuid.UUID) (*models.BusTrip, error)
	GetVehicleCategory(ctx context.Context, id uuid.UUID) (*models.VehicleCategory, error)
	GetServiceConfig(ctx context.Context, serviceType string) (*models.ServiceConfig, error)
	GetVehiclePricing(ctx context.Context, categoryID, configID uuid.UUID) (*models.VehiclePricing, error)
}

// VehicleDirectory exposes vehicle lookups and operation-status
// administration. Implemented by the directory package.
type VehicleDirectory interface {
	GetVehicle(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
	UpdateVehicleStatus(ctx context.Context, id uuid.UUID, status models.VehicleOperationStatus) error
}

// ExpirationScheduler arms the detached, durable expiration for a pending
// ticket.
type ExpirationScheduler interface {
	ScheduleExpiration(ctx context.Context, ticketID uuid.UUID, pendingWindow time.Duration) error
}
