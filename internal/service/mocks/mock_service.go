package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/models"
)

// MockBookingService is a mock implementation of BookingService
type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) CreateTicket(ctx context.Context, req *models.CreateTicketRequest) (*models.Ticket, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ticket), args.Error(1)
}

func (m *MockBookingService) GetTicket(ctx context.Context, id uuid.UUID) (*models.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ticket), args.Error(1)
}

func (m *MockBookingService) UpdateTicketStatus(ctx context.Context, id uuid.UUID, newStatus models.TicketStatus) (*models.Ticket, error) {
	args := m.Called(ctx, id, newStatus)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ticket), args.Error(1)
}

func (m *MockBookingService) ExpireTicket(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingService) CheckAvailability(ctx context.Context, tripID, fromStopID, toStopID uuid.UUID, seats int) (*models.AvailabilityResponse, error) {
	args := m.Called(ctx, tripID, fromStopID, toStopID, seats)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AvailabilityResponse), args.Error(1)
}

func (m *MockBookingService) GetActivePassengers(ctx context.Context, tripID uuid.UUID) ([]models.ActivePassenger, error) {
	args := m.Called(ctx, tripID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ActivePassenger), args.Error(1)
}

func (m *MockBookingService) QuoteFare(ctx context.Context, routeID, fromStopID, toStopID uuid.UUID, seats int) (*models.FareQuote, error) {
	args := m.Called(ctx, routeID, fromStopID, toStopID, seats)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FareQuote), args.Error(1)
}

// MockScheduleService is a mock implementation of ScheduleService
type MockScheduleService struct {
	mock.Mock
}

func (m *MockScheduleService) CreateSchedule(ctx context.Context, req *models.CreateScheduleRequest) (*models.DriverBusSchedule, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DriverBusSchedule), args.Error(1)
}

func (m *MockScheduleService) GetSchedule(ctx context.Context, id uuid.UUID) (*models.DriverBusSchedule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DriverBusSchedule), args.Error(1)
}

func (m *MockScheduleService) ListDriverSchedules(ctx context.Context, driverID uuid.UUID, day *time.Time) ([]models.DriverBusSchedule, error) {
	args := m.Called(ctx, driverID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DriverBusSchedule), args.Error(1)
}

func (m *MockScheduleService) ListVehicleSchedules(ctx context.Context, vehicleID uuid.UUID, day *time.Time) ([]models.DriverBusSchedule, error) {
	args := m.Called(ctx, vehicleID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DriverBusSchedule), args.Error(1)
}

func (m *MockScheduleService) IsDriverBusy(ctx context.Context, driverID uuid.UUID, start, end time.Time, effectiveDate *time.Time) (bool, error) {
	args := m.Called(ctx, driverID, start, end, effectiveDate)
	return args.Bool(0), args.Error(1)
}

func (m *MockScheduleService) Checkin(ctx context.Context, id uuid.UUID) (*models.DriverBusSchedule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DriverBusSchedule), args.Error(1)
}

func (m *MockScheduleService) Checkout(ctx context.Context, id uuid.UUID) (*models.DriverBusSchedule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DriverBusSchedule), args.Error(1)
}

func (m *MockScheduleService) UpdateProgress(ctx context.Context, id uuid.UUID, req *models.StopProgressRequest) (*models.DriverBusSchedule, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DriverBusSchedule), args.Error(1)
}

func (m *MockScheduleService) CancelSchedule(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPricingService is a mock implementation of PricingService
type MockPricingService struct {
	mock.Mock
}

func (m *MockPricingService) UpsertServiceConfig(ctx context.Context, cfg *models.ServiceConfig) (*models.ServiceConfig, error) {
	args := m.Called(ctx, cfg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServiceConfig), args.Error(1)
}

func (m *MockPricingService) GetServiceConfig(ctx context.Context, serviceType string) (*models.ServiceConfig, error) {
	args := m.Called(ctx, serviceType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServiceConfig), args.Error(1)
}

func (m *MockPricingService) CreateVehiclePricing(ctx context.Context, vp *models.VehiclePricing) (*models.VehiclePricing, error) {
	args := m.Called(ctx, vp)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VehiclePricing), args.Error(1)
}

func (m *MockPricingService) GetVehiclePricing(ctx context.Context, categoryID, configID uuid.UUID) (*models.VehiclePricing, error) {
	args := m.Called(ctx, categoryID, configID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VehiclePricing), args.Error(1)
}

// MockVehicleDirectory is a mock implementation of VehicleDirectory
type MockVehicleDirectory struct {
	mock.Mock
}

func (m *MockVehicleDirectory) GetVehicle(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}

func (m *MockVehicleDirectory) UpdateVehicleStatus(ctx context.Context, id uuid.UUID, status models.VehicleOperationStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}
