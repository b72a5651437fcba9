package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/apperrors"
	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/database"
	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/models"
	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/schedule"
)

// ScheduleStore is the persistence surface the schedule service needs. The
// store serializes CreateSchedule per driver and per vehicle, so the conflict
// scan cannot race.
type ScheduleStore interface {
	schedule.AssignmentSource
	CreateSchedule(ctx context.Context, s *models.DriverBusSchedule) error
	GetScheduleByID(ctx context.Context, id uuid.UUID) (*models.DriverBusSchedule, error)
	CheckinSchedule(ctx context.Context, id uuid.UUID, at time.Time, isLate bool) error
	CheckoutSchedule(ctx context.Context, id uuid.UUID, at time.Time, isEarly bool) error
	UpdateScheduleProgress(ctx context.Context, id uuid.UUID, currentStopID uuid.UUID, currentPassengers int) error
	CancelSchedule(ctx context.Context, id uuid.UUID) error
}

// scheduleServiceImpl implements ScheduleService
type scheduleServiceImpl struct {
	store    ScheduleStore
	detector *schedule.Detector
	now      func() time.Time
}

// NewScheduleService creates a new ScheduleService
func NewScheduleService(store ScheduleStore) ScheduleService {
	return &scheduleServiceImpl{
		store:    store,
		detector: schedule.NewDetector(store),
		now:      time.Now,
	}
}

func (s *scheduleServiceImpl) CreateSchedule(ctx context.Context, req *models.CreateScheduleRequest) (*models.DriverBusSchedule, error) {
	if !req.StartTime.Before(req.EndTime) {
		return nil, apperrors.Validation("start time must be before end time", "Giờ bắt đầu phải trước giờ kết thúc")
	}
	if req.DriverID == uuid.Nil || req.VehicleID == uuid.Nil || req.BusRouteID == uuid.Nil {
		return nil, apperrors.Validationf("driver, vehicle and route are required")
	}

	sched := &models.DriverBusSchedule{
		DriverID:   req.DriverID,
		BusRouteID: req.BusRouteID,
		VehicleID:  req.VehicleID,
		TripNumber: req.TripNumber,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
	}

	err := s.store.CreateSchedule(ctx, sched)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrScheduleConflict):
			return nil, apperrors.Conflict(
				"driver or vehicle already has an overlapping assignment",
				"Tài xế hoặc xe đã có lịch trùng khung giờ",
			)
		case errors.Is(err, database.ErrVehicleUnavailable):
			return nil, apperrors.Conflict(
				"vehicle is not available for assignment",
				"Xe hiện không sẵn sàng để phân công",
			)
		case errors.Is(err, database.ErrNotFound):
			return nil, apperrors.NotFoundf("vehicle not found")
		}
		return nil, err
	}
	return sched, nil
}

func (s *scheduleServiceImpl) GetSchedule(ctx context.Context, id uuid.UUID) (*models.DriverBusSchedule, error) {
	sched, err := s.store.GetScheduleByID(ctx, id)
	if err != nil {
		return nil, mapLookupErr(err, "schedule")
	}
	return sched, nil
}

func (s *scheduleServiceImpl) ListDriverSchedules(ctx context.Context, driverID uuid.UUID, day *time.Time) ([]models.DriverBusSchedule, error) {
	return s.store.ActiveSchedulesByDriver(ctx, driverID, day)
}

func (s *scheduleServiceImpl) ListVehicleSchedules(ctx context.Context, vehicleID uuid.UUID, day *time.Time) ([]models.DriverBusSchedule, error) {
	return s.store.ActiveSchedulesByVehicle(ctx, vehicleID, day)
}

// IsDriverBusy reports whether the driver has a conflicting assignment in
// [start, end). True means conflict.
func (s *scheduleServiceImpl) IsDriverBusy(ctx context.Context, driverID uuid.UUID, start, end time.Time, effectiveDate *time.Time) (bool, error) {
	return s.detector.IsDriverBusy(ctx, driverID, start, end, effectiveDate)
}

func (s *scheduleServiceImpl) Checkin(ctx context.Context, id uuid.UUID) (*models.DriverBusSchedule, error) {
	sched, err := s.store.GetScheduleByID(ctx, id)
	if err != nil {
		return nil, mapLookupErr(err, "schedule")
	}
	if sched.Status != models.ScheduleStatusActive {
		return nil, apperrors.Conflictf("cannot check in a %s schedule", sched.Status)
	}

	now := s.now()
	isLate := now.After(sched.StartTime)
	if err := s.store.CheckinSchedule(ctx, id, now, isLate); err != nil {
		return nil, mapLookupErr(err, "schedule")
	}

	sched.Status = models.ScheduleStatusInProgress
	sched.CheckinTime = &now
	sched.IsLate = isLate
	return sched, nil
}

func (s *scheduleServiceImpl) Checkout(ctx context.Context, id uuid.UUID) (*models.DriverBusSchedule, error) {
	sched, err := s.store.GetScheduleByID(ctx, id)
	if err != nil {
		return nil, mapLookupErr(err, "schedule")
	}
	if sched.Status != models.ScheduleStatusInProgress {
		return nil, apperrors.Conflictf("cannot check out a %s schedule", sched.Status)
	}

	now := s.now()
	isEarly := now.Before(sched.EndTime)
	if err := s.store.CheckoutSchedule(ctx, id, now, isEarly); err != nil {
		return nil, mapLookupErr(err, "schedule")
	}

	sched.Status = models.ScheduleStatusCompleted
	sched.CheckoutTime = &now
	sched.IsEarlyCheckout = isEarly
	return sched, nil
}

func (s *scheduleServiceImpl) UpdateProgress(ctx context.Context, id uuid.UUID, req *models.StopProgressRequest) (*models.DriverBusSchedule, error) {
	if req.CurrentPassengers < 0 {
		return nil, apperrors.Validationf("current passengers must be non-negative")
	}

	sched, err := s.store.GetScheduleByID(ctx, id)
	if err != nil {
		return nil, mapLookupErr(err, "schedule")
	}
	if sched.Status != models.ScheduleStatusInProgress {
		return nil, apperrors.Conflictf("cannot update progress of a %s schedule", sched.Status)
	}

	if err := s.store.UpdateScheduleProgress(ctx, id, req.CurrentStopID, req.CurrentPassengers); err != nil {
		return nil, mapLookupErr(err, "schedule")
	}
	return s.store.GetScheduleByID(ctx, id)
}

func (s *scheduleServiceImpl) CancelSchedule(ctx context.Context, id uuid.UUID) error {
	if err := s.store.CancelSchedule(ctx, id); err != nil {
		return mapLookupErr(err, "schedule")
	}
	return nil
}
