package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/models"
	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/schedule"
)

const scheduleColumns = `
	id, driver_id, bus_route_id, vehicle_id, trip_number, start_time, end_time,
	status, checkin_time, checkout_time, is_late, is_early_checkout,
	current_stop_id, completed_stops, current_passengers, total_passengers,
	created_at, updated_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSchedule(row rowScanner) (*models.DriverBusSchedule, error) {
	var s models.DriverBusSchedule
	var completedStops []byte
	err := row.Scan(
		&s.ID, &s.DriverID, &s.BusRouteID, &s.VehicleID, &s.TripNumber,
		&s.StartTime, &s.EndTime, &s.Status, &s.CheckinTime, &s.CheckoutTime,
		&s.IsLate, &s.IsEarlyCheckout, &s.CurrentStopID, &completedStops,
		&s.CurrentPassengers, &s.TotalPassengers, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(completedStops) > 0 {
		if err := json.Unmarshal(completedStops, &s.CompletedStops); err != nil {
			return nil, fmt.Errorf("failed to unmarshal completed stops: %w", err)
		}
	}
	return &s, nil
}

// CreateSchedule inserts a driver/vehicle assignment. The conflict scan, the
// vehicle status check, and the insert run in one transaction holding
// advisory locks on the driver and vehicle keys, so two concurrent requests
// for the same resource cannot both pass the scan.
func (r *Repository) CreateSchedule(ctx context.Context, s *models.DriverBusSchedule) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Serialize assignment creation per driver and per vehicle.
	for _, key := range []uuid.UUID{s.DriverID, s.VehicleID} {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`, key); err != nil {
			return fmt.Errorf("failed to acquire assignment lock: %w", err)
		}
	}

	driverSchedules, err := activeSchedulesTx(ctx, tx, "driver_id", s.DriverID)
	if err != nil {
		return err
	}
	vehicleSchedules, err := activeSchedulesTx(ctx, tx, "vehicle_id", s.VehicleID)
	if err != nil {
		return err
	}
	for _, existing := range append(driverSchedules, vehicleSchedules...) {
		if schedule.Overlaps(s.StartTime, s.EndTime, existing.StartTime, existing.EndTime) {
			return ErrScheduleConflict
		}
	}

	var vehicleStatus models.VehicleOperationStatus
	err = tx.QueryRow(ctx, `
		SELECT operation_status FROM vehicles WHERE id = $1 FOR UPDATE
	`, s.VehicleID).Scan(&vehicleStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get vehicle status: %w", err)
	}
	if vehicleStatus != models.VehicleStatusAvailable && vehicleStatus != models.VehicleStatusPending {
		return ErrVehicleUnavailable
	}

	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.Status = models.ScheduleStatusActive

	err = tx.QueryRow(ctx, `
		INSERT INTO driver_bus_schedules
			(id, driver_id, bus_route_id, vehicle_id, trip_number, start_time, end_time, status, completed_stops)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, '[]'::jsonb)
		RETURNING created_at, updated_at
	`, s.ID, s.DriverID, s.BusRouteID, s.VehicleID, s.TripNumber, s.StartTime, s.EndTime, s.Status).
		Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create schedule: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE vehicles SET operation_status = $1, updated_at = NOW() WHERE id = $2
	`, models.VehicleStatusUnavailable, s.VehicleID)
	if err != nil {
		return fmt.Errorf("failed to update vehicle status: %w", err)
	}

	return tx.Commit(ctx)
}

func activeSchedulesTx(ctx context.Context, tx pgx.Tx, column string, id uuid.UUID) ([]models.DriverBusSchedule, error) {
	rows, err := tx.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM driver_bus_schedules
		WHERE %s = $1 AND status NOT IN ('cancelled', 'completed')
	`, scheduleColumns, column), id)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedules: %w", err)
	}
	defer rows.Close()

	return collectSchedules(rows)
}

func collectSchedules(rows pgx.Rows) ([]models.DriverBusSchedule, error) {
	var schedules []models.DriverBusSchedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule: %w", err)
		}
		schedules = append(schedules, *s)
	}
	return schedules, rows.Err()
}

func (r *Repository) activeSchedulesBy(ctx context.Context, column string, id uuid.UUID, day *time.Time) ([]models.DriverBusSchedule, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM driver_bus_schedules
		WHERE %s = $1 AND status NOT IN ('cancelled', 'completed')
	`, scheduleColumns, column)
	args := []any{id}

	if day != nil {
		dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
		query += ` AND start_time >= $2 AND start_time < $3`
		args = append(args, dayStart, dayStart.Add(24*time.Hour))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedules: %w", err)
	}
	defer rows.Close()

	return collectSchedules(rows)
}

// ActiveSchedulesByDriver returns the driver's non-cancelled, non-completed
// assignments, optionally restricted to one calendar day.
func (r *Repository) ActiveSchedulesByDriver(ctx context.Context, driverID uuid.UUID, day *time.Time) ([]models.DriverBusSchedule, error) {
	return r.activeSchedulesBy(ctx, "driver_id", driverID, day)
}

// ActiveSchedulesByVehicle returns the vehicle's non-cancelled, non-completed
// assignments, optionally restricted to one calendar day.
func (r *Repository) ActiveSchedulesByVehicle(ctx context.Context, vehicleID uuid.UUID, day *time.Time) ([]models.DriverBusSchedule, error) {
	return r.activeSchedulesBy(ctx, "vehicle_id", vehicleID, day)
}

// GetScheduleByID returns an assignment by ID
func (r *Repository) GetScheduleByID(ctx context.Context, id uuid.UUID) (*models.DriverBusSchedule, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM driver_bus_schedules WHERE id = $1
	`, scheduleColumns), id)

	s, err := scanSchedule(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}
	return s, nil
}

// CheckinSchedule marks an assignment in progress and records the check-in
// time and lateness flag
func (r *Repository) CheckinSchedule(ctx context.Context, id uuid.UUID, at time.Time, isLate bool) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE driver_bus_schedules
		SET status = $1, checkin_time = $2, is_late = $3, updated_at = NOW()
		WHERE id = $4 AND status = $5
	`, models.ScheduleStatusInProgress, at, isLate, id, models.ScheduleStatusActive)
	if err != nil {
		return fmt.Errorf("failed to check in schedule: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CheckoutSchedule completes an assignment and releases its vehicle back to
// the available pool in the same transaction
func (r *Repository) CheckoutSchedule(ctx context.Context, id uuid.UUID, at time.Time, isEarly bool) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var vehicleID uuid.UUID
	err = tx.QueryRow(ctx, `
		UPDATE driver_bus_schedules
		SET status = $1, checkout_time = $2, is_early_checkout = $3, updated_at = NOW()
		WHERE id = $4 AND status = $5
		RETURNING vehicle_id
	`, models.ScheduleStatusCompleted, at, isEarly, id, models.ScheduleStatusInProgress).Scan(&vehicleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to check out schedule: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE vehicles SET operation_status = $1, updated_at = NOW() WHERE id = $2
	`, models.VehicleStatusAvailable, vehicleID)
	if err != nil {
		return fmt.Errorf("failed to release vehicle: %w", err)
	}

	return tx.Commit(ctx)
}

// UpdateScheduleProgress records the current stop, appends it to the
// completed-stops list, and updates the passenger counters
func (r *Repository) UpdateScheduleProgress(ctx context.Context, id uuid.UUID, currentStopID uuid.UUID, currentPassengers int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM driver_bus_schedules WHERE id = $1 FOR UPDATE
	`, scheduleColumns), id)
	s, err := scanSchedule(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get schedule: %w", err)
	}

	alreadyCompleted := false
	for _, stop := range s.CompletedStops {
		if stop == currentStopID {
			alreadyCompleted = true
			break
		}
	}
	if !alreadyCompleted {
		s.CompletedStops = append(s.CompletedStops, currentStopID)
	}
	completedStops, err := json.Marshal(s.CompletedStops)
	if err != nil {
		return fmt.Errorf("failed to marshal completed stops: %w", err)
	}

	totalPassengers := s.TotalPassengers
	if currentPassengers > s.CurrentPassengers {
		totalPassengers += currentPassengers - s.CurrentPassengers
	}

	_, err = tx.Exec(ctx, `
		UPDATE driver_bus_schedules
		SET current_stop_id = $1, completed_stops = $2,
		    current_passengers = $3, total_passengers = $4, updated_at = NOW()
		WHERE id = $5
	`, currentStopID, completedStops, currentPassengers, totalPassengers, id)
	if err != nil {
		return fmt.Errorf("failed to update schedule progress: %w", err)
	}

	return tx.Commit(ctx)
}

// CancelSchedule cancels an assignment and releases its vehicle. Completed
// assignments cannot be cancelled.
func (r *Repository) CancelSchedule(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var vehicleID uuid.UUID
	err = tx.QueryRow(ctx, `
		UPDATE driver_bus_schedules
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status NOT IN ('cancelled', 'completed')
		RETURNING vehicle_id
	`, models.ScheduleStatusCancelled, id).Scan(&vehicleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to cancel schedule: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE vehicles SET operation_status = $1, updated_at = NOW() WHERE id = $2
	`, models.VehicleStatusAvailable, vehicleID)
	if err != nil {
		return fmt.Errorf("failed to release vehicle: %w", err)
	}

	return tx.Commit(ctx)
}
