// Package schedule detects time-window conflicts between driver/vehicle
// assignments.
package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/models"
)

// AssignmentSource supplies the non-terminal assignments to scan. Cancelled
// and completed assignments are excluded by the source. A non-nil day
// restricts the scan to assignments on that calendar day.
type AssignmentSource interface {
	ActiveSchedulesByDriver(ctx context.Context, driverID uuid.UUID, day *time.Time) ([]models.DriverBusSchedule, error)
	ActiveSchedulesByVehicle(ctx context.Context, vehicleID uuid.UUID, day *time.Time) ([]models.DriverBusSchedule, error)
}

// Detector answers schedule-conflict queries with an O(n) scan over the
// same-resource assignments.
type Detector struct {
	source AssignmentSource
}

// NewDetector creates a Detector over the given source.
func NewDetector(source AssignmentSource) *Detector {
	return &Detector{source: source}
}

// Overlaps reports whether [newStart, newEnd) collides with
// [existingStart, existingEnd). Windows are half-open: an assignment ending
// exactly when another starts does not conflict.
func Overlaps(newStart, newEnd, existingStart, existingEnd time.Time) bool {
	if !newStart.Before(existingStart) && newStart.Before(existingEnd) {
		return true
	}
	if newEnd.After(existingStart) && !newEnd.After(existingEnd) {
		return true
	}
	// New window fully contains the existing one.
	return !newStart.After(existingStart) && !newEnd.Before(existingEnd)
}

// IsDriverBusy reports whether the driver already has a non-terminal
// assignment overlapping [start, end). Note the polarity: true means a
// conflict exists.
func (d *Detector) IsDriverBusy(ctx context.Context, driverID uuid.UUID, start, end time.Time, effectiveDate *time.Time) (bool, error) {
	existing, err := d.source.ActiveSchedulesByDriver(ctx, driverID, effectiveDate)
	if err != nil {
		return false, err
	}
	return anyOverlap(existing, start, end), nil
}

// IsVehicleBusy reports whether the vehicle already has a non-terminal
// assignment overlapping [start, end).
func (d *Detector) IsVehicleBusy(ctx context.Context, vehicleID uuid.UUID, start, end time.Time, effectiveDate *time.Time) (bool, error) {
	existing, err := d.source.ActiveSchedulesByVehicle(ctx, vehicleID, effectiveDate)
	if err != nil {
		return false, err
	}
	return anyOverlap(existing, start, end), nil
}

// HasConflict reports whether assigning the driver and vehicle to
// [start, end) would double-book either of them.
func (d *Detector) HasConflict(ctx context.Context, driverID, vehicleID uuid.UUID, start, end time.Time) (bool, error) {
	busy, err := d.IsDriverBusy(ctx, driverID, start, end, nil)
	if err != nil || busy {
		return busy, err
	}
	return d.IsVehicleBusy(ctx, vehicleID, start, end, nil)
}

func anyOverlap(existing []models.DriverBusSchedule, start, end time.Time) bool {
	for _, s := range existing {
		if Overlaps(start, end, s.StartTime, s.EndTime) {
			return true
		}
	}
	return false
}
