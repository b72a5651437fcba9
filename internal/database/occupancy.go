package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// GetSegmentOccupancy returns the occupied-seat count for a segment, zero
// when no record exists yet.
func (r *Repository) GetSegmentOccupancy(ctx context.Context, tripID, fromStopID, toStopID uuid.UUID) (int, error) {
	var occupied int
	err := r.pool.QueryRow(ctx, `
		SELECT seats_occupied FROM segment_occupancy
		WHERE bus_trip_id = $1 AND from_stop_id = $2 AND to_stop_id = $3
	`, tripID, fromStopID, toStopID).Scan(&occupied)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get segment occupancy: %w", err)
	}
	return occupied, nil
}

// ReserveSegmentSeats atomically increments a segment's occupied-seat count
// only while the result stays within capacity. The availability check and the
// increment are a single statement, so concurrent bookings cannot oversell.
func (r *Repository) ReserveSegmentSeats(ctx context.Context, tripID, fromStopID, toStopID uuid.UUID, seats, capacity int) error {
	if seats > capacity {
		return ErrSegmentFull
	}

	result, err := r.pool.Exec(ctx, `
		INSERT INTO segment_occupancy (id, bus_trip_id, from_stop_id, to_stop_id, seats_occupied)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (bus_trip_id, from_stop_id, to_stop_id)
		DO UPDATE SET seats_occupied = segment_occupancy.seats_occupied + $5, updated_at = NOW()
		WHERE segment_occupancy.seats_occupied + $5 <= $6
	`, uuid.New(), tripID, fromStopID, toStopID, seats, capacity)
	if err != nil {
		return fmt.Errorf("failed to reserve segment seats: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrSegmentFull
	}
	return nil
}

// ApplySegmentDelta applies a signed seat delta to a segment, creating the
// record when absent. The counter is floored at zero.
func (r *Repository) ApplySegmentDelta(ctx context.Context, tripID, fromStopID, toStopID uuid.UUID, delta int) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO segment_occupancy (id, bus_trip_id, from_stop_id, to_stop_id, seats_occupied)
		VALUES ($1, $2, $3, $4, GREATEST($5, 0))
		ON CONFLICT (bus_trip_id, from_stop_id, to_stop_id)
		DO UPDATE SET seats_occupied = GREATEST(segment_occupancy.seats_occupied + $5, 0), updated_at = NOW()
	`, uuid.New(), tripID, fromStopID, toStopID, delta)
	if err != nil {
		return fmt.Errorf("failed to apply segment delta: %w", err)
	}
	return nil
}
