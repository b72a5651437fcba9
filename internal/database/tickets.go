package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/models"
)

// CreateTicket inserts a new ticket in pending status
func (r *Repository) CreateTicket(ctx context.Context, t *models.Ticket) error {
	query := `
		INSERT INTO tickets (id, bus_route_id, bus_trip_id, from_stop_id, to_stop_id,
		                     number_of_seats, fare, boarding_time, expected_drop_off_time,
		                     status, passenger_id, passenger_name, passenger_phone, passenger_email)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at
	`

	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query,
		t.ID, t.BusRouteID, t.BusTripID, t.FromStopID, t.ToStopID,
		t.NumberOfSeats, t.Fare, t.BoardingTime, t.ExpectedDropOffTime,
		t.Status, t.PassengerID, t.PassengerInfo.Name, t.PassengerInfo.Phone, t.PassengerInfo.Email,
	).Scan(&t.CreatedAt, &t.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create ticket: %w", err)
	}

	return nil
}

// GetTicketByID returns a ticket by ID
func (r *Repository) GetTicketByID(ctx context.Context, id uuid.UUID) (*models.Ticket, error) {
	query := `
		SELECT id, bus_route_id, bus_trip_id, from_stop_id, to_stop_id,
		       number_of_seats, fare, boarding_time, expected_drop_off_time,
		       status, passenger_id, passenger_name, passenger_phone, passenger_email,
		       created_at, updated_at
		FROM tickets
		WHERE id = $1
	`

	var t models.Ticket
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.BusRouteID, &t.BusTripID, &t.FromStopID, &t.ToStopID,
		&t.NumberOfSeats, &t.Fare, &t.BoardingTime, &t.ExpectedDropOffTime,
		&t.Status, &t.PassengerID, &t.PassengerInfo.Name, &t.PassengerInfo.Phone, &t.PassengerInfo.Email,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}

	return &t, nil
}

// TransitionTicketStatus sets the status only when the current status matches
// from, and reports whether a row was updated. This is what makes expiration
// and concurrent status updates safe to race: at most one conditional update
// wins.
func (r *Repository) TransitionTicketStatus(ctx context.Context, id uuid.UUID, from, to models.TicketStatus) (bool, error) {
	result, err := r.pool.Exec(ctx, `
		UPDATE tickets SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, to, id, from)
	if err != nil {
		return false, fmt.Errorf("failed to transition ticket status: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// TransitionAndReleaseSeats performs a conditional status transition and the
// matching segment-occupancy decrement in one transaction. Either both commit
// or neither does, so a storage failure mid-way cannot strand a terminal
// ticket that still holds seats. It reports whether the transition matched.
func (r *Repository) TransitionAndReleaseSeats(ctx context.Context, t *models.Ticket, from, to models.TicketStatus) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx, `
		UPDATE tickets SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, to, t.ID, from)
	if err != nil {
		return false, fmt.Errorf("failed to transition ticket status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return false, nil
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO segment_occupancy (id, bus_trip_id, from_stop_id, to_stop_id, seats_occupied)
		VALUES ($1, $2, $3, $4, 0)
		ON CONFLICT (bus_trip_id, from_stop_id, to_stop_id)
		DO UPDATE SET seats_occupied = GREATEST(segment_occupancy.seats_occupied - $5, 0), updated_at = NOW()
	`, uuid.New(), t.BusTripID, t.FromStopID, t.ToStopID, t.NumberOfSeats)
	if err != nil {
		return false, fmt.Errorf("failed to release segment seats: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return true, nil
}

// GetTicketsByTripAndStatus returns all tickets for a trip in the given status
func (r *Repository) GetTicketsByTripAndStatus(ctx context.Context, tripID uuid.UUID, status models.TicketStatus) ([]models.Ticket, error) {
	query := `
		SELECT id, bus_route_id, bus_trip_id, from_stop_id, to_stop_id,
		       number_of_seats, fare, boarding_time, expected_drop_off_time,
		       status, passenger_id, passenger_name, passenger_phone, passenger_email,
		       created_at, updated_at
		FROM tickets
		WHERE bus_trip_id = $1 AND status = $2
		ORDER BY boarding_time ASC
	`

	rows, err := r.pool.Query(ctx, query, tripID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to query tickets: %w", err)
	}
	defer rows.Close()

	var tickets []models.Ticket
	for rows.Next() {
		var t models.Ticket
		err := rows.Scan(
			&t.ID, &t.BusRouteID, &t.BusTripID, &t.FromStopID, &t.ToStopID,
			&t.NumberOfSeats, &t.Fare, &t.BoardingTime, &t.ExpectedDropOffTime,
			&t.Status, &t.PassengerID, &t.PassengerInfo.Name, &t.PassengerInfo.Phone, &t.PassengerInfo.Email,
			&t.CreatedAt, &t.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, t)
	}

	return tickets, nil
}
