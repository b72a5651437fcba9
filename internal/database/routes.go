package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/models"
)

// GetRouteByID returns a route with its stops ordered by position
func (r *Repository) GetRouteByID(ctx context.Context, id uuid.UUID) (*models.BusRoute, error) {
	var route models.BusRoute
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, vehicle_category_id FROM bus_routes WHERE id = $1
	`, id).Scan(&route.ID, &route.Name, &route.VehicleCategoryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get route: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT stop_id, name, distance_from_start, estimated_time
		FROM route_stops
		WHERE bus_route_id = $1
		ORDER BY position ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query route stops: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s models.RouteStop
		if err := rows.Scan(&s.StopID, &s.Name, &s.DistanceFromStart, &s.EstimatedTime); err != nil {
			return nil, fmt.Errorf("failed to scan route stop: %w", err)
		}
		route.Stops = append(route.Stops, s)
	}

	return &route, nil
}

// GetTripByID returns a trip by ID
func (r *Repository) GetTripByID(ctx context.Context, id uuid.UUID) (*models.BusTrip, error) {
	var t models.BusTrip
	err := r.pool.QueryRow(ctx, `
		SELECT id, bus_route_id, trip_number, start_time FROM bus_trips WHERE id = $1
	`, id).Scan(&t.ID, &t.BusRouteID, &t.TripNumber, &t.StartTime)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}
	return &t, nil
}

// GetVehicleCategoryByID returns a vehicle category by ID
func (r *Repository) GetVehicleCategoryByID(ctx context.Context, id uuid.UUID) (*models.VehicleCategory, error) {
	var c models.VehicleCategory
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, number_of_seats FROM vehicle_categories WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.NumberOfSeats)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get vehicle category: %w", err)
	}
	return &c, nil
}

// GetVehicleByID returns a vehicle by ID
func (r *Repository) GetVehicleByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	var v models.Vehicle
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, license_plate, vehicle_category_id, operation_status
		FROM vehicles WHERE id = $1
	`, id).Scan(&v.ID, &v.Name, &v.LicensePlate, &v.VehicleCategoryID, &v.OperationStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}
	return &v, nil
}

// UpdateVehicleStatus sets a vehicle's operation status
func (r *Repository) UpdateVehicleStatus(ctx context.Context, id uuid.UUID, status models.VehicleOperationStatus) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE vehicles SET operation_status = $1, updated_at = NOW() WHERE id = $2
	`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update vehicle status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
