// Package inventory tracks occupied seats per (trip, fromStop, toStop)
// segment and answers availability queries against the capacity of the
// vehicle category serving the trip's route.
package inventory

import (
	"context"

	"github.com/google/uuid"

	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/models"
)

// SegmentStore persists the per-segment occupied-seat counters.
type SegmentStore interface {
	GetSegmentOccupancy(ctx context.Context, tripID, fromStopID, toStopID uuid.UUID) (int, error)
	ReserveSegmentSeats(ctx context.Context, tripID, fromStopID, toStopID uuid.UUID, seats, capacity int) error
	ApplySegmentDelta(ctx context.Context, tripID, fromStopID, toStopID uuid.UUID, delta int) error
}

// CapacityResolver resolves the seat capacity of the vehicle category
// assigned to a trip's route. Capacity is never a constant.
type CapacityResolver interface {
	TripCapacity(ctx context.Context, tripID uuid.UUID) (int, error)
}

// Inventory is the segment seat inventory.
type Inventory struct {
	store    SegmentStore
	capacity CapacityResolver
}

// New creates an Inventory over the given store and capacity resolver.
func New(store SegmentStore, capacity CapacityResolver) *Inventory {
	return &Inventory{store: store, capacity: capacity}
}

// OccupiedSeats returns the occupied-seat count for a segment, zero when no
// booking touched the segment yet.
func (i *Inventory) OccupiedSeats(ctx context.Context, tripID, fromStopID, toStopID uuid.UUID) (int, error) {
	return i.store.GetSegmentOccupancy(ctx, tripID, fromStopID, toStopID)
}

// CheckAvailability reports whether seatsRequired more seats fit on the
// segment: occupied + requested <= capacity.
func (i *Inventory) CheckAvailability(ctx context.Context, tripID, fromStopID, toStopID uuid.UUID, seatsRequired int) (*models.AvailabilityResponse, error) {
	capacity, err := i.capacity.TripCapacity(ctx, tripID)
	if err != nil {
		return nil, err
	}
	occupied, err := i.store.GetSegmentOccupancy(ctx, tripID, fromStopID, toStopID)
	if err != nil {
		return nil, err
	}

	return &models.AvailabilityResponse{
		BusTripID:      tripID,
		FromStopID:     fromStopID,
		ToStopID:       toStopID,
		SeatsOccupied:  occupied,
		Capacity:       capacity,
		SeatsRequested: seatsRequired,
		Available:      occupied+seatsRequired <= capacity,
	}, nil
}

// Reserve atomically claims seats on a segment. The capacity comparison and
// the increment happen in a single storage operation, so a concurrent
// Reserve on the same segment cannot oversell.
func (i *Inventory) Reserve(ctx context.Context, tripID, fromStopID, toStopID uuid.UUID, seats int) error {
	capacity, err := i.capacity.TripCapacity(ctx, tripID)
	if err != nil {
		return err
	}
	return i.store.ReserveSegmentSeats(ctx, tripID, fromStopID, toStopID, seats, capacity)
}

// Release returns seats to a segment.
func (i *Inventory) Release(ctx context.Context, tripID, fromStopID, toStopID uuid.UUID, seats int) error {
	return i.store.ApplySegmentDelta(ctx, tripID, fromStopID, toStopID, -seats)
}

// ApplyDelta applies a signed seat delta to a segment, creating the record
// when absent.
func (i *Inventory) ApplyDelta(ctx context.Context, tripID, fromStopID, toStopID uuid.UUID, delta int) error {
	return i.store.ApplySegmentDelta(ctx, tripID, fromStopID, toStopID, delta)
}
