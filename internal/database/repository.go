package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrSegmentFull        = errors.New("not enough seats on segment")
	ErrDuplicatePricing   = errors.New("vehicle pricing already exists for this category and service config")
	ErrScheduleConflict   = errors.New("schedule overlaps an existing assignment")
	ErrVehicleUnavailable = errors.New("vehicle is not available for assignment")
)

// Repository handles all database operations
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}
