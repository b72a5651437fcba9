package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/models"
)

const uniqueViolation = "23505"

// UpsertServiceConfig creates the service config for a service type or
// updates its base unit. Uniqueness per service type is enforced by the
// store.
func (r *Repository) UpsertServiceConfig(ctx context.Context, cfg *models.ServiceConfig) error {
	if cfg.ID == uuid.Nil {
		cfg.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, `
		INSERT INTO service_configs (id, service_type, base_unit, base_unit_type)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (service_type)
		DO UPDATE SET base_unit = $3, base_unit_type = $4, updated_at = NOW()
		RETURNING id, created_at, updated_at
	`, cfg.ID, cfg.ServiceType, cfg.BaseUnit, cfg.BaseUnitType).Scan(&cfg.ID, &cfg.CreatedAt, &cfg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert service config: %w", err)
	}
	return nil
}

// GetServiceConfigByType returns the service config for a service type
func (r *Repository) GetServiceConfigByType(ctx context.Context, serviceType string) (*models.ServiceConfig, error) {
	var cfg models.ServiceConfig
	err := r.pool.QueryRow(ctx, `
		SELECT id, service_type, base_unit, base_unit_type, created_at, updated_at
		FROM service_configs WHERE service_type = $1
	`, serviceType).Scan(&cfg.ID, &cfg.ServiceType, &cfg.BaseUnit, &cfg.BaseUnitType, &cfg.CreatedAt, &cfg.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get service config: %w", err)
	}
	return &cfg, nil
}

// CreateVehiclePricing inserts a tiered price table for a (vehicle category,
// service config) pair. A second table for the same pair is a duplicate.
func (r *Repository) CreateVehiclePricing(ctx context.Context, vp *models.VehiclePricing) error {
	if vp.ID == uuid.Nil {
		vp.ID = uuid.New()
	}

	tiers, err := json.Marshal(vp.TieredPricing)
	if err != nil {
		return fmt.Errorf("failed to marshal tiered pricing: %w", err)
	}

	err = r.pool.QueryRow(ctx, `
		INSERT INTO vehicle_pricings (id, vehicle_category_id, service_config_id, tiered_pricing)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`, vp.ID, vp.VehicleCategoryID, vp.ServiceConfigID, tiers).Scan(&vp.CreatedAt, &vp.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicatePricing
		}
		return fmt.Errorf("failed to create vehicle pricing: %w", err)
	}
	return nil
}

// GetVehiclePricing returns the price table for a (vehicle category, service
// config) pair
func (r *Repository) GetVehiclePricing(ctx context.Context, categoryID, configID uuid.UUID) (*models.VehiclePricing, error) {
	var vp models.VehiclePricing
	var tiers []byte
	err := r.pool.QueryRow(ctx, `
		SELECT id, vehicle_category_id, service_config_id, tiered_pricing, created_at, updated_at
		FROM vehicle_pricings
		WHERE vehicle_category_id = $1 AND service_config_id = $2
	`, categoryID, configID).Scan(&vp.ID, &vp.VehicleCategoryID, &vp.ServiceConfigID, &tiers, &vp.CreatedAt, &vp.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get vehicle pricing: %w", err)
	}

	if err := json.Unmarshal(tiers, &vp.TieredPricing); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tiered pricing: %w", err)
	}
	return &vp, nil
}
