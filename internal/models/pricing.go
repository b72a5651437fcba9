package models

import (
	"time"

	"github.com/google/uuid"
)

// ServiceConfig holds the base pricing unit for one service type,
// e.g. 30 for a 30-minute block or 1 for a 1-km block. Unique per service type.
type ServiceConfig struct {
	ID           uuid.UUID `json:"id"`
	ServiceType  string    `json:"serviceType"`
	BaseUnit     float64   `json:"baseUnit"`
	BaseUnitType string    `json:"baseUnitType"` // label only, e.g. "minute", "km"
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PricingTier is one tier of a tiered price table. Range is the inclusive
// lower bound of the tier in raw units; Price is the cost per base unit
// consumed within the tier.
type PricingTier struct {
	Range float64 `json:"range"`
	Price int64   `json:"price"`
}

// VehiclePricing is the tiered price table for a (vehicle category, service
// config) pair. At most one exists per pair and its tiers must include a
// Range = 0 entry.
type VehiclePricing struct {
	ID                uuid.UUID     `json:"id"`
	VehicleCategoryID uuid.UUID     `json:"vehicleCategory"`
	ServiceConfigID   uuid.UUID     `json:"serviceConfig"`
	TieredPricing     []PricingTier `json:"tieredPricing"`
	CreatedAt         time.Time     `json:"createdAt"`
	UpdatedAt         time.Time     `json:"updatedAt"`
}

// FareQuote is the priced result of a fare calculation, with the per-tier
// calculation trace kept for auditability.
type FareQuote struct {
	TotalPrice int64    `json:"totalPrice"`
	Trace      []string `json:"trace"`
}
