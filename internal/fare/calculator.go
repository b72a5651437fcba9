// Package fare computes tiered fares for a quantity of consumption units
// (kilometers or minutes, depending on the service config).
package fare

import (
	"fmt"
	"math"
	"sort"

	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/apperrors"
	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/models"
)

// Compute walks the pricing tiers from the highest range downward. Each tier
// prices the units between its own range and the units already consumed by
// higher tiers, at Price per baseUnit units. The running total is floored
// after every tier. Inputs are assumed well formed: baseUnit > 0 and tiers
// validated by ValidateTiers at creation time.
func Compute(baseUnit float64, tiers []models.PricingTier, totalUnits float64) (int64, []string) {
	if totalUnits <= 0 || len(tiers) == 0 {
		return 0, nil
	}

	sorted := make([]models.PricingTier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Range > sorted[j].Range })

	var total float64
	var trace []string
	remaining := totalUnits

	for _, tier := range sorted {
		if tier.Range > remaining {
			continue
		}
		units := remaining - tier.Range
		if units <= 0 {
			continue
		}
		total = math.Floor(total + units/baseUnit*float64(tier.Price))
		trace = append(trace, fmt.Sprintf(
			"%g units x %d per %g-unit block = %d (tier %g+, running total %d)",
			units, tier.Price, baseUnit,
			int64(math.Floor(units/baseUnit*float64(tier.Price))),
			tier.Range, int64(total),
		))
		remaining = tier.Range
	}

	return int64(total), trace
}

// ValidateTiers enforces the shape every stored tier set must have: at least
// one tier, exactly one tier per range, non-negative prices, and a tier with
// range 0 so no consumption below the lowest tier goes unpriced.
func ValidateTiers(tiers []models.PricingTier) error {
	if len(tiers) == 0 {
		return apperrors.Validation(
			"tiered pricing must contain at least one tier",
			"Bảng giá phải có ít nhất một bậc",
		)
	}

	seen := make(map[float64]bool, len(tiers))
	hasZero := false
	for _, tier := range tiers {
		if tier.Range < 0 {
			return apperrors.Validationf("tier range must be non-negative, got %g", tier.Range)
		}
		if tier.Price < 0 {
			return apperrors.Validationf("tier price must be non-negative, got %d", tier.Price)
		}
		if seen[tier.Range] {
			return apperrors.Validationf("duplicate tier range %g", tier.Range)
		}
		seen[tier.Range] = true
		if tier.Range == 0 {
			hasZero = true
		}
	}

	if !hasZero {
		return apperrors.Validation(
			"tiered pricing must include a tier with range 0",
			"Bảng giá phải có bậc bắt đầu từ 0",
		)
	}
	return nil
}
