package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/apperrors"
	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/database"
	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/fare"
	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/models"
)

// PricingStore is the persistence surface the pricing service needs.
type PricingStore interface {
	UpsertServiceConfig(ctx context.Context, cfg *models.ServiceConfig) error
	GetServiceConfigByType(ctx context.Context, serviceType string) (*models.ServiceConfig, error)
	CreateVehiclePricing(ctx context.Context, vp *models.VehiclePricing) error
	GetVehiclePricing(ctx context.Context, categoryID, configID uuid.UUID) (*models.VehiclePricing, error)
}

// CacheInvalidator drops cached pricing entries after admin writes.
type CacheInvalidator interface {
	InvalidatePricing(ctx context.Context, serviceType string, categoryID, configID uuid.UUID)
}

// pricingServiceImpl implements PricingService
type pricingServiceImpl struct {
	store PricingStore
	cache CacheInvalidator
}

// NewPricingService creates a new PricingService. cache may be nil.
func NewPricingService(store PricingStore, cache CacheInvalidator) PricingService {
	return &pricingServiceImpl{store: store, cache: cache}
}

func (s *pricingServiceImpl) UpsertServiceConfig(ctx context.Context, cfg *models.ServiceConfig) (*models.ServiceConfig, error) {
	if cfg.ServiceType == "" {
		return nil, apperrors.Validationf("service type is required")
	}
	if cfg.BaseUnit <= 0 {
		return nil, apperrors.Validation("base unit must be positive", "Đơn vị cơ sở phải lớn hơn 0")
	}

	if err := s.store.UpsertServiceConfig(ctx, cfg); err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.InvalidatePricing(ctx, cfg.ServiceType, uuid.Nil, cfg.ID)
	}
	return cfg, nil
}

func (s *pricingServiceImpl) GetServiceConfig(ctx context.Context, serviceType string) (*models.ServiceConfig, error) {
	cfg, err := s.store.GetServiceConfigByType(ctx, serviceType)
	if err != nil {
		return nil, mapLookupErr(err, "service config")
	}
	return cfg, nil
}

func (s *pricingServiceImpl) CreateVehiclePricing(ctx context.Context, vp *models.VehiclePricing) (*models.VehiclePricing, error) {
	if vp.VehicleCategoryID == uuid.Nil || vp.ServiceConfigID == uuid.Nil {
		return nil, apperrors.Validationf("vehicle category and service config are required")
	}
	// Tier sets without a range-0 entry would silently under-price the
	// remainder below the lowest tier; they are rejected here, at creation.
	if err := fare.ValidateTiers(vp.TieredPricing); err != nil {
		return nil, err
	}

	if err := s.store.CreateVehiclePricing(ctx, vp); err != nil {
		if errors.Is(err, database.ErrDuplicatePricing) {
			return nil, apperrors.Conflict(
				"pricing already exists for this vehicle category and service config",
				"Đã tồn tại bảng giá cho loại xe và cấu hình dịch vụ này",
			)
		}
		return nil, err
	}
	if s.cache != nil {
		s.cache.InvalidatePricing(ctx, "", vp.VehicleCategoryID, vp.ServiceConfigID)
	}
	return vp, nil
}

func (s *pricingServiceImpl) GetVehiclePricing(ctx context.Context, categoryID, configID uuid.UUID) (*models.VehiclePricing, error) {
	vp, err := s.store.GetVehiclePricing(ctx, categoryID, configID)
	if err != nil {
		return nil, mapLookupErr(err, "vehicle pricing")
	}
	return vp, nil
}
