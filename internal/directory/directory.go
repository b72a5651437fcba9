// Package directory exposes the read-mostly reference data the booking
// engine consumes: routes and their stops, vehicle categories, vehicles, and
// pricing configuration. Lookups go through a redis read-through cache;
// cache errors fall through to Postgres.
package directory

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/models"
)

const cacheTTL = 5 * time.Minute

// Store is the persistence surface the directory reads from.
type Store interface {
	GetRouteByID(ctx context.Context, id uuid.UUID) (*models.BusRoute, error)
	GetTripByID(ctx context.Context, id uuid.UUID) (*models.BusTrip, error)
	GetVehicleCategoryByID(ctx context.Context, id uuid.UUID) (*models.VehicleCategory, error)
	GetVehicleByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
	UpdateVehicleStatus(ctx context.Context, id uuid.UUID, status models.VehicleOperationStatus) error
	GetServiceConfigByType(ctx context.Context, serviceType string) (*models.ServiceConfig, error)
	GetVehiclePricing(ctx context.Context, categoryID, configID uuid.UUID) (*models.VehiclePricing, error)
}

// Directory is the cached reference-data reader. A nil redis client disables
// caching entirely.
type Directory struct {
	store Store
	rdb   *redis.Client
}

// New creates a Directory.
func New(store Store, rdb *redis.Client) *Directory {
	return &Directory{store: store, rdb: rdb}
}

func cached[T any](ctx context.Context, d *Directory, key string, load func() (*T, error)) (*T, error) {
	if d.rdb != nil {
		if raw, err := d.rdb.Get(ctx, key).Result(); err == nil {
			var v T
			if err := json.Unmarshal([]byte(raw), &v); err == nil {
				return &v, nil
			}
		}
	}

	v, err := load()
	if err != nil {
		return nil, err
	}

	if d.rdb != nil {
		if b, err := json.Marshal(v); err == nil {
			if err := d.rdb.Set(ctx, key, b, cacheTTL).Err(); err != nil {
				log.Printf("directory: redis set error for %s: %v", key, err)
			}
		}
	}
	return v, nil
}

// GetRoute returns a route with its ordered stops.
func (d *Directory) GetRoute(ctx context.Context, id uuid.UUID) (*models.BusRoute, error) {
	return cached(ctx, d, "route:"+id.String(), func() (*models.BusRoute, error) {
		return d.store.GetRouteByID(ctx, id)
	})
}

// GetTrip returns a trip.
func (d *Directory) GetTrip(ctx context.Context, id uuid.UUID) (*models.BusTrip, error) {
	return cached(ctx, d, "trip:"+id.String(), func() (*models.BusTrip, error) {
		return d.store.GetTripByID(ctx, id)
	})
}

// GetVehicleCategory returns a vehicle category.
func (d *Directory) GetVehicleCategory(ctx context.Context, id uuid.UUID) (*models.VehicleCategory, error) {
	return cached(ctx, d, "vehicle_category:"+id.String(), func() (*models.VehicleCategory, error) {
		return d.store.GetVehicleCategoryByID(ctx, id)
	})
}

// GetVehicle returns a vehicle. Operation status is mutable, so vehicles are
// never cached.
func (d *Directory) GetVehicle(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	return d.store.GetVehicleByID(ctx, id)
}

// UpdateVehicleStatus sets a vehicle's operation status.
func (d *Directory) UpdateVehicleStatus(ctx context.Context, id uuid.UUID, status models.VehicleOperationStatus) error {
	return d.store.UpdateVehicleStatus(ctx, id, status)
}

// GetServiceConfig returns the pricing config for a service type.
func (d *Directory) GetServiceConfig(ctx context.Context, serviceType string) (*models.ServiceConfig, error) {
	return cached(ctx, d, "service_config:"+serviceType, func() (*models.ServiceConfig, error) {
		return d.store.GetServiceConfigByType(ctx, serviceType)
	})
}

// GetVehiclePricing returns the tiered price table for a (vehicle category,
// service config) pair.
func (d *Directory) GetVehiclePricing(ctx context.Context, categoryID, configID uuid.UUID) (*models.VehiclePricing, error) {
	return cached(ctx, d, "vehicle_pricing:"+categoryID.String()+":"+configID.String(), func() (*models.VehiclePricing, error) {
		return d.store.GetVehiclePricing(ctx, categoryID, configID)
	})
}

// InvalidatePricing drops cached pricing entries after an admin update.
func (d *Directory) InvalidatePricing(ctx context.Context, serviceType string, categoryID, configID uuid.UUID) {
	if d.rdb == nil {
		return
	}
	keys := []string{
		"service_config:" + serviceType,
		"vehicle_pricing:" + categoryID.String() + ":" + configID.String(),
	}
	if err := d.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Printf("directory: redis del error: %v", err)
	}
}

// TripCapacity resolves the seat capacity for a trip from the vehicle
// category assigned to the trip's route.
func (d *Directory) TripCapacity(ctx context.Context, tripID uuid.UUID) (int, error) {
	trip, err := d.GetTrip(ctx, tripID)
	if err != nil {
		return 0, err
	}
	route, err := d.GetRoute(ctx, trip.BusRouteID)
	if err != nil {
		return 0, err
	}
	category, err := d.GetVehicleCategory(ctx, route.VehicleCategoryID)
	if err != nil {
		return 0, err
	}
	return category.NumberOfSeats, nil
}
