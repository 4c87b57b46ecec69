package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jaswant2111058/Vahanwire-server/internal/domain"
	"github.com/jaswant2111058/Vahanwire-server/internal/redis"
	"github.com/jaswant2111058/Vahanwire-server/internal/repository"
)

// ErrPhoneTaken is returned when registering with a phone number already
// in use.
var ErrPhoneTaken = errors.New("phone number already registered")

// DriverService manages driver registration, presence, and discovery.
type DriverService struct {
	driverRepo    repository.DriverRepository
	locationStore redis.LocationStoreInterface
	cacheStore    *redis.CacheStore
	notifier      Notifier
}

// NewDriverService creates a new DriverService.
func NewDriverService(
	driverRepo repository.DriverRepository,
	locationStore redis.LocationStoreInterface,
	cacheStore *redis.CacheStore,
	notifier Notifier,
) *DriverService {
	return &DriverService{
		driverRepo:    driverRepo,
		locationStore: locationStore,
		cacheStore:    cacheStore,
		notifier:      notifier,
	}
}

// RegisterDriverRequest contains the parameters for registering a driver.
type RegisterDriverRequest struct {
	Name          string
	Email         string
	Phone         string
	LicenseNumber string
	Vehicle       domain.Vehicle
}

// Register creates a new driver account. Drivers start OFFLINE and go
// online explicitly.
func (s *DriverService) Register(ctx context.Context, req RegisterDriverRequest) (*domain.Driver, error) {
	if req.Name == "" || req.Phone == "" || req.LicenseNumber == "" {
		return nil, errors.New("name, phone, and license number are required")
	}

	if _, err := s.driverRepo.GetByPhone(ctx, req.Phone); err == nil {
		return nil, ErrPhoneTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	driver := &domain.Driver{
		ID:            uuid.New().String(),
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		LicenseNumber: req.LicenseNumber,
		Vehicle:       req.Vehicle,
		Status:        domain.DriverStatusOffline,
		IsActive:      true,
	}

	if err := s.driverRepo.Create(ctx, driver); err != nil {
		return nil, err
	}
	return driver, nil
}

// GetDriver retrieves a driver, serving from cache when possible.
func (s *DriverService) GetDriver(ctx context.Context, driverID string) (*domain.Driver, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	if s.cacheStore != nil {
		if cached, err := s.cacheStore.GetDriver(ctx, driverID); err == nil && cached != nil {
			return &domain.Driver{
				ID:    cached.ID,
				Name:  cached.Name,
				Phone: cached.Phone,
				Vehicle: domain.Vehicle{
					Model:  cached.VehicleModel,
					Number: cached.VehicleNumber,
					Type:   domain.VehicleType(cached.VehicleType),
				},
				Rating:   cached.Rating,
				Status:   domain.DriverStatus(cached.Status),
				IsActive: true,
			}, nil
		}
	}

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.SetDriver(ctx, cachedDriver(driver))
	}

	return driver, nil
}

// UpdateStatusRequest contains the parameters for a driver presence update.
type UpdateStatusRequest struct {
	DriverID string
	Status   domain.DriverStatus
	// Lat and Lng are stored when the driver goes ONLINE. Both zero
	// means no location was reported.
	Lat float64
	Lng float64
}

// UpdateStatus updates a driver's presence. Going online registers the
// driver's location for discovery; going offline or busy removes it.
func (s *DriverService) UpdateStatus(ctx context.Context, req UpdateStatusRequest) (*domain.Driver, error) {
	if req.DriverID == "" {
		return nil, ErrInvalidDriverID
	}

	switch req.Status {
	case domain.DriverStatusOnline, domain.DriverStatusOffline, domain.DriverStatusBusy:
	default:
		return nil, ErrInvalidDriverStatus
	}

	driver, err := s.driverRepo.GetByID(ctx, req.DriverID)
	if err != nil {
		return nil, err
	}

	if err := s.driverRepo.UpdateStatus(ctx, req.DriverID, req.Status); err != nil {
		return nil, err
	}
	driver.Status = req.Status

	if s.locationStore != nil {
		if req.Status == domain.DriverStatusOnline && validCoordinates(req.Lat, req.Lng) {
			_ = s.locationStore.UpdateLocation(ctx, req.DriverID, req.Lat, req.Lng)
		} else if req.Status != domain.DriverStatusOnline {
			_ = s.locationStore.RemoveLocation(ctx, req.DriverID)
		}
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.InvalidateDriver(ctx, req.DriverID)
		if req.Status == domain.DriverStatusOnline {
			_ = s.cacheStore.AddAvailableDriver(ctx, req.DriverID)
		} else {
			_ = s.cacheStore.RemoveAvailableDriver(ctx, req.DriverID)
		}
	}

	if s.notifier != nil {
		s.notifier.Broadcast(EventDriverStatusUpdated, map[string]any{
			"driverId": driver.ID,
			"status":   driver.Status,
		})
	}

	return driver, nil
}

// NearbyDriver is a discoverable driver with their distance from the
// query point.
type NearbyDriver struct {
	Driver     *domain.Driver
	Lat        float64
	Lng        float64
	DistanceKm float64
}

// NearbyDrivers finds online, active drivers within radiusKm of a point,
// closest first.
func (s *DriverService) NearbyDrivers(ctx context.Context, lat, lng, radiusKm float64) ([]*NearbyDriver, error) {
	if !validCoordinates(lat, lng) {
		return nil, ErrInvalidPickupLocation
	}
	if radiusKm <= 0 {
		radiusKm = 5
	}

	locations, err := s.locationStore.FindNearbyDrivers(ctx, lat, lng, radiusKm)
	if err != nil {
		return nil, err
	}

	nearby := make([]*NearbyDriver, 0, len(locations))
	for _, loc := range locations {
		driver, err := s.GetDriver(ctx, loc.DriverID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if driver.Status != domain.DriverStatusOnline || !driver.IsActive {
			continue
		}

		nearby = append(nearby, &NearbyDriver{
			Driver:     driver,
			Lat:        loc.Lat,
			Lng:        loc.Lng,
			DistanceKm: Haversine(lat, lng, loc.Lat, loc.Lng),
		})
	}

	return nearby, nil
}

// ListDrivers retrieves drivers matching the filter.
func (s *DriverService) ListDrivers(ctx context.Context, filter repository.DriverFilter) ([]*domain.Driver, error) {
	return s.driverRepo.Find(ctx, filter)
}

func cachedDriver(d *domain.Driver) *redis.CachedDriver {
	return &redis.CachedDriver{
		ID:            d.ID,
		Name:          d.Name,
		Phone:         d.Phone,
		Status:        string(d.Status),
		VehicleModel:  d.Vehicle.Model,
		VehicleNumber: d.Vehicle.Number,
		VehicleType:   string(d.Vehicle.Type),
		Rating:        d.Rating,
	}
}
