package repository

import (
	"context"

	"github.com/jaswant2111058/Vahanwire-server/internal/domain"
)

// DriverFilter narrows driver listings.
type DriverFilter struct {
	Status   domain.DriverStatus // empty matches any status
	IsActive *bool               // nil matches both active and inactive
}

// DriverRepository defines the persistence operations for drivers.
type DriverRepository interface {
	// Create adds a new driver.
	Create(ctx context.Context, driver *domain.Driver) error

	// GetByID retrieves a driver by ID.
	GetByID(ctx context.Context, id string) (*domain.Driver, error)

	// GetByPhone retrieves a driver by phone number.
	GetByPhone(ctx context.Context, phone string) (*domain.Driver, error)

	// Find retrieves drivers matching the filter, newest first.
	Find(ctx context.Context, filter DriverFilter) ([]*domain.Driver, error)

	// UpdateStatus updates the status of a driver.
	UpdateStatus(ctx context.Context, id string, status domain.DriverStatus) error

	// UpdateRating stores a recomputed running-average rating.
	UpdateRating(ctx context.Context, id string, rating float64) error

	// IncrementTotalRides bumps the completed-ride counter.
	IncrementTotalRides(ctx context.Context, id string) error
}
