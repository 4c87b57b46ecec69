package repository

import (
	"context"
	"time"

	"github.com/jaswant2111058/Vahanwire-server/internal/domain"
)

// RideRepository defines the persistence operations for rides.
type RideRepository interface {
	// Create persists a new ride.
	Create(ctx context.Context, ride *domain.Ride) error

	// GetByID retrieves a ride by ID.
	GetByID(ctx context.Context, id string) (*domain.Ride, error)

	// GetByIDForUpdate retrieves a ride and holds it against concurrent
	// mutation until the surrounding transaction ends. Outside a
	// transaction it behaves like GetByID.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Ride, error)

	// FindBidding retrieves rides whose bidding window is still open
	// at the given time, most recent first.
	FindBidding(ctx context.Context, now time.Time) ([]*domain.Ride, error)

	// GetByUserID retrieves a user's rides, optionally filtered by status.
	GetByUserID(ctx context.Context, userID string, status domain.RideStatus) ([]*domain.Ride, error)

	// Update updates an existing ride.
	Update(ctx context.Context, ride *domain.Ride) error
}
