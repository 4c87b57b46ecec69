package repository

import (
	"context"

	"github.com/jaswant2111058/Vahanwire-server/internal/domain"
)

// BidRepository defines the persistence operations for bids.
type BidRepository interface {
	// Create persists a new bid.
	Create(ctx context.Context, bid *domain.Bid) error

	// GetByID retrieves a bid by ID.
	GetByID(ctx context.Context, id string) (*domain.Bid, error)

	// GetByRideAndDriver retrieves the single bid a driver holds on a ride.
	GetByRideAndDriver(ctx context.Context, rideID, driverID string) (*domain.Bid, error)

	// GetByRideID retrieves all bids for a ride, lowest amount first.
	GetByRideID(ctx context.Context, rideID string) ([]*domain.Bid, error)

	// GetByDriverID retrieves a driver's bids, newest first, optionally
	// filtered by status.
	GetByDriverID(ctx context.Context, driverID string, status domain.BidStatus) ([]*domain.Bid, error)

	// Update updates an existing bid.
	Update(ctx context.Context, bid *domain.Bid) error

	// ClearWinning unsets the winning flag on every bid of a ride.
	ClearWinning(ctx context.Context, rideID string) error

	// LowestActive retrieves the ACTIVE bid with the minimum amount for a
	// ride; ties break toward the earliest-created bid. Returns
	// ErrNotFound when no active bids remain.
	LowestActive(ctx context.Context, rideID string) (*domain.Bid, error)

	// SetWinning marks a single bid as winning.
	SetWinning(ctx context.Context, bidID string) error

	// RejectOthers marks every bid on the ride except the given one as
	// REJECTED. This is the terminal write for losing bids.
	RejectOthers(ctx context.Context, rideID, exceptBidID string) error
}
