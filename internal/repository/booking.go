package repository

import (
	"context"

	"github.com/jaswant2111058/Vahanwire-server/internal/domain"
)

// BookingFilter narrows booking listings.
type BookingFilter struct {
	Status        domain.BookingStatus // empty matches any status
	PaymentStatus domain.PaymentStatus // empty matches any payment status
}

// BookingRepository defines the persistence operations for bookings.
type BookingRepository interface {
	// Create persists a new booking.
	Create(ctx context.Context, booking *domain.Booking) error

	// GetByID retrieves a booking by ID.
	GetByID(ctx context.Context, id string) (*domain.Booking, error)

	// GetByRideID retrieves the booking created for a ride.
	GetByRideID(ctx context.Context, rideID string) (*domain.Booking, error)

	// Find retrieves bookings matching the filter, newest first.
	Find(ctx context.Context, filter BookingFilter) ([]*domain.Booking, error)

	// GetByUserID retrieves a user's bookings, newest first.
	GetByUserID(ctx context.Context, userID string, status domain.BookingStatus) ([]*domain.Booking, error)

	// GetByDriverID retrieves a driver's bookings, newest first.
	GetByDriverID(ctx context.Context, driverID string, status domain.BookingStatus) ([]*domain.Booking, error)

	// Update updates an existing booking.
	Update(ctx context.Context, booking *domain.Booking) error

	// AverageDriverRating computes the mean of all non-zero driver ratings
	// across a driver's bookings. Returns ErrNotFound when the driver has
	// never been rated.
	AverageDriverRating(ctx context.Context, driverID string) (float64, error)
}
