package service

import (
	"context"
	"errors"
	"time"

	"github.com/jaswant2111058/Vahanwire-server/internal/domain"
	"github.com/jaswant2111058/Vahanwire-server/internal/repository"
)

// BookingService manages bookings after a bid has been accepted.
type BookingService struct {
	txManager   repository.TxManager
	bookingRepo repository.BookingRepository
	rideRepo    repository.RideRepository
	driverRepo  repository.DriverRepository
	notifier    Notifier
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	txManager repository.TxManager,
	bookingRepo repository.BookingRepository,
	rideRepo repository.RideRepository,
	driverRepo repository.DriverRepository,
	notifier Notifier,
) *BookingService {
	return &BookingService{
		txManager:   txManager,
		bookingRepo: bookingRepo,
		rideRepo:    rideRepo,
		driverRepo:  driverRepo,
		notifier:    notifier,
	}
}

// GetBooking retrieves a booking by ID.
func (s *BookingService) GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}
	return s.bookingRepo.GetByID(ctx, bookingID)
}

// List retrieves bookings matching the filter, newest first.
func (s *BookingService) List(ctx context.Context, filter repository.BookingFilter) ([]*domain.Booking, error) {
	return s.bookingRepo.Find(ctx, filter)
}

// GetUserBookings lists a user's bookings, optionally filtered by status.
func (s *BookingService) GetUserBookings(ctx context.Context, userID string, status domain.BookingStatus) ([]*domain.Booking, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	return s.bookingRepo.GetByUserID(ctx, userID, status)
}

// GetDriverBookings lists a driver's bookings, optionally filtered by status.
func (s *BookingService) GetDriverBookings(ctx context.Context, driverID string, status domain.BookingStatus) ([]*domain.Booking, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	return s.bookingRepo.GetByDriverID(ctx, driverID, status)
}

var bookingTransitions = map[domain.BookingStatus][]domain.BookingStatus{
	domain.BookingStatusConfirmed:  {domain.BookingStatusInProgress, domain.BookingStatusCancelled},
	domain.BookingStatusInProgress: {domain.BookingStatusCompleted, domain.BookingStatusCancelled},
}

// UpdateStatus moves a booking along its lifecycle. Starting the trip
// also starts the ride; completing it closes the ride, frees the driver,
// and credits the completed-ride counter, all in one transaction.
func (s *BookingService) UpdateStatus(ctx context.Context, bookingID string, status domain.BookingStatus) (*domain.Booking, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if !bookingTransitionAllowed(booking.Status, status) {
		return nil, ErrInvalidBookingStatus
	}

	now := time.Now()

	err = s.txManager.WithinTx(ctx, func(repos repository.Repositories) error {
		ride, err := repos.Rides.GetByIDForUpdate(ctx, booking.RideID)
		if err != nil {
			return err
		}

		booking.Status = status
		switch status {
		case domain.BookingStatusInProgress:
			booking.StartTime = now
			ride.Status = domain.RideStatusInProgress
			ride.RideStartTime = now

		case domain.BookingStatusCompleted:
			booking.EndTime = now
			booking.PaymentStatus = domain.PaymentStatusCompleted
			ride.Status = domain.RideStatusCompleted
			ride.RideEndTime = now

			if err := repos.Drivers.UpdateStatus(ctx, booking.DriverID, domain.DriverStatusOnline); err != nil {
				return err
			}
			if err := repos.Drivers.IncrementTotalRides(ctx, booking.DriverID); err != nil {
				return err
			}
		}

		if err := repos.Rides.Update(ctx, ride); err != nil {
			return err
		}
		return repos.Bookings.Update(ctx, booking)
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.Publish(booking.RideID, EventBookingStatusUpdated, map[string]any{
			"bookingId": booking.ID,
			"rideId":    booking.RideID,
			"status":    booking.Status,
		})
	}

	return booking, nil
}

// Cancel cancels a booking. Completed bookings cannot be cancelled; the
// driver is returned to the online pool and the ride is closed.
func (s *BookingService) Cancel(ctx context.Context, bookingID, reason string) (*domain.Booking, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.Status == domain.BookingStatusCompleted {
		return nil, ErrBookingCompleted
	}
	if booking.Status == domain.BookingStatusCancelled {
		return booking, nil
	}

	err = s.txManager.WithinTx(ctx, func(repos repository.Repositories) error {
		ride, err := repos.Rides.GetByIDForUpdate(ctx, booking.RideID)
		if err != nil {
			return err
		}

		booking.Status = domain.BookingStatusCancelled
		booking.CancellationReason = reason
		ride.Status = domain.RideStatusCancelled

		if err := repos.Drivers.UpdateStatus(ctx, booking.DriverID, domain.DriverStatusOnline); err != nil {
			return err
		}
		if err := repos.Rides.Update(ctx, ride); err != nil {
			return err
		}
		return repos.Bookings.Update(ctx, booking)
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.Publish(booking.RideID, EventBookingCancelled, map[string]any{
			"bookingId": booking.ID,
			"rideId":    booking.RideID,
			"reason":    reason,
		})
	}

	return booking, nil
}

// RatedBy identifies which party is submitting a rating.
type RatedBy string

const (
	RatedByUser   RatedBy = "user"
	RatedByDriver RatedBy = "driver"
)

// Rate records a 1-5 rating on a completed booking. Re-rating the same
// booking overwrites the previous value. A user's rating of the driver
// also refreshes the driver's running average.
func (s *BookingService) Rate(ctx context.Context, bookingID string, ratedBy RatedBy, rating float64, feedback string) (*domain.Booking, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}
	if ratedBy != RatedByUser && ratedBy != RatedByDriver {
		return nil, ErrInvalidRatedBy
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != domain.BookingStatusCompleted {
		return nil, ErrBookingNotCompleted
	}

	switch ratedBy {
	case RatedByUser:
		booking.DriverRating = rating
		booking.DriverFeedback = feedback
	case RatedByDriver:
		booking.UserRating = rating
		booking.UserFeedback = feedback
	}

	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, err
	}

	if ratedBy == RatedByUser {
		avg, err := s.bookingRepo.AverageDriverRating(ctx, booking.DriverID)
		switch {
		case err == nil:
			if err := s.driverRepo.UpdateRating(ctx, booking.DriverID, avg); err != nil {
				return nil, err
			}
		case !errors.Is(err, repository.ErrNotFound):
			return nil, err
		}
	}

	return booking, nil
}

func bookingTransitionAllowed(from, to domain.BookingStatus) bool {
	for _, allowed := range bookingTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
