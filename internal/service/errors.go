package service

import "errors"

var (
	// ErrInvalidUserID is returned when a user ID is empty.
	ErrInvalidUserID = errors.New("invalid user id")

	// ErrInvalidRideID is returned when a ride ID is empty.
	ErrInvalidRideID = errors.New("invalid ride id")

	// ErrInvalidDriverID is returned when a driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidBidID is returned when a bid ID is empty.
	ErrInvalidBidID = errors.New("invalid bid id")

	// ErrInvalidBookingID is returned when a booking ID is empty.
	ErrInvalidBookingID = errors.New("invalid booking id")

	// ErrInvalidPickupLocation is returned when pickup coordinates are invalid.
	ErrInvalidPickupLocation = errors.New("invalid pickup location")

	// ErrInvalidDestinationLocation is returned when destination coordinates are invalid.
	ErrInvalidDestinationLocation = errors.New("invalid destination location")

	// ErrInvalidBidAmount is returned when a bid amount is negative.
	ErrInvalidBidAmount = errors.New("bid amount cannot be negative")

	// ErrBidExceedsMaxPrice is returned when a bid exceeds the rider's maximum price.
	ErrBidExceedsMaxPrice = errors.New("bid amount exceeds customer maximum price")

	// ErrBiddingClosed is returned when the ride is not accepting bids.
	ErrBiddingClosed = errors.New("bidding is not active for this ride")

	// ErrBiddingExpired is returned when the bidding window has passed.
	ErrBiddingExpired = errors.New("bidding time has expired")

	// ErrDriverUnavailable is returned when the driver is missing, inactive, or not online.
	ErrDriverUnavailable = errors.New("driver not available for bidding")

	// ErrNotRideOwner is returned when someone other than the rider tries to accept a bid.
	ErrNotRideOwner = errors.New("not authorized to accept this bid")

	// ErrInvalidRating is returned when a rating is outside 1-5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrInvalidRatedBy is returned when the rating party is neither user nor driver.
	ErrInvalidRatedBy = errors.New("rated by must be user or driver")

	// ErrBookingNotCompleted is returned when rating a booking that has not completed.
	ErrBookingNotCompleted = errors.New("can only rate completed bookings")

	// ErrBookingCompleted is returned when cancelling an already completed booking.
	ErrBookingCompleted = errors.New("cannot cancel completed booking")

	// ErrInvalidRideStatus is returned on an invalid ride status transition.
	ErrInvalidRideStatus = errors.New("invalid ride status")

	// ErrInvalidBookingStatus is returned on an invalid booking status transition.
	ErrInvalidBookingStatus = errors.New("invalid booking status")

	// ErrInvalidDriverStatus is returned when a driver status value is unknown.
	ErrInvalidDriverStatus = errors.New("invalid driver status")

	// ErrInvalidPrice is returned when a price is negative.
	ErrInvalidPrice = errors.New("price cannot be negative")
)
