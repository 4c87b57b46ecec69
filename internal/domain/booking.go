package domain

import "time"

// BookingStatus represents the current status of a booking.
type BookingStatus string

const (
	BookingStatusConfirmed  BookingStatus = "CONFIRMED"
	BookingStatusInProgress BookingStatus = "IN_PROGRESS"
	BookingStatusCompleted  BookingStatus = "COMPLETED"
	BookingStatusCancelled  BookingStatus = "CANCELLED"
)

// PaymentStatus represents the payment state of a booking.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

// Booking is the terminal artifact of an auction: created exactly once
// when the rider accepts a bid, then only transitioned, never deleted.
type Booking struct {
	ID                 string
	RideID             string
	UserID             string
	DriverID           string
	BidID              string
	FinalAmount        float64
	Status             BookingStatus
	PaymentStatus      PaymentStatus
	DriverRating       float64 // user's rating of the driver, 0 = not rated
	UserRating         float64 // driver's rating of the user, 0 = not rated
	DriverFeedback     string
	UserFeedback       string
	CancellationReason string
	StartTime          time.Time
	EndTime            time.Time
	CreatedAt          time.Time
}
