package domain

import "time"

// RideStatus represents the current status of a ride.
type RideStatus string

const (
	RideStatusPending    RideStatus = "PENDING"
	RideStatusBidding    RideStatus = "BIDDING"
	RideStatusAccepted   RideStatus = "ACCEPTED"
	RideStatusInProgress RideStatus = "IN_PROGRESS"
	RideStatusCompleted  RideStatus = "COMPLETED"
	RideStatusCancelled  RideStatus = "CANCELLED"
)

// Location is an address with coordinates.
type Location struct {
	Address string
	Lat     float64
	Lng     float64
}

// Ride represents a trip request that drivers bid on.
type Ride struct {
	ID                string
	UserID            string
	From              Location
	To                Location
	BasePrice         float64
	CustomerMaxPrice  float64
	Distance          float64 // kilometers
	EstimatedDuration int     // minutes
	Status            RideStatus
	BiddingEndTime    time.Time
	AcceptedDriverID  string  // set only when Status reaches ACCEPTED
	FinalPrice        float64 // set together with AcceptedDriverID
	RideStartTime     time.Time
	RideEndTime       time.Time
	CreatedAt         time.Time
}

// BiddingOpen reports whether the ride is still accepting bids at the given time.
func (r *Ride) BiddingOpen(now time.Time) bool {
	return r.Status == RideStatusBidding && !now.After(r.BiddingEndTime)
}
