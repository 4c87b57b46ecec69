package domain

import "time"

// BidStatus represents the current status of a bid.
type BidStatus string

const (
	BidStatusActive   BidStatus = "ACTIVE"
	BidStatusAccepted BidStatus = "ACCEPTED"
	BidStatusRejected BidStatus = "REJECTED"
	BidStatusExpired  BidStatus = "EXPIRED"
)

// Bid is a driver's price offer on a ride.
//
// A driver holds at most one bid per ride; re-bidding overwrites the
// existing record. Within a ride's bid set at most one bid is winning,
// and it is always the lowest-amount ACTIVE bid.
type Bid struct {
	ID               string
	RideID           string
	DriverID         string
	BidAmount        float64
	Message          string
	EstimatedArrival int // minutes until pickup
	Status           BidStatus
	IsWinning        bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
