package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jaswant2111058/Vahanwire-server/internal/domain"
	"github.com/jaswant2111058/Vahanwire-server/internal/repository"
)

// RideService manages the ride lifecycle from request through completion.
type RideService struct {
	rideRepo      repository.RideRepository
	bidRepo       repository.BidRepository
	userRepo      repository.UserRepository
	notifier      Notifier
	biddingWindow time.Duration
}

// NewRideService creates a new RideService. biddingWindow is how long a
// new ride accepts bids.
func NewRideService(
	rideRepo repository.RideRepository,
	bidRepo repository.BidRepository,
	userRepo repository.UserRepository,
	notifier Notifier,
	biddingWindow time.Duration,
) *RideService {
	return &RideService{
		rideRepo:      rideRepo,
		bidRepo:       bidRepo,
		userRepo:      userRepo,
		notifier:      notifier,
		biddingWindow: biddingWindow,
	}
}

// CreateRideRequest contains the parameters for requesting a ride.
type CreateRideRequest struct {
	UserID           string
	From             domain.Location
	To               domain.Location
	VehicleType      domain.VehicleType
	CustomerMaxPrice float64 // 0 derives a default from the base price
}

// CreateRide opens a new auction: the fare is estimated, the bidding
// window is set, and every connected driver is notified.
func (s *RideService) CreateRide(ctx context.Context, req CreateRideRequest) (*domain.Ride, error) {
	if req.UserID == "" {
		return nil, ErrInvalidUserID
	}
	if !validCoordinates(req.From.Lat, req.From.Lng) || req.From.Address == "" {
		return nil, ErrInvalidPickupLocation
	}
	if !validCoordinates(req.To.Lat, req.To.Lng) || req.To.Address == "" {
		return nil, ErrInvalidDestinationLocation
	}
	if req.CustomerMaxPrice < 0 {
		return nil, ErrInvalidPrice
	}

	if _, err := s.userRepo.GetByID(ctx, req.UserID); err != nil {
		return nil, err
	}

	distance := Haversine(req.From.Lat, req.From.Lng, req.To.Lat, req.To.Lng)
	duration := EstimateDuration(distance)
	basePrice := BasePrice(distance, duration, req.VehicleType)

	maxPrice := req.CustomerMaxPrice
	if maxPrice == 0 {
		maxPrice = DefaultMaxPrice(basePrice)
	}

	now := time.Now()
	ride := &domain.Ride{
		ID:                uuid.New().String(),
		UserID:            req.UserID,
		From:              req.From,
		To:                req.To,
		BasePrice:         basePrice,
		CustomerMaxPrice:  maxPrice,
		Distance:          distance,
		EstimatedDuration: duration,
		Status:            domain.RideStatusBidding,
		BiddingEndTime:    now.Add(s.biddingWindow),
		CreatedAt:         now,
	}

	if err := s.rideRepo.Create(ctx, ride); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		minPrice, advisedMax := PriceRange(basePrice)
		s.notifier.Broadcast(EventNewRide, map[string]any{
			"rideId":            ride.ID,
			"from":              ride.From,
			"to":                ride.To,
			"distance":          ride.Distance,
			"estimatedDuration": ride.EstimatedDuration,
			"basePrice":         ride.BasePrice,
			"priceRange":        map[string]float64{"min": minPrice, "max": advisedMax},
			"biddingEndTime":    ride.BiddingEndTime,
		})
	}

	return ride, nil
}

// AvailableRide is an open ride as seen by a bidding driver.
type AvailableRide struct {
	Ride     *domain.Ride
	BidCount int
	// HasBid reports whether the requesting driver already holds a bid
	// on this ride.
	HasBid bool
}

// GetAvailableRides lists rides whose bidding window is still open,
// annotated with the requesting driver's participation.
func (s *RideService) GetAvailableRides(ctx context.Context, driverID string) ([]*AvailableRide, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	rides, err := s.rideRepo.FindBidding(ctx, time.Now())
	if err != nil {
		return nil, err
	}

	available := make([]*AvailableRide, 0, len(rides))
	for _, ride := range rides {
		bids, err := s.bidRepo.GetByRideID(ctx, ride.ID)
		if err != nil {
			return nil, err
		}

		entry := &AvailableRide{Ride: ride, BidCount: len(bids)}
		for _, bid := range bids {
			if bid.DriverID == driverID {
				entry.HasBid = true
				break
			}
		}
		available = append(available, entry)
	}

	return available, nil
}

// RideDetail is a ride together with its full bid list.
type RideDetail struct {
	Ride *domain.Ride
	Bids []*domain.Bid
}

// GetRide retrieves a ride with all its bids.
func (s *RideService) GetRide(ctx context.Context, rideID string) (*RideDetail, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	bids, err := s.bidRepo.GetByRideID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	return &RideDetail{Ride: ride, Bids: bids}, nil
}

// GetUserRides lists a user's rides, optionally filtered by status.
func (s *RideService) GetUserRides(ctx context.Context, userID string, status domain.RideStatus) ([]*domain.Ride, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	return s.rideRepo.GetByUserID(ctx, userID, status)
}

// rideTransitions lists the allowed ride status moves outside of bid
// acceptance, which has its own transactional path.
var rideTransitions = map[domain.RideStatus][]domain.RideStatus{
	domain.RideStatusAccepted:   {domain.RideStatusInProgress, domain.RideStatusCancelled},
	domain.RideStatusInProgress: {domain.RideStatusCompleted, domain.RideStatusCancelled},
	domain.RideStatusBidding:    {domain.RideStatusCancelled},
	domain.RideStatusPending:    {domain.RideStatusCancelled},
}

// UpdateStatus moves a ride along its lifecycle and stamps trip start and
// end times.
func (s *RideService) UpdateStatus(ctx context.Context, rideID string, status domain.RideStatus) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if !transitionAllowed(ride.Status, status) {
		return nil, ErrInvalidRideStatus
	}

	now := time.Now()
	ride.Status = status
	switch status {
	case domain.RideStatusInProgress:
		ride.RideStartTime = now
	case domain.RideStatusCompleted:
		ride.RideEndTime = now
	}

	if err := s.rideRepo.Update(ctx, ride); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.Publish(ride.ID, EventRideStatusUpdated, map[string]any{
			"rideId": ride.ID,
			"status": ride.Status,
		})
	}

	return ride, nil
}

func transitionAllowed(from, to domain.RideStatus) bool {
	for _, allowed := range rideTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func validCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180 && !(lat == 0 && lng == 0)
}
