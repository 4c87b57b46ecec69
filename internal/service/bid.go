package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jaswant2111058/Vahanwire-server/internal/domain"
	"github.com/jaswant2111058/Vahanwire-server/internal/redis"
	"github.com/jaswant2111058/Vahanwire-server/internal/repository"
)

// driverLockTTL bounds how long a driver stays locked during acceptance
// if the process dies before the lock is released.
const driverLockTTL = 10 * time.Second

// BidService runs the auction for each ride: it admits and revises bids,
// keeps the winning flag on the lowest active bid, and converts the
// rider's chosen bid into a booking.
type BidService struct {
	txManager  repository.TxManager
	rideRepo   repository.RideRepository
	bidRepo    repository.BidRepository
	driverRepo repository.DriverRepository
	userRepo   repository.UserRepository
	lockStore  redis.LockStoreInterface
	notifier   Notifier
}

// NewBidService creates a new BidService.
func NewBidService(
	txManager repository.TxManager,
	rideRepo repository.RideRepository,
	bidRepo repository.BidRepository,
	driverRepo repository.DriverRepository,
	userRepo repository.UserRepository,
	lockStore redis.LockStoreInterface,
	notifier Notifier,
) *BidService {
	return &BidService{
		txManager:  txManager,
		rideRepo:   rideRepo,
		bidRepo:    bidRepo,
		driverRepo: driverRepo,
		userRepo:   userRepo,
		lockStore:  lockStore,
		notifier:   notifier,
	}
}

// PlaceBidRequest contains the parameters for placing or revising a bid.
type PlaceBidRequest struct {
	RideID           string
	DriverID         string
	BidAmount        float64
	Message          string
	EstimatedArrival int // minutes
}

// BidView is a bid enriched with the bidding driver's public profile.
type BidView struct {
	ID               string
	RideID           string
	DriverID         string
	DriverName       string
	Vehicle          domain.Vehicle
	DriverRating     float64
	BidAmount        float64
	Message          string
	EstimatedArrival int
	Status           domain.BidStatus
	IsWinning        bool
	CreatedAt        time.Time
}

// PlaceBidResponse contains the result of placing a bid.
type PlaceBidResponse struct {
	Bid *BidView
	// Created is false when an existing bid was revised in place.
	Created bool
}

// PlaceBid admits a driver's bid on a ride, or revises the driver's
// existing bid on it. The winning bid for the ride is recomputed in the
// same transaction, so the returned view reflects post-resolution state.
func (s *BidService) PlaceBid(ctx context.Context, req PlaceBidRequest) (*PlaceBidResponse, error) {
	if req.RideID == "" {
		return nil, ErrInvalidRideID
	}
	if req.DriverID == "" {
		return nil, ErrInvalidDriverID
	}
	if req.BidAmount < 0 {
		return nil, ErrInvalidBidAmount
	}

	now := time.Now()

	ride, err := s.rideRepo.GetByID(ctx, req.RideID)
	if err != nil {
		return nil, err
	}

	if ride.Status != domain.RideStatusBidding {
		return nil, ErrBiddingClosed
	}
	if now.After(ride.BiddingEndTime) {
		return nil, ErrBiddingExpired
	}
	if req.BidAmount > ride.CustomerMaxPrice {
		return nil, ErrBidExceedsMaxPrice
	}

	driver, err := s.driverRepo.GetByID(ctx, req.DriverID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDriverUnavailable
		}
		return nil, err
	}
	if !driver.IsActive || driver.Status != domain.DriverStatusOnline {
		return nil, ErrDriverUnavailable
	}

	var bid *domain.Bid
	var created bool

	err = s.txManager.WithinTx(ctx, func(repos repository.Repositories) error {
		// The ride row lock serializes every auction mutation for this
		// ride: admissions for the same ride run one at a time and can
		// never interleave with acceptance.
		lockedRide, err := repos.Rides.GetByIDForUpdate(ctx, req.RideID)
		if err != nil {
			return err
		}
		if lockedRide.Status != domain.RideStatusBidding {
			return ErrBiddingClosed
		}
		if now.After(lockedRide.BiddingEndTime) {
			return ErrBiddingExpired
		}

		existing, err := repos.Bids.GetByRideAndDriver(ctx, req.RideID, req.DriverID)
		switch {
		case err == nil:
			// Revise the driver's offer rather than adding a second one.
			existing.BidAmount = req.BidAmount
			existing.Message = req.Message
			existing.EstimatedArrival = req.EstimatedArrival
			existing.UpdatedAt = now
			if err := repos.Bids.Update(ctx, existing); err != nil {
				return err
			}
			bid = existing

		case errors.Is(err, repository.ErrNotFound):
			bid = &domain.Bid{
				ID:               uuid.New().String(),
				RideID:           req.RideID,
				DriverID:         req.DriverID,
				BidAmount:        req.BidAmount,
				Message:          req.Message,
				EstimatedArrival: req.EstimatedArrival,
				Status:           domain.BidStatusActive,
				CreatedAt:        now,
				UpdatedAt:        now,
			}
			if err := repos.Bids.Create(ctx, bid); err != nil {
				return err
			}
			created = true

		default:
			return err
		}

		winnerID, err := resolveWinner(ctx, repos.Bids, req.RideID)
		if err != nil {
			return err
		}
		bid.IsWinning = winnerID == bid.ID

		return nil
	})
	if err != nil {
		return nil, err
	}

	view := newBidView(bid, driver)
	s.notifyBidPlaced(ride, view, created)

	return &PlaceBidResponse{Bid: view, Created: created}, nil
}

// resolveWinner re-derives the winning bid for a ride: the winning flag
// is cleared everywhere, then set on the lowest-amount active bid. Must
// be called while the ride row is held, so readers never observe two
// winners or a missing winner while active bids exist. Returns the
// winning bid ID, or "" when no active bids remain.
func resolveWinner(ctx context.Context, bids repository.BidRepository, rideID string) (string, error) {
	if err := bids.ClearWinning(ctx, rideID); err != nil {
		return "", err
	}

	lowest, err := bids.LowestActive(ctx, rideID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil
		}
		return "", err
	}

	if err := bids.SetWinning(ctx, lowest.ID); err != nil {
		return "", err
	}

	return lowest.ID, nil
}

// AcceptBidRequest contains the parameters for accepting a bid.
type AcceptBidRequest struct {
	BidID  string
	UserID string
}

// AcceptBidResponse contains the booking created by acceptance along with
// the accepted driver's contact details.
type AcceptBidResponse struct {
	Booking *domain.Booking
	Driver  *domain.Driver
}

// AcceptBid is the rider's irreversible choice of one bid. In a single
// transaction the chosen bid is accepted, every other bid on the ride is
// rejected, the ride is closed with the final price, the driver goes
// busy, and exactly one booking is created.
func (s *BidService) AcceptBid(ctx context.Context, req AcceptBidRequest) (*AcceptBidResponse, error) {
	if req.BidID == "" {
		return nil, ErrInvalidBidID
	}
	if req.UserID == "" {
		return nil, ErrInvalidUserID
	}

	bid, err := s.bidRepo.GetByID(ctx, req.BidID)
	if err != nil {
		return nil, err
	}

	ride, err := s.rideRepo.GetByID(ctx, bid.RideID)
	if err != nil {
		return nil, err
	}

	if ride.UserID != req.UserID {
		return nil, ErrNotRideOwner
	}
	if ride.Status != domain.RideStatusBidding {
		return nil, ErrBiddingClosed
	}

	driver, err := s.driverRepo.GetByID(ctx, bid.DriverID)
	if err != nil {
		return nil, err
	}

	// Hold the driver so two auctions cannot book them at once. On
	// success the lock expires via TTL.
	locked, err := s.lockStore.AcquireDriverLock(ctx, bid.DriverID, driverLockTTL)
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, ErrDriverUnavailable
	}

	now := time.Now()
	booking := &domain.Booking{
		ID:            uuid.New().String(),
		RideID:        ride.ID,
		UserID:        ride.UserID,
		DriverID:      bid.DriverID,
		BidID:         bid.ID,
		Status:        domain.BookingStatusConfirmed,
		PaymentStatus: domain.PaymentStatusPending,
		CreatedAt:     now,
	}

	err = s.txManager.WithinTx(ctx, func(repos repository.Repositories) error {
		lockedRide, err := repos.Rides.GetByIDForUpdate(ctx, ride.ID)
		if err != nil {
			return err
		}
		// Re-checked under the row lock: a concurrent acceptance or an
		// expiry-driven close already ended the auction.
		if lockedRide.Status != domain.RideStatusBidding {
			return ErrBiddingClosed
		}

		chosen, err := repos.Bids.GetByID(ctx, bid.ID)
		if err != nil {
			return err
		}

		chosen.Status = domain.BidStatusAccepted
		chosen.UpdatedAt = now
		if err := repos.Bids.Update(ctx, chosen); err != nil {
			return err
		}

		if err := repos.Bids.RejectOthers(ctx, ride.ID, chosen.ID); err != nil {
			return err
		}

		lockedRide.Status = domain.RideStatusAccepted
		lockedRide.AcceptedDriverID = chosen.DriverID
		lockedRide.FinalPrice = chosen.BidAmount
		if err := repos.Rides.Update(ctx, lockedRide); err != nil {
			return err
		}

		if err := repos.Drivers.UpdateStatus(ctx, chosen.DriverID, domain.DriverStatusBusy); err != nil {
			return err
		}

		booking.FinalAmount = chosen.BidAmount
		return repos.Bookings.Create(ctx, booking)
	})
	if err != nil {
		_ = s.lockStore.ReleaseDriverLock(ctx, bid.DriverID)
		return nil, err
	}

	s.notifyBidAccepted(ride, bid, driver, booking)

	return &AcceptBidResponse{Booking: booking, Driver: driver}, nil
}

// GetRideBids returns all bids for a ride, lowest amount first, enriched
// with driver profiles.
func (s *BidService) GetRideBids(ctx context.Context, rideID string) ([]*BidView, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	bids, err := s.bidRepo.GetByRideID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	views := make([]*BidView, 0, len(bids))
	drivers := make(map[string]*domain.Driver)

	for _, bid := range bids {
		driver, ok := drivers[bid.DriverID]
		if !ok {
			driver, err = s.driverRepo.GetByID(ctx, bid.DriverID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					continue
				}
				return nil, err
			}
			drivers[bid.DriverID] = driver
		}
		views = append(views, newBidView(bid, driver))
	}

	return views, nil
}

// DriverBidView is a bid enriched with the ride and rider it targets.
type DriverBidView struct {
	ID               string
	RideID           string
	UserID           string
	UserName         string
	UserAvatar       string
	From             domain.Location
	To               domain.Location
	BidAmount        float64
	Message          string
	EstimatedArrival int
	Status           domain.BidStatus
	IsWinning        bool
	CreatedAt        time.Time
}

// GetDriverBids returns a driver's bids, newest first, optionally
// filtered by status.
func (s *BidService) GetDriverBids(ctx context.Context, driverID string, status domain.BidStatus) ([]*DriverBidView, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	bids, err := s.bidRepo.GetByDriverID(ctx, driverID, status)
	if err != nil {
		return nil, err
	}

	views := make([]*DriverBidView, 0, len(bids))
	for _, bid := range bids {
		ride, err := s.rideRepo.GetByID(ctx, bid.RideID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, err
		}

		view := &DriverBidView{
			ID:               bid.ID,
			RideID:           bid.RideID,
			UserID:           ride.UserID,
			From:             ride.From,
			To:               ride.To,
			BidAmount:        bid.BidAmount,
			Message:          bid.Message,
			EstimatedArrival: bid.EstimatedArrival,
			Status:           bid.Status,
			IsWinning:        bid.IsWinning,
			CreatedAt:        bid.CreatedAt,
		}

		if user, err := s.userRepo.GetByID(ctx, ride.UserID); err == nil {
			view.UserName = user.Name
			view.UserAvatar = user.Avatar
		}

		views = append(views, view)
	}

	return views, nil
}

func newBidView(bid *domain.Bid, driver *domain.Driver) *BidView {
	return &BidView{
		ID:               bid.ID,
		RideID:           bid.RideID,
		DriverID:         bid.DriverID,
		DriverName:       driver.Name,
		Vehicle:          driver.Vehicle,
		DriverRating:     driver.Rating,
		BidAmount:        bid.BidAmount,
		Message:          bid.Message,
		EstimatedArrival: bid.EstimatedArrival,
		Status:           bid.Status,
		IsWinning:        bid.IsWinning,
		CreatedAt:        bid.CreatedAt,
	}
}

func (s *BidService) notifyBidPlaced(ride *domain.Ride, view *BidView, created bool) {
	if s.notifier == nil {
		return
	}

	payload := map[string]any{
		"bidId":            view.ID,
		"rideId":           view.RideID,
		"driverId":         view.DriverID,
		"driverName":       view.DriverName,
		"vehicleDetails":   view.Vehicle,
		"rating":           view.DriverRating,
		"bidAmount":        view.BidAmount,
		"message":          view.Message,
		"estimatedArrival": view.EstimatedArrival,
		"isWinning":        view.IsWinning,
	}

	event := EventBidUpdated
	if created {
		event = EventNewBid
		if user, err := s.userRepo.GetByID(context.Background(), ride.UserID); err == nil {
			payload["userName"] = user.Name
			payload["userAvatar"] = user.Avatar
		}
	}

	s.notifier.Publish(ride.ID, event, payload)
}

func (s *BidService) notifyBidAccepted(ride *domain.Ride, bid *domain.Bid, driver *domain.Driver, booking *domain.Booking) {
	if s.notifier == nil {
		return
	}

	s.notifier.Publish(ride.ID, EventBidAccepted, map[string]any{
		"rideId":         ride.ID,
		"bidId":          bid.ID,
		"driverId":       driver.ID,
		"driverName":     driver.Name,
		"driverPhone":    driver.Phone,
		"vehicleDetails": driver.Vehicle,
		"finalAmount":    booking.FinalAmount,
		"bookingId":      booking.ID,
	})

	// Tells every driver's available-rides view to drop this ride.
	s.notifier.Broadcast(EventRideCompleted, map[string]any{
		"rideId": ride.ID,
	})
}
