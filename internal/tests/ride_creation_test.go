package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jaswant2111058/Vahanwire-server/internal/domain"
	"github.com/jaswant2111058/Vahanwire-server/internal/service"
)

const testBiddingWindow = 10 * time.Minute

type rideFixture struct {
	rideRepo    *MockRideRepository
	bidRepo     *MockBidRepository
	userRepo    *MockUserRepository
	notifier    *MockNotifier
	rideService *service.RideService
}

func newRideFixture() *rideFixture {
	f := &rideFixture{
		rideRepo: NewMockRideRepository(),
		bidRepo:  NewMockBidRepository(),
		userRepo: NewMockUserRepository(),
		notifier: NewMockNotifier(),
	}
	f.rideService = service.NewRideService(f.rideRepo, f.bidRepo, f.userRepo, f.notifier, testBiddingWindow)
	f.userRepo.AddUser(&domain.User{ID: "user-1", Name: "Asha", Phone: "9000000000", IsActive: true})
	return f
}

func validCreateRequest() service.CreateRideRequest {
	return service.CreateRideRequest{
		UserID:      "user-1",
		From:        domain.Location{Address: "MG Road", Lat: 12.9716, Lng: 77.5946},
		To:          domain.Location{Address: "Airport", Lat: 13.1986, Lng: 77.7066},
		VehicleType: domain.VehicleTypeSedan,
	}
}

func TestCreateRide_OpensBiddingWithWindow(t *testing.T) {
	ctx := context.Background()
	f := newRideFixture()

	before := time.Now()
	ride, err := f.rideService.CreateRide(ctx, validCreateRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ride.Status != domain.RideStatusBidding {
		t.Errorf("expected BIDDING status, got %s", ride.Status)
	}
	if ride.BiddingEndTime.Before(before.Add(testBiddingWindow - time.Second)) {
		t.Error("bidding window shorter than configured")
	}
	if ride.BasePrice <= 0 {
		t.Error("expected a positive base price")
	}
	if ride.Distance <= 0 {
		t.Error("expected a positive distance")
	}
	if ride.CustomerMaxPrice <= ride.BasePrice {
		t.Errorf("default max price %.0f should exceed base price %.0f", ride.CustomerMaxPrice, ride.BasePrice)
	}
	if f.notifier.CountEvent(service.EventNewRide) != 1 {
		t.Error("expected new-ride broadcast")
	}
}

func TestCreateRide_KeepsExplicitMaxPrice(t *testing.T) {
	ctx := context.Background()
	f := newRideFixture()

	req := validCreateRequest()
	req.CustomerMaxPrice = 900

	ride, err := f.rideService.CreateRide(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ride.CustomerMaxPrice != 900 {
		t.Errorf("expected max price 900, got %.0f", ride.CustomerMaxPrice)
	}
}

func TestCreateRide_RejectsMissingPickup(t *testing.T) {
	ctx := context.Background()
	f := newRideFixture()

	req := validCreateRequest()
	req.From = domain.Location{}

	_, err := f.rideService.CreateRide(ctx, req)
	if !errors.Is(err, service.ErrInvalidPickupLocation) {
		t.Fatalf("expected ErrInvalidPickupLocation, got %v", err)
	}
}

func TestCreateRide_RejectsOutOfRangeDestination(t *testing.T) {
	ctx := context.Background()
	f := newRideFixture()

	req := validCreateRequest()
	req.To.Lat = 213.0

	_, err := f.rideService.CreateRide(ctx, req)
	if !errors.Is(err, service.ErrInvalidDestinationLocation) {
		t.Fatalf("expected ErrInvalidDestinationLocation, got %v", err)
	}
}

func TestCreateRide_RejectsUnknownUser(t *testing.T) {
	ctx := context.Background()
	f := newRideFixture()

	req := validCreateRequest()
	req.UserID = "ghost"

	if _, err := f.rideService.CreateRide(ctx, req); err == nil {
		t.Fatal("expected an error for unknown user")
	}
}

func TestGetAvailableRides_ExcludesExpiredWindows(t *testing.T) {
	ctx := context.Background()
	f := newRideFixture()

	open := &domain.Ride{
		ID:             "ride-open",
		UserID:         "user-1",
		Status:         domain.RideStatusBidding,
		BiddingEndTime: time.Now().Add(5 * time.Minute),
		CreatedAt:      time.Now(),
	}
	expired := &domain.Ride{
		ID:             "ride-expired",
		UserID:         "user-1",
		Status:         domain.RideStatusBidding,
		BiddingEndTime: time.Now().Add(-time.Minute),
		CreatedAt:      time.Now().Add(-11 * time.Minute),
	}
	f.rideRepo.AddRide(open)
	f.rideRepo.AddRide(expired)

	rides, err := f.rideService.GetAvailableRides(ctx, "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rides) != 1 {
		t.Fatalf("expected 1 available ride, got %d", len(rides))
	}
	if rides[0].Ride.ID != "ride-open" {
		t.Errorf("expected ride-open, got %s", rides[0].Ride.ID)
	}
}

func TestGetAvailableRides_FlagsDriverParticipation(t *testing.T) {
	ctx := context.Background()
	f := newRideFixture()

	ride := &domain.Ride{
		ID:             "ride-1",
		UserID:         "user-1",
		Status:         domain.RideStatusBidding,
		BiddingEndTime: time.Now().Add(5 * time.Minute),
		CreatedAt:      time.Now(),
	}
	f.rideRepo.AddRide(ride)
	f.bidRepo.AddBid(&domain.Bid{
		ID:       "bid-1",
		RideID:   "ride-1",
		DriverID: "driver-1",
		Status:   domain.BidStatusActive,
	})

	rides, err := f.rideService.GetAvailableRides(ctx, "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rides) != 1 {
		t.Fatalf("expected 1 ride, got %d", len(rides))
	}
	if !rides[0].HasBid {
		t.Error("expected HasBid for the bidding driver")
	}
	if rides[0].BidCount != 1 {
		t.Errorf("expected bid count 1, got %d", rides[0].BidCount)
	}

	other, _ := f.rideService.GetAvailableRides(ctx, "driver-2")
	if other[0].HasBid {
		t.Error("driver without a bid must not be flagged")
	}
}

func TestUpdateRideStatus_AllowsLifecycleTransitions(t *testing.T) {
	ctx := context.Background()
	f := newRideFixture()

	ride := &domain.Ride{
		ID:        "ride-1",
		UserID:    "user-1",
		Status:    domain.RideStatusAccepted,
		CreatedAt: time.Now(),
	}
	f.rideRepo.AddRide(ride)

	updated, err := f.rideService.UpdateStatus(ctx, "ride-1", domain.RideStatusInProgress)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.RideStartTime.IsZero() {
		t.Error("expected ride start time to be stamped")
	}

	updated, err = f.rideService.UpdateStatus(ctx, "ride-1", domain.RideStatusCompleted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.RideEndTime.IsZero() {
		t.Error("expected ride end time to be stamped")
	}

	if f.notifier.CountEvent(service.EventRideStatusUpdated) != 2 {
		t.Error("expected a status event per transition")
	}
}

func TestUpdateRideStatus_RejectsInvalidTransition(t *testing.T) {
	ctx := context.Background()
	f := newRideFixture()

	ride := &domain.Ride{
		ID:        "ride-1",
		UserID:    "user-1",
		Status:    domain.RideStatusCompleted,
		CreatedAt: time.Now(),
	}
	f.rideRepo.AddRide(ride)

	_, err := f.rideService.UpdateStatus(ctx, "ride-1", domain.RideStatusInProgress)
	if !errors.Is(err, service.ErrInvalidRideStatus) {
		t.Fatalf("expected ErrInvalidRideStatus, got %v", err)
	}
}
