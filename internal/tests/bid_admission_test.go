package tests

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jaswant2111058/Vahanwire-server/internal/domain"
	"github.com/jaswant2111058/Vahanwire-server/internal/service"
)

// auctionFixture bundles the mocks behind a BidService.
type auctionFixture struct {
	rideRepo   *MockRideRepository
	bidRepo    *MockBidRepository
	driverRepo *MockDriverRepository
	userRepo   *MockUserRepository
	bookings   *MockBookingRepository
	txManager  *MockTxManager
	lockStore  *MockLockStore
	notifier   *MockNotifier
	bidService *service.BidService
}

func newAuctionFixture() *auctionFixture {
	f := &auctionFixture{
		rideRepo:   NewMockRideRepository(),
		bidRepo:    NewMockBidRepository(),
		driverRepo: NewMockDriverRepository(),
		userRepo:   NewMockUserRepository(),
		bookings:   NewMockBookingRepository(),
		lockStore:  NewMockLockStore(),
		notifier:   NewMockNotifier(),
	}
	f.txManager = NewMockTxManager(f.rideRepo, f.bidRepo, f.driverRepo, f.bookings)
	f.bidService = service.NewBidService(
		f.txManager, f.rideRepo, f.bidRepo, f.driverRepo, f.userRepo, f.lockStore, f.notifier,
	)
	return f
}

// addBiddingRide seeds an open auction with a 10 minute window.
func (f *auctionFixture) addBiddingRide(id, userID string, maxPrice float64) *domain.Ride {
	ride := &domain.Ride{
		ID:               id,
		UserID:           userID,
		From:             domain.Location{Address: "MG Road", Lat: 12.97, Lng: 77.59},
		To:               domain.Location{Address: "Airport", Lat: 13.19, Lng: 77.70},
		BasePrice:        400,
		CustomerMaxPrice: maxPrice,
		Status:           domain.RideStatusBidding,
		BiddingEndTime:   time.Now().Add(10 * time.Minute),
		CreatedAt:        time.Now(),
	}
	f.rideRepo.AddRide(ride)
	f.userRepo.AddUser(&domain.User{ID: userID, Name: "Asha", Phone: "9000000000", IsActive: true})
	return ride
}

// addOnlineDriver seeds a driver able to bid.
func (f *auctionFixture) addOnlineDriver(id string) *domain.Driver {
	driver := &domain.Driver{
		ID:       id,
		Name:     "Driver " + id,
		Phone:    "98" + id,
		Status:   domain.DriverStatusOnline,
		IsActive: true,
		Vehicle:  domain.Vehicle{Model: "Swift", Number: "KA-01-" + id, Type: domain.VehicleTypeSedan},
	}
	f.driverRepo.AddDriver(driver)
	return driver
}

func TestPlaceBid_CreatesBidAndMarksWinning(t *testing.T) {
	ctx := context.Background()
	f := newAuctionFixture()
	f.addBiddingRide("ride-1", "user-1", 600)
	f.addOnlineDriver("driver-1")

	result, err := f.bidService.PlaceBid(ctx, service.PlaceBidRequest{
		RideID:           "ride-1",
		DriverID:         "driver-1",
		BidAmount:        450,
		EstimatedArrival: 5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Created {
		t.Error("expected a new bid to be created")
	}
	if !result.Bid.IsWinning {
		t.Error("expected the only bid to be winning")
	}
	if result.Bid.Status != domain.BidStatusActive {
		t.Errorf("expected ACTIVE status, got %s", result.Bid.Status)
	}
	if f.notifier.CountEvent(service.EventNewBid) != 1 {
		t.Error("expected new-bid event to be published")
	}
}

func TestPlaceBid_LowerBidTakesOverWinning(t *testing.T) {
	ctx := context.Background()
	f := newAuctionFixture()
	f.addBiddingRide("ride-1", "user-1", 600)
	f.addOnlineDriver("driver-a")
	f.addOnlineDriver("driver-b")

	first, err := f.bidService.PlaceBid(ctx, service.PlaceBidRequest{
		RideID: "ride-1", DriverID: "driver-a", BidAmount: 500,
	})
	if err != nil {
		t.Fatalf("first bid failed: %v", err)
	}
	if !first.Bid.IsWinning {
		t.Fatal("first bid should win while alone")
	}

	second, err := f.bidService.PlaceBid(ctx, service.PlaceBidRequest{
		RideID: "ride-1", DriverID: "driver-b", BidAmount: 300,
	})
	if err != nil {
		t.Fatalf("second bid failed: %v", err)
	}
	if !second.Bid.IsWinning {
		t.Error("lower bid should take over winning")
	}

	// Exactly one winning bid stored.
	winners := f.bidRepo.WinningBids("ride-1")
	if len(winners) != 1 {
		t.Fatalf("expected exactly 1 winning bid, got %d", len(winners))
	}
	if winners[0].ID != second.Bid.ID {
		t.Errorf("expected bid %s to win, got %s", second.Bid.ID, winners[0].ID)
	}
}

func TestPlaceBid_RevisionDoesNotAddBid(t *testing.T) {
	ctx := context.Background()
	f := newAuctionFixture()
	f.addBiddingRide("ride-1", "user-1", 600)
	f.addOnlineDriver("driver-1")

	if _, err := f.bidService.PlaceBid(ctx, service.PlaceBidRequest{
		RideID: "ride-1", DriverID: "driver-1", BidAmount: 500,
	}); err != nil {
		t.Fatalf("initial bid failed: %v", err)
	}

	result, err := f.bidService.PlaceBid(ctx, service.PlaceBidRequest{
		RideID: "ride-1", DriverID: "driver-1", BidAmount: 420,
	})
	if err != nil {
		t.Fatalf("revision failed: %v", err)
	}

	if result.Created {
		t.Error("revision must not report a new bid")
	}
	if count := f.bidRepo.CountBidsForRide("ride-1"); count != 1 {
		t.Errorf("expected 1 bid after revision, got %d", count)
	}
	if result.Bid.BidAmount != 420 {
		t.Errorf("expected revised amount 420, got %.0f", result.Bid.BidAmount)
	}
	if f.notifier.CountEvent(service.EventBidUpdated) != 1 {
		t.Error("expected bid-updated event for a revision")
	}
}

func TestPlaceBid_RevisionUpwardCanLoseWinning(t *testing.T) {
	ctx := context.Background()
	f := newAuctionFixture()
	f.addBiddingRide("ride-1", "user-1", 600)
	f.addOnlineDriver("driver-a")
	f.addOnlineDriver("driver-b")

	f.bidService.PlaceBid(ctx, service.PlaceBidRequest{RideID: "ride-1", DriverID: "driver-a", BidAmount: 400})
	f.bidService.PlaceBid(ctx, service.PlaceBidRequest{RideID: "ride-1", DriverID: "driver-b", BidAmount: 450})

	// driver-a revises above driver-b.
	result, err := f.bidService.PlaceBid(ctx, service.PlaceBidRequest{
		RideID: "ride-1", DriverID: "driver-a", BidAmount: 480,
	})
	if err != nil {
		t.Fatalf("revision failed: %v", err)
	}
	if result.Bid.IsWinning {
		t.Error("revised-up bid should no longer win")
	}

	winners := f.bidRepo.WinningBids("ride-1")
	if len(winners) != 1 {
		t.Fatalf("expected exactly 1 winning bid, got %d", len(winners))
	}
	if winners[0].DriverID != "driver-b" {
		t.Errorf("expected driver-b to win, got %s", winners[0].DriverID)
	}
}

func TestPlaceBid_TieBreaksByEarliestCreation(t *testing.T) {
	ctx := context.Background()
	f := newAuctionFixture()
	f.addBiddingRide("ride-1", "user-1", 600)
	f.addOnlineDriver("driver-a")
	f.addOnlineDriver("driver-b")

	first, err := f.bidService.PlaceBid(ctx, service.PlaceBidRequest{
		RideID: "ride-1", DriverID: "driver-a", BidAmount: 400,
	})
	if err != nil {
		t.Fatalf("first bid failed: %v", err)
	}

	// Same amount, later creation.
	time.Sleep(2 * time.Millisecond)
	second, err := f.bidService.PlaceBid(ctx, service.PlaceBidRequest{
		RideID: "ride-1", DriverID: "driver-b", BidAmount: 400,
	})
	if err != nil {
		t.Fatalf("second bid failed: %v", err)
	}

	if second.Bid.IsWinning {
		t.Error("later equal bid must not displace the earlier one")
	}
	winners := f.bidRepo.WinningBids("ride-1")
	if len(winners) != 1 || winners[0].ID != first.Bid.ID {
		t.Error("expected the earlier bid to keep winning on a tie")
	}
}

func TestPlaceBid_RejectsAmountAboveMaxPrice(t *testing.T) {
	ctx := context.Background()
	f := newAuctionFixture()
	f.addBiddingRide("ride-1", "user-1", 600)
	f.addOnlineDriver("driver-1")

	_, err := f.bidService.PlaceBid(ctx, service.PlaceBidRequest{
		RideID: "ride-1", DriverID: "driver-1", BidAmount: 650,
	})
	if !errors.Is(err, service.ErrBidExceedsMaxPrice) {
		t.Fatalf("expected ErrBidExceedsMaxPrice, got %v", err)
	}

	if count := f.bidRepo.CountBidsForRide("ride-1"); count != 0 {
		t.Errorf("rejected bid must not be stored, found %d", count)
	}

	// A compliant bid still goes through afterwards.
	result, err := f.bidService.PlaceBid(ctx, service.PlaceBidRequest{
		RideID: "ride-1", DriverID: "driver-1", BidAmount: 350,
	})
	if err != nil {
		t.Fatalf("compliant bid failed: %v", err)
	}
	if !result.Bid.IsWinning {
		t.Error("expected the compliant bid to win")
	}
}

func TestPlaceBid_RejectsNegativeAmount(t *testing.T) {
	ctx := context.Background()
	f := newAuctionFixture()
	f.addBiddingRide("ride-1", "user-1", 600)
	f.addOnlineDriver("driver-1")

	_, err := f.bidService.PlaceBid(ctx, service.PlaceBidRequest{
		RideID: "ride-1", DriverID: "driver-1", BidAmount: -10,
	})
	if !errors.Is(err, service.ErrInvalidBidAmount) {
		t.Fatalf("expected ErrInvalidBidAmount, got %v", err)
	}
}

func TestPlaceBid_RejectsWhenBiddingExpired(t *testing.T) {
	ctx := context.Background()
	f := newAuctionFixture()
	ride := f.addBiddingRide("ride-1", "user-1", 600)
	f.addOnlineDriver("driver-1")

	// Window closed a minute ago, status never swept.
	ride.BiddingEndTime = time.Now().Add(-time.Minute)
	f.rideRepo.AddRide(ride)

	_, err := f.bidService.PlaceBid(ctx, service.PlaceBidRequest{
		RideID: "ride-1", DriverID: "driver-1", BidAmount: 400,
	})
	if !errors.Is(err, service.ErrBiddingExpired) {
		t.Fatalf("expected ErrBiddingExpired, got %v", err)
	}
}

func TestPlaceBid_RejectsWhenRideNotBidding(t *testing.T) {
	ctx := context.Background()
	f := newAuctionFixture()
	ride := f.addBiddingRide("ride-1", "user-1", 600)
	f.addOnlineDriver("driver-1")

	ride.Status = domain.RideStatusAccepted
	f.rideRepo.AddRide(ride)

	_, err := f.bidService.PlaceBid(ctx, service.PlaceBidRequest{
		RideID: "ride-1", DriverID: "driver-1", BidAmount: 400,
	})
	if !errors.Is(err, service.ErrBiddingClosed) {
		t.Fatalf("expected ErrBiddingClosed, got %v", err)
	}
}

func TestPlaceBid_RejectsOfflineDriver(t *testing.T) {
	ctx := context.Background()
	f := newAuctionFixture()
	f.addBiddingRide("ride-1", "user-1", 600)
	driver := f.addOnlineDriver("driver-1")
	driver.Status = domain.DriverStatusOffline
	f.driverRepo.AddDriver(driver)

	_, err := f.bidService.PlaceBid(ctx, service.PlaceBidRequest{
		RideID: "ride-1", DriverID: "driver-1", BidAmount: 400,
	})
	if !errors.Is(err, service.ErrDriverUnavailable) {
		t.Fatalf("expected ErrDriverUnavailable, got %v", err)
	}
}

func TestPlaceBid_RejectsUnknownDriver(t *testing.T) {
	ctx := context.Background()
	f := newAuctionFixture()
	f.addBiddingRide("ride-1", "user-1", 600)

	_, err := f.bidService.PlaceBid(ctx, service.PlaceBidRequest{
		RideID: "ride-1", DriverID: "ghost", BidAmount: 400,
	})
	if !errors.Is(err, service.ErrDriverUnavailable) {
		t.Fatalf("expected ErrDriverUnavailable for unknown driver, got %v", err)
	}
}

func TestPlaceBid_UnknownRideReturnsNotFound(t *testing.T) {
	ctx := context.Background()
	f := newAuctionFixture()
	f.addOnlineDriver("driver-1")

	_, err := f.bidService.PlaceBid(ctx, service.PlaceBidRequest{
		RideID: "no-such-ride", DriverID: "driver-1", BidAmount: 400,
	})
	if err == nil {
		t.Fatal("expected an error for unknown ride")
	}
}

func TestPlaceBid_ConcurrentBidsKeepSingleWinner(t *testing.T) {
	ctx := context.Background()
	f := newAuctionFixture()
	f.addBiddingRide("ride-1", "user-1", 1000)

	numDrivers := 20
	for i := 0; i < numDrivers; i++ {
		f.addOnlineDriver(fmt.Sprintf("driver-%02d", i))
	}

	var wg sync.WaitGroup
	wg.Add(numDrivers)
	for i := 0; i < numDrivers; i++ {
		go func(i int) {
			defer wg.Done()
			// Amounts 300..995; driver-00 places the lowest.
			amount := float64(300 + i*35)
			f.bidService.PlaceBid(ctx, service.PlaceBidRequest{
				RideID:    "ride-1",
				DriverID:  fmt.Sprintf("driver-%02d", i),
				BidAmount: amount,
			})
		}(i)
	}
	wg.Wait()

	winners := f.bidRepo.WinningBids("ride-1")
	if len(winners) != 1 {
		t.Fatalf("expected exactly 1 winning bid, got %d", len(winners))
	}
	if winners[0].BidAmount != 300 {
		t.Errorf("expected lowest amount 300 to win, got %.0f", winners[0].BidAmount)
	}
	if winners[0].DriverID != "driver-00" {
		t.Errorf("expected driver-00 to win, got %s", winners[0].DriverID)
	}
	if count := f.bidRepo.CountBidsForRide("ride-1"); count != numDrivers {
		t.Errorf("expected %d stored bids, got %d", numDrivers, count)
	}
}
