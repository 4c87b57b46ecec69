package tests

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jaswant2111058/Vahanwire-server/internal/domain"
	"github.com/jaswant2111058/Vahanwire-server/internal/service"
)

const driverLockTestTTL = 10 * time.Second

func TestAcceptBid_CreatesBookingAndClosesAuction(t *testing.T) {
	ctx := context.Background()
	f := newAuctionFixture()
	f.addBiddingRide("ride-1", "user-1", 600)
	f.addOnlineDriver("driver-a")
	f.addOnlineDriver("driver-b")

	low, _ := f.bidService.PlaceBid(ctx, service.PlaceBidRequest{RideID: "ride-1", DriverID: "driver-a", BidAmount: 400})
	chosen, _ := f.bidService.PlaceBid(ctx, service.PlaceBidRequest{RideID: "ride-1", DriverID: "driver-b", BidAmount: 450})

	// The rider may accept any active bid, not just the winning one.
	result, err := f.bidService.AcceptBid(ctx, service.AcceptBidRequest{
		BidID:  chosen.Bid.ID,
		UserID: "user-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	booking := result.Booking
	if booking.FinalAmount != 450 {
		t.Errorf("expected final amount 450, got %.0f", booking.FinalAmount)
	}
	if booking.Status != domain.BookingStatusConfirmed {
		t.Errorf("expected CONFIRMED booking, got %s", booking.Status)
	}
	if booking.PaymentStatus != domain.PaymentStatusPending {
		t.Errorf("expected PENDING payment, got %s", booking.PaymentStatus)
	}
	if f.bookings.CountBookings() != 1 {
		t.Fatalf("expected exactly 1 booking, got %d", f.bookings.CountBookings())
	}

	// Chosen bid accepted, the other rejected.
	if got := f.bidRepo.GetBid(chosen.Bid.ID).Status; got != domain.BidStatusAccepted {
		t.Errorf("expected chosen bid ACCEPTED, got %s", got)
	}
	if got := f.bidRepo.GetBid(low.Bid.ID).Status; got != domain.BidStatusRejected {
		t.Errorf("expected losing bid REJECTED, got %s", got)
	}

	// Ride closed with the accepted bid's price.
	ride := f.rideRepo.GetRide("ride-1")
	if ride.Status != domain.RideStatusAccepted {
		t.Errorf("expected ride ACCEPTED, got %s", ride.Status)
	}
	if ride.AcceptedDriverID != "driver-b" {
		t.Errorf("expected driver-b accepted, got %s", ride.AcceptedDriverID)
	}
	if ride.FinalPrice != 450 {
		t.Errorf("expected final price 450, got %.0f", ride.FinalPrice)
	}

	// Driver marked busy.
	if got := f.driverRepo.GetDriver("driver-b").Status; got != domain.DriverStatusBusy {
		t.Errorf("expected driver BUSY, got %s", got)
	}

	if f.notifier.CountEvent(service.EventBidAccepted) != 1 {
		t.Error("expected bid-accepted event")
	}
	if f.notifier.CountEvent(service.EventRideCompleted) != 1 {
		t.Error("expected ride-completed broadcast")
	}
}

func TestAcceptBid_SecondAcceptanceFails(t *testing.T) {
	ctx := context.Background()
	f := newAuctionFixture()
	f.addBiddingRide("ride-1", "user-1", 600)
	f.addOnlineDriver("driver-a")
	f.addOnlineDriver("driver-b")

	bidA, _ := f.bidService.PlaceBid(ctx, service.PlaceBidRequest{RideID: "ride-1", DriverID: "driver-a", BidAmount: 400})
	bidB, _ := f.bidService.PlaceBid(ctx, service.PlaceBidRequest{RideID: "ride-1", DriverID: "driver-b", BidAmount: 450})

	if _, err := f.bidService.AcceptBid(ctx, service.AcceptBidRequest{BidID: bidA.Bid.ID, UserID: "user-1"}); err != nil {
		t.Fatalf("first acceptance failed: %v", err)
	}

	_, err := f.bidService.AcceptBid(ctx, service.AcceptBidRequest{BidID: bidB.Bid.ID, UserID: "user-1"})
	if !errors.Is(err, service.ErrBiddingClosed) {
		t.Fatalf("expected ErrBiddingClosed on second acceptance, got %v", err)
	}

	if f.bookings.CountBookings() != 1 {
		t.Errorf("expected exactly 1 booking after repeated acceptance, got %d", f.bookings.CountBookings())
	}
}

func TestAcceptBid_OnlyRideOwnerMayAccept(t *testing.T) {
	ctx := context.Background()
	f := newAuctionFixture()
	f.addBiddingRide("ride-1", "user-1", 600)
	f.addOnlineDriver("driver-a")

	bid, _ := f.bidService.PlaceBid(ctx, service.PlaceBidRequest{RideID: "ride-1", DriverID: "driver-a", BidAmount: 400})

	_, err := f.bidService.AcceptBid(ctx, service.AcceptBidRequest{BidID: bid.Bid.ID, UserID: "someone-else"})
	if !errors.Is(err, service.ErrNotRideOwner) {
		t.Fatalf("expected ErrNotRideOwner, got %v", err)
	}
	if f.bookings.CountBookings() != 0 {
		t.Error("no booking may be created for an unauthorized acceptance")
	}
}

func TestAcceptBid_LockedDriverCannotBeBooked(t *testing.T) {
	ctx := context.Background()
	f := newAuctionFixture()
	f.addBiddingRide("ride-1", "user-1", 600)
	f.addOnlineDriver("driver-a")

	bid, _ := f.bidService.PlaceBid(ctx, service.PlaceBidRequest{RideID: "ride-1", DriverID: "driver-a", BidAmount: 400})

	// Another auction is holding the driver.
	f.lockStore.AcquireDriverLock(ctx, "driver-a", driverLockTestTTL)

	_, err := f.bidService.AcceptBid(ctx, service.AcceptBidRequest{BidID: bid.Bid.ID, UserID: "user-1"})
	if !errors.Is(err, service.ErrDriverUnavailable) {
		t.Fatalf("expected ErrDriverUnavailable, got %v", err)
	}
	if f.bookings.CountBookings() != 0 {
		t.Error("no booking may be created while the driver is locked")
	}
}

func TestAcceptBid_ReleasesDriverLockOnFailure(t *testing.T) {
	ctx := context.Background()
	f := newAuctionFixture()
	f.addBiddingRide("ride-1", "user-1", 600)
	f.addOnlineDriver("driver-a")

	bid, _ := f.bidService.PlaceBid(ctx, service.PlaceBidRequest{RideID: "ride-1", DriverID: "driver-a", BidAmount: 400})

	// Booking creation fails inside the transaction.
	f.bookings.CreateError = ErrMockDBConstraint

	_, err := f.bidService.AcceptBid(ctx, service.AcceptBidRequest{BidID: bid.Bid.ID, UserID: "user-1"})
	if err == nil {
		t.Fatal("expected acceptance to fail")
	}

	if f.lockStore.IsLocked("driver-a") {
		t.Error("driver lock must be released when acceptance fails")
	}
	if f.lockStore.ReleaseCallCount == 0 {
		t.Error("expected ReleaseDriverLock to be called")
	}
}

func TestAcceptBid_ConcurrentAcceptancesCreateOneBooking(t *testing.T) {
	ctx := context.Background()
	f := newAuctionFixture()
	f.addBiddingRide("ride-1", "user-1", 600)
	f.addOnlineDriver("driver-a")
	f.addOnlineDriver("driver-b")

	bidA, _ := f.bidService.PlaceBid(ctx, service.PlaceBidRequest{RideID: "ride-1", DriverID: "driver-a", BidAmount: 400})
	bidB, _ := f.bidService.PlaceBid(ctx, service.PlaceBidRequest{RideID: "ride-1", DriverID: "driver-b", BidAmount: 450})

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = f.bidService.AcceptBid(ctx, service.AcceptBidRequest{BidID: bidA.Bid.ID, UserID: "user-1"})
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = f.bidService.AcceptBid(ctx, service.AcceptBidRequest{BidID: bidB.Bid.ID, UserID: "user-1"})
	}()
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly 1 acceptance to succeed, got %d (errs: %v)", succeeded, errs)
	}
	if f.bookings.CountBookings() != 1 {
		t.Errorf("expected exactly 1 booking, got %d", f.bookings.CountBookings())
	}

	ride := f.rideRepo.GetRide("ride-1")
	if ride.Status != domain.RideStatusAccepted {
		t.Errorf("expected ride ACCEPTED, got %s", ride.Status)
	}
}

func TestAcceptBid_UnknownBidReturnsError(t *testing.T) {
	ctx := context.Background()
	f := newAuctionFixture()
	f.addBiddingRide("ride-1", "user-1", 600)

	_, err := f.bidService.AcceptBid(ctx, service.AcceptBidRequest{BidID: "no-such-bid", UserID: "user-1"})
	if err == nil {
		t.Fatal("expected an error for unknown bid")
	}
}
