package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/jaswant2111058/Vahanwire-server/internal/domain"
	"github.com/jaswant2111058/Vahanwire-server/internal/service"
)

type driverFixture struct {
	driverRepo    *MockDriverRepository
	locationStore *MockLocationStore
	notifier      *MockNotifier
	driverService *service.DriverService
}

func newDriverFixture() *driverFixture {
	f := &driverFixture{
		driverRepo:    NewMockDriverRepository(),
		locationStore: NewMockLocationStore(),
		notifier:      NewMockNotifier(),
	}
	// No cache store: presence tests exercise the repository path.
	f.driverService = service.NewDriverService(f.driverRepo, f.locationStore, nil, f.notifier)
	return f
}

func TestRegisterDriver_StartsOffline(t *testing.T) {
	ctx := context.Background()
	f := newDriverFixture()

	driver, err := f.driverService.Register(ctx, service.RegisterDriverRequest{
		Name:          "Ravi",
		Phone:         "9812345678",
		LicenseNumber: "KA-DL-1234",
		Vehicle:       domain.Vehicle{Model: "Swift", Number: "KA-01-1234", Type: domain.VehicleTypeSedan},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if driver.Status != domain.DriverStatusOffline {
		t.Errorf("expected OFFLINE after registration, got %s", driver.Status)
	}
	if !driver.IsActive {
		t.Error("expected registered driver to be active")
	}
}

func TestRegisterDriver_RejectsDuplicatePhone(t *testing.T) {
	ctx := context.Background()
	f := newDriverFixture()

	req := service.RegisterDriverRequest{
		Name:          "Ravi",
		Phone:         "9812345678",
		LicenseNumber: "KA-DL-1234",
	}
	if _, err := f.driverService.Register(ctx, req); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}

	_, err := f.driverService.Register(ctx, req)
	if !errors.Is(err, service.ErrPhoneTaken) {
		t.Fatalf("expected ErrPhoneTaken, got %v", err)
	}
}

func TestUpdateDriverStatus_OnlineRegistersLocation(t *testing.T) {
	ctx := context.Background()
	f := newDriverFixture()
	f.driverRepo.AddDriver(&domain.Driver{ID: "driver-1", Status: domain.DriverStatusOffline, IsActive: true})

	driver, err := f.driverService.UpdateStatus(ctx, service.UpdateStatusRequest{
		DriverID: "driver-1",
		Status:   domain.DriverStatusOnline,
		Lat:      12.97,
		Lng:      77.59,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if driver.Status != domain.DriverStatusOnline {
		t.Errorf("expected ONLINE, got %s", driver.Status)
	}
	if !f.locationStore.HasLocation("driver-1") {
		t.Error("expected driver location to be stored")
	}
	if f.notifier.CountEvent(service.EventDriverStatusUpdated) != 1 {
		t.Error("expected driver-status-update broadcast")
	}
}

func TestUpdateDriverStatus_OfflineRemovesLocation(t *testing.T) {
	ctx := context.Background()
	f := newDriverFixture()
	f.driverRepo.AddDriver(&domain.Driver{ID: "driver-1", Status: domain.DriverStatusOnline, IsActive: true})
	f.locationStore.UpdateLocation(ctx, "driver-1", 12.97, 77.59)

	if _, err := f.driverService.UpdateStatus(ctx, service.UpdateStatusRequest{
		DriverID: "driver-1",
		Status:   domain.DriverStatusOffline,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.locationStore.HasLocation("driver-1") {
		t.Error("expected location to be removed when going offline")
	}
}

func TestUpdateDriverStatus_RejectsUnknownStatus(t *testing.T) {
	ctx := context.Background()
	f := newDriverFixture()
	f.driverRepo.AddDriver(&domain.Driver{ID: "driver-1", Status: domain.DriverStatusOffline, IsActive: true})

	_, err := f.driverService.UpdateStatus(ctx, service.UpdateStatusRequest{
		DriverID: "driver-1",
		Status:   domain.DriverStatus("SLEEPING"),
	})
	if !errors.Is(err, service.ErrInvalidDriverStatus) {
		t.Fatalf("expected ErrInvalidDriverStatus, got %v", err)
	}
}

func TestNearbyDrivers_FiltersBusyAndInactive(t *testing.T) {
	ctx := context.Background()
	f := newDriverFixture()

	f.driverRepo.AddDriver(&domain.Driver{ID: "driver-online", Status: domain.DriverStatusOnline, IsActive: true})
	f.driverRepo.AddDriver(&domain.Driver{ID: "driver-busy", Status: domain.DriverStatusBusy, IsActive: true})
	f.driverRepo.AddDriver(&domain.Driver{ID: "driver-inactive", Status: domain.DriverStatusOnline, IsActive: false})

	f.locationStore.UpdateLocation(ctx, "driver-online", 12.97, 77.59)
	f.locationStore.UpdateLocation(ctx, "driver-busy", 12.98, 77.60)
	f.locationStore.UpdateLocation(ctx, "driver-inactive", 12.96, 77.58)

	nearby, err := f.driverService.NearbyDrivers(ctx, 12.97, 77.59, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(nearby) != 1 {
		t.Fatalf("expected 1 nearby driver, got %d", len(nearby))
	}
	if nearby[0].Driver.ID != "driver-online" {
		t.Errorf("expected driver-online, got %s", nearby[0].Driver.ID)
	}
}
