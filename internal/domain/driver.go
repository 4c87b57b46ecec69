package domain

// DriverStatus represents the current status of a driver.
type DriverStatus string

const (
	DriverStatusOnline  DriverStatus = "ONLINE"
	DriverStatusOffline DriverStatus = "OFFLINE"
	DriverStatusBusy    DriverStatus = "BUSY"
)

// VehicleType represents the class of a driver's vehicle.
type VehicleType string

const (
	VehicleTypeSedan     VehicleType = "SEDAN"
	VehicleTypeHatchback VehicleType = "HATCHBACK"
	VehicleTypeSUV       VehicleType = "SUV"
	VehicleTypeLuxury    VehicleType = "LUXURY"
)

// Vehicle holds a driver's vehicle details.
type Vehicle struct {
	Model  string
	Number string
	Type   VehicleType
}

// Driver represents a driver in the system.
//
// A driver may bid only while Status is ONLINE and IsActive is true.
// Acceptance moves the driver to BUSY; booking completion or cancellation
// moves them back to ONLINE.
type Driver struct {
	ID            string
	Name          string
	Email         string
	Phone         string
	LicenseNumber string
	Vehicle       Vehicle
	Rating        float64 // running average, 0-5
	TotalRides    int
	Status        DriverStatus
	IsActive      bool
}
