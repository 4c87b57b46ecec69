package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jaswant2111058/Vahanwire-server/internal/domain"
	"github.com/jaswant2111058/Vahanwire-server/internal/repository"
	"github.com/jaswant2111058/Vahanwire-server/internal/service"
)

// DriverHandler handles HTTP requests for drivers.
type DriverHandler struct {
	driverService *service.DriverService
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(driverService *service.DriverService) *DriverHandler {
	return &DriverHandler{driverService: driverService}
}

// VehiclePayload is a vehicle in HTTP requests and responses.
type VehiclePayload struct {
	Model  string `json:"model"`
	Number string `json:"number"`
	Type   string `json:"type"` // SEDAN, HATCHBACK, SUV, LUXURY
}

// RegisterDriverRequest is the HTTP request body for registering a driver.
type RegisterDriverRequest struct {
	Name          string         `json:"name"`
	Email         string         `json:"email,omitempty"`
	Phone         string         `json:"phone"`
	LicenseNumber string         `json:"license_number"`
	Vehicle       VehiclePayload `json:"vehicle"`
}

// DriverResponse is the HTTP representation of a driver.
type DriverResponse struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Email         string         `json:"email,omitempty"`
	Phone         string         `json:"phone"`
	LicenseNumber string         `json:"license_number,omitempty"`
	Vehicle       VehiclePayload `json:"vehicle"`
	Rating        float64        `json:"rating"`
	TotalRides    int            `json:"total_rides"`
	Status        string         `json:"status"`
	IsActive      bool           `json:"is_active"`
}

func newDriverResponse(d *domain.Driver) DriverResponse {
	return DriverResponse{
		ID:            d.ID,
		Name:          d.Name,
		Email:         d.Email,
		Phone:         d.Phone,
		LicenseNumber: d.LicenseNumber,
		Vehicle: VehiclePayload{
			Model:  d.Vehicle.Model,
			Number: d.Vehicle.Number,
			Type:   string(d.Vehicle.Type),
		},
		Rating:     d.Rating,
		TotalRides: d.TotalRides,
		Status:     string(d.Status),
		IsActive:   d.IsActive,
	}
}

// Register handles POST /v1/drivers
func (h *DriverHandler) Register(c *gin.Context) {
	var req RegisterDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	driver, err := h.driverService.Register(c.Request.Context(), service.RegisterDriverRequest{
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		LicenseNumber: req.LicenseNumber,
		Vehicle: domain.Vehicle{
			Model:  req.Vehicle.Model,
			Number: req.Vehicle.Number,
			Type:   domain.VehicleType(req.Vehicle.Type),
		},
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, newDriverResponse(driver))
}

// GetDriver handles GET /v1/drivers/:id
func (h *DriverHandler) GetDriver(c *gin.Context) {
	driver, err := h.driverService.GetDriver(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, newDriverResponse(driver))
}

// ListDrivers handles GET /v1/drivers?status=&active=
func (h *DriverHandler) ListDrivers(c *gin.Context) {
	filter := repository.DriverFilter{
		Status: domain.DriverStatus(c.Query("status")),
	}
	if active := c.Query("active"); active != "" {
		v := active == "true"
		filter.IsActive = &v
	}

	drivers, err := h.driverService.ListDrivers(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]DriverResponse, 0, len(drivers))
	for _, d := range drivers {
		response = append(response, newDriverResponse(d))
	}
	respondJSON(c, http.StatusOK, response)
}

// UpdateDriverStatusRequest is the HTTP request body for a driver presence update.
type UpdateDriverStatusRequest struct {
	Status string  `json:"status"` // ONLINE, OFFLINE, BUSY
	Lat    float64 `json:"lat,omitempty"`
	Lng    float64 `json:"lng,omitempty"`
}

// UpdateStatus handles PATCH /v1/drivers/:id/status
func (h *DriverHandler) UpdateStatus(c *gin.Context) {
	var req UpdateDriverStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	driver, err := h.driverService.UpdateStatus(c.Request.Context(), service.UpdateStatusRequest{
		DriverID: c.Param("id"),
		Status:   domain.DriverStatus(req.Status),
		Lat:      req.Lat,
		Lng:      req.Lng,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, newDriverResponse(driver))
}

// NearbyDriverResponse is a discoverable driver with their distance.
type NearbyDriverResponse struct {
	DriverResponse
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	DistanceKm float64 `json:"distance_km"`
}

// Nearby handles GET /v1/drivers/nearby?lat=&lng=&radius_km=
func (h *DriverHandler) Nearby(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid lat"})
		return
	}
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid lng"})
		return
	}
	radiusKm, _ := strconv.ParseFloat(c.Query("radius_km"), 64)

	drivers, err := h.driverService.NearbyDrivers(c.Request.Context(), lat, lng, radiusKm)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]NearbyDriverResponse, 0, len(drivers))
	for _, d := range drivers {
		response = append(response, NearbyDriverResponse{
			DriverResponse: newDriverResponse(d.Driver),
			Lat:            d.Lat,
			Lng:            d.Lng,
			DistanceKm:     d.DistanceKm,
		})
	}
	respondJSON(c, http.StatusOK, response)
}
