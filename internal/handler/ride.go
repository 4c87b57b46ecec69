package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jaswant2111058/Vahanwire-server/internal/domain"
	"github.com/jaswant2111058/Vahanwire-server/internal/service"
)

// RideHandler handles HTTP requests for rides.
type RideHandler struct {
	rideService *service.RideService
	bidService  *service.BidService
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(rideService *service.RideService, bidService *service.BidService) *RideHandler {
	return &RideHandler{
		rideService: rideService,
		bidService:  bidService,
	}
}

// LocationPayload is a location in HTTP requests and responses.
type LocationPayload struct {
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// CreateRideRequest is the HTTP request body for creating a ride.
type CreateRideRequest struct {
	UserID           string          `json:"user_id"`
	From             LocationPayload `json:"from"`
	To               LocationPayload `json:"to"`
	VehicleType      string          `json:"vehicle_type,omitempty"` // SEDAN, HATCHBACK, SUV, LUXURY
	CustomerMaxPrice float64         `json:"customer_max_price,omitempty"`
}

// RideResponse is the HTTP representation of a ride.
type RideResponse struct {
	ID                string          `json:"id"`
	UserID            string          `json:"user_id"`
	From              LocationPayload `json:"from"`
	To                LocationPayload `json:"to"`
	BasePrice         float64         `json:"base_price"`
	CustomerMaxPrice  float64         `json:"customer_max_price"`
	Distance          float64         `json:"distance_km"`
	EstimatedDuration int             `json:"estimated_duration_min"`
	Status            string          `json:"status"`
	BiddingEndTime    time.Time       `json:"bidding_end_time"`
	AcceptedDriverID  string          `json:"accepted_driver_id,omitempty"`
	FinalPrice        float64         `json:"final_price,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

func newRideResponse(r *domain.Ride) RideResponse {
	return RideResponse{
		ID:                r.ID,
		UserID:            r.UserID,
		From:              LocationPayload{Address: r.From.Address, Lat: r.From.Lat, Lng: r.From.Lng},
		To:                LocationPayload{Address: r.To.Address, Lat: r.To.Lat, Lng: r.To.Lng},
		BasePrice:         r.BasePrice,
		CustomerMaxPrice:  r.CustomerMaxPrice,
		Distance:          r.Distance,
		EstimatedDuration: r.EstimatedDuration,
		Status:            string(r.Status),
		BiddingEndTime:    r.BiddingEndTime,
		AcceptedDriverID:  r.AcceptedDriverID,
		FinalPrice:        r.FinalPrice,
		CreatedAt:         r.CreatedAt,
	}
}

// CreateRide handles POST /v1/rides
func (h *RideHandler) CreateRide(c *gin.Context) {
	var req CreateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.rideService.CreateRide(c.Request.Context(), service.CreateRideRequest{
		UserID:           req.UserID,
		From:             domain.Location{Address: req.From.Address, Lat: req.From.Lat, Lng: req.From.Lng},
		To:               domain.Location{Address: req.To.Address, Lat: req.To.Lat, Lng: req.To.Lng},
		VehicleType:      domain.VehicleType(req.VehicleType),
		CustomerMaxPrice: req.CustomerMaxPrice,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, newRideResponse(ride))
}

// AvailableRideResponse is an open ride as shown to a bidding driver.
type AvailableRideResponse struct {
	RideResponse
	BidCount int  `json:"bid_count"`
	HasBid   bool `json:"has_bid"`
}

// GetAvailableRides handles GET /v1/rides/available?driver_id=
func (h *RideHandler) GetAvailableRides(c *gin.Context) {
	driverID := c.Query("driver_id")

	rides, err := h.rideService.GetAvailableRides(c.Request.Context(), driverID)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]AvailableRideResponse, 0, len(rides))
	for _, r := range rides {
		response = append(response, AvailableRideResponse{
			RideResponse: newRideResponse(r.Ride),
			BidCount:     r.BidCount,
			HasBid:       r.HasBid,
		})
	}

	respondJSON(c, http.StatusOK, response)
}

// RideDetailResponse is a ride with its bids.
type RideDetailResponse struct {
	Ride RideResponse  `json:"ride"`
	Bids []BidResponse `json:"bids"`
}

// GetRide handles GET /v1/rides/:id
func (h *RideHandler) GetRide(c *gin.Context) {
	detail, err := h.rideService.GetRide(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	bids := make([]BidResponse, 0, len(detail.Bids))
	for _, b := range detail.Bids {
		bids = append(bids, BidResponse{
			ID:               b.ID,
			RideID:           b.RideID,
			DriverID:         b.DriverID,
			BidAmount:        b.BidAmount,
			Message:          b.Message,
			EstimatedArrival: b.EstimatedArrival,
			Status:           string(b.Status),
			IsWinning:        b.IsWinning,
			CreatedAt:        b.CreatedAt,
		})
	}

	respondJSON(c, http.StatusOK, RideDetailResponse{
		Ride: newRideResponse(detail.Ride),
		Bids: bids,
	})
}

// GetUserRides handles GET /v1/users/:id/rides?status=
func (h *RideHandler) GetUserRides(c *gin.Context) {
	rides, err := h.rideService.GetUserRides(c.Request.Context(), c.Param("id"), domain.RideStatus(c.Query("status")))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]RideResponse, 0, len(rides))
	for _, r := range rides {
		response = append(response, newRideResponse(r))
	}

	respondJSON(c, http.StatusOK, response)
}

// UpdateRideStatusRequest is the HTTP request body for a ride status update.
type UpdateRideStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PATCH /v1/rides/:id/status
func (h *RideHandler) UpdateStatus(c *gin.Context) {
	var req UpdateRideStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.rideService.UpdateStatus(c.Request.Context(), c.Param("id"), domain.RideStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newRideResponse(ride))
}
