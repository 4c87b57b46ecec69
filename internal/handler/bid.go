package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jaswant2111058/Vahanwire-server/internal/domain"
	"github.com/jaswant2111058/Vahanwire-server/internal/middleware"
	"github.com/jaswant2111058/Vahanwire-server/internal/service"
)

// BidHandler handles HTTP requests for bids.
type BidHandler struct {
	bidService *service.BidService
}

// NewBidHandler creates a new BidHandler.
func NewBidHandler(bidService *service.BidService) *BidHandler {
	return &BidHandler{bidService: bidService}
}

// PlaceBidRequest is the HTTP request body for placing or revising a bid.
type PlaceBidRequest struct {
	RideID           string  `json:"ride_id"`
	DriverID         string  `json:"driver_id"`
	BidAmount        float64 `json:"bid_amount"`
	Message          string  `json:"message,omitempty"`
	EstimatedArrival int     `json:"estimated_arrival_min,omitempty"`
}

// BidResponse is the HTTP representation of a bid.
type BidResponse struct {
	ID               string          `json:"id"`
	RideID           string          `json:"ride_id"`
	DriverID         string          `json:"driver_id"`
	DriverName       string          `json:"driver_name,omitempty"`
	Vehicle          *VehiclePayload `json:"vehicle,omitempty"`
	DriverRating     float64         `json:"driver_rating,omitempty"`
	BidAmount        float64         `json:"bid_amount"`
	Message          string          `json:"message,omitempty"`
	EstimatedArrival int             `json:"estimated_arrival_min,omitempty"`
	Status           string          `json:"status"`
	IsWinning        bool            `json:"is_winning"`
	CreatedAt        time.Time       `json:"created_at"`
}

func newBidResponse(v *service.BidView) BidResponse {
	return BidResponse{
		ID:         v.ID,
		RideID:     v.RideID,
		DriverID:   v.DriverID,
		DriverName: v.DriverName,
		Vehicle: &VehiclePayload{
			Model:  v.Vehicle.Model,
			Number: v.Vehicle.Number,
			Type:   string(v.Vehicle.Type),
		},
		DriverRating:     v.DriverRating,
		BidAmount:        v.BidAmount,
		Message:          v.Message,
		EstimatedArrival: v.EstimatedArrival,
		Status:           string(v.Status),
		IsWinning:        v.IsWinning,
		CreatedAt:        v.CreatedAt,
	}
}

// PlaceBid handles POST /v1/bids
func (h *BidHandler) PlaceBid(c *gin.Context) {
	var req PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.bidService.PlaceBid(c.Request.Context(), service.PlaceBidRequest{
		RideID:           req.RideID,
		DriverID:         req.DriverID,
		BidAmount:        req.BidAmount,
		Message:          req.Message,
		EstimatedArrival: req.EstimatedArrival,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	code := http.StatusOK
	outcome := "revised"
	if result.Created {
		code = http.StatusCreated
		outcome = "created"
	}
	middleware.BidsPlacedTotal.WithLabelValues(outcome).Inc()

	respondJSON(c, code, newBidResponse(result.Bid))
}

// AcceptBidRequest is the HTTP request body for accepting a bid.
type AcceptBidRequest struct {
	UserID string `json:"user_id"`
}

// AcceptBidResponse is the HTTP response for accepting a bid.
type AcceptBidResponse struct {
	Booking     BookingResponse `json:"booking"`
	DriverName  string          `json:"driver_name"`
	DriverPhone string          `json:"driver_phone"`
	Vehicle     VehiclePayload  `json:"vehicle"`
}

// AcceptBid handles POST /v1/bids/:id/accept
func (h *BidHandler) AcceptBid(c *gin.Context) {
	var req AcceptBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.bidService.AcceptBid(c.Request.Context(), service.AcceptBidRequest{
		BidID:  c.Param("id"),
		UserID: req.UserID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.BidsAcceptedTotal.Inc()

	respondJSON(c, http.StatusOK, AcceptBidResponse{
		Booking:     newBookingResponse(result.Booking),
		DriverName:  result.Driver.Name,
		DriverPhone: result.Driver.Phone,
		Vehicle: VehiclePayload{
			Model:  result.Driver.Vehicle.Model,
			Number: result.Driver.Vehicle.Number,
			Type:   string(result.Driver.Vehicle.Type),
		},
	})
}

// GetRideBids handles GET /v1/rides/:id/bids
func (h *BidHandler) GetRideBids(c *gin.Context) {
	bids, err := h.bidService.GetRideBids(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]BidResponse, 0, len(bids))
	for _, b := range bids {
		response = append(response, newBidResponse(b))
	}

	respondJSON(c, http.StatusOK, response)
}

// DriverBidResponse is a driver's bid with its target ride.
type DriverBidResponse struct {
	ID               string          `json:"id"`
	RideID           string          `json:"ride_id"`
	UserID           string          `json:"user_id"`
	UserName         string          `json:"user_name,omitempty"`
	UserAvatar       string          `json:"user_avatar,omitempty"`
	From             LocationPayload `json:"from"`
	To               LocationPayload `json:"to"`
	BidAmount        float64         `json:"bid_amount"`
	Message          string          `json:"message,omitempty"`
	EstimatedArrival int             `json:"estimated_arrival_min,omitempty"`
	Status           string          `json:"status"`
	IsWinning        bool            `json:"is_winning"`
	CreatedAt        time.Time       `json:"created_at"`
}

// GetDriverBids handles GET /v1/drivers/:id/bids?status=
func (h *BidHandler) GetDriverBids(c *gin.Context) {
	bids, err := h.bidService.GetDriverBids(c.Request.Context(), c.Param("id"), domain.BidStatus(c.Query("status")))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]DriverBidResponse, 0, len(bids))
	for _, b := range bids {
		response = append(response, DriverBidResponse{
			ID:               b.ID,
			RideID:           b.RideID,
			UserID:           b.UserID,
			UserName:         b.UserName,
			UserAvatar:       b.UserAvatar,
			From:             LocationPayload{Address: b.From.Address, Lat: b.From.Lat, Lng: b.From.Lng},
			To:               LocationPayload{Address: b.To.Address, Lat: b.To.Lat, Lng: b.To.Lng},
			BidAmount:        b.BidAmount,
			Message:          b.Message,
			EstimatedArrival: b.EstimatedArrival,
			Status:           string(b.Status),
			IsWinning:        b.IsWinning,
			CreatedAt:        b.CreatedAt,
		})
	}

	respondJSON(c, http.StatusOK, response)
}
