package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jaswant2111058/Vahanwire-server/internal/domain"
	"github.com/jaswant2111058/Vahanwire-server/internal/repository"
	"github.com/jaswant2111058/Vahanwire-server/internal/service"
)

// BookingHandler handles HTTP requests for bookings.
type BookingHandler struct {
	bookingService *service.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookingService *service.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// BookingResponse is the HTTP representation of a booking.
type BookingResponse struct {
	ID                 string     `json:"id"`
	RideID             string     `json:"ride_id"`
	UserID             string     `json:"user_id"`
	DriverID           string     `json:"driver_id"`
	BidID              string     `json:"bid_id"`
	FinalAmount        float64    `json:"final_amount"`
	Status             string     `json:"status"`
	PaymentStatus      string     `json:"payment_status"`
	DriverRating       float64    `json:"driver_rating,omitempty"`
	UserRating         float64    `json:"user_rating,omitempty"`
	DriverFeedback     string     `json:"driver_feedback,omitempty"`
	UserFeedback       string     `json:"user_feedback,omitempty"`
	CancellationReason string     `json:"cancellation_reason,omitempty"`
	StartTime          *time.Time `json:"start_time,omitempty"`
	EndTime            *time.Time `json:"end_time,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

func newBookingResponse(b *domain.Booking) BookingResponse {
	response := BookingResponse{
		ID:                 b.ID,
		RideID:             b.RideID,
		UserID:             b.UserID,
		DriverID:           b.DriverID,
		BidID:              b.BidID,
		FinalAmount:        b.FinalAmount,
		Status:             string(b.Status),
		PaymentStatus:      string(b.PaymentStatus),
		DriverRating:       b.DriverRating,
		UserRating:         b.UserRating,
		DriverFeedback:     b.DriverFeedback,
		UserFeedback:       b.UserFeedback,
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt,
	}
	if !b.StartTime.IsZero() {
		t := b.StartTime
		response.StartTime = &t
	}
	if !b.EndTime.IsZero() {
		t := b.EndTime
		response.EndTime = &t
	}
	return response
}

// GetBooking handles GET /v1/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	booking, err := h.bookingService.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, newBookingResponse(booking))
}

// List handles GET /v1/bookings?status=&payment_status=
func (h *BookingHandler) List(c *gin.Context) {
	bookings, err := h.bookingService.List(c.Request.Context(), repository.BookingFilter{
		Status:        domain.BookingStatus(c.Query("status")),
		PaymentStatus: domain.PaymentStatus(c.Query("payment_status")),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, newBookingListResponse(bookings))
}

// GetUserBookings handles GET /v1/users/:id/bookings?status=
func (h *BookingHandler) GetUserBookings(c *gin.Context) {
	bookings, err := h.bookingService.GetUserBookings(c.Request.Context(), c.Param("id"), domain.BookingStatus(c.Query("status")))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, newBookingListResponse(bookings))
}

// GetDriverBookings handles GET /v1/drivers/:id/bookings?status=
func (h *BookingHandler) GetDriverBookings(c *gin.Context) {
	bookings, err := h.bookingService.GetDriverBookings(c.Request.Context(), c.Param("id"), domain.BookingStatus(c.Query("status")))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, newBookingListResponse(bookings))
}

// UpdateBookingStatusRequest is the HTTP request body for a booking status update.
type UpdateBookingStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PATCH /v1/bookings/:id/status
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	var req UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	booking, err := h.bookingService.UpdateStatus(c.Request.Context(), c.Param("id"), domain.BookingStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, newBookingResponse(booking))
}

// CancelBookingRequest is the HTTP request body for cancelling a booking.
type CancelBookingRequest struct {
	Reason string `json:"reason,omitempty"`
}

// Cancel handles POST /v1/bookings/:id/cancel
func (h *BookingHandler) Cancel(c *gin.Context) {
	var req CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	booking, err := h.bookingService.Cancel(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, newBookingResponse(booking))
}

// RateBookingRequest is the HTTP request body for rating a booking.
type RateBookingRequest struct {
	RatedBy  string  `json:"rated_by"` // user or driver
	Rating   float64 `json:"rating"`
	Feedback string  `json:"feedback,omitempty"`
}

// Rate handles POST /v1/bookings/:id/rate
func (h *BookingHandler) Rate(c *gin.Context) {
	var req RateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	booking, err := h.bookingService.Rate(c.Request.Context(), c.Param("id"), service.RatedBy(req.RatedBy), req.Rating, req.Feedback)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, newBookingResponse(booking))
}

func newBookingListResponse(bookings []*domain.Booking) []BookingResponse {
	response := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		response = append(response, newBookingResponse(b))
	}
	return response
}
