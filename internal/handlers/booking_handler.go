package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/horizon-travel/crm-api/internal/middleware"
	"github.com/horizon-travel/crm-api/internal/models"
	"github.com/horizon-travel/crm-api/internal/services"
	"github.com/shopspring/decimal"
)

type BookingHandler struct {
	bookingService *services.BookingService
}

func NewBookingHandler(bookingService *services.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

type UpdateBookingRequest struct {
	Travellers int             `json:"travellers" binding:"required,min=1"`
	Extras     decimal.Decimal `json:"extras"`
	Discount   decimal.Decimal `json:"discount"`
	Note       *string         `json:"note"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason"`
}

// @Summary List Bookings
// @Tags Bookings
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param payment_status query string false "Filter by payment status"
// @Param trip_id query string false "Filter by trip"
// @Param customer_id query string false "Filter by customer"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /bookings [get]
func (h *BookingHandler) Index(c *gin.Context) {
	query := listQueryFromContext(c, "payment_status", "trip_id", "customer_id")

	bookings, total, err := h.bookingService.List(c.Request.Context(), query)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	responses := make([]models.BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		responses = append(responses, b.ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"bookings": responses, "pagination": gin.H{"total": total}})
}

// @Summary Get Booking
// @Tags Bookings
// @Produce json
// @Param booking_id path int true "Booking ID"
// @Success 200 {object} models.BookingResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /bookings/{booking_id} [get]
func (h *BookingHandler) Show(c *gin.Context) {
	booking, err := h.bookingService.Get(c.Request.Context(), paramID(c, "booking_id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking.ToResponse()})
}

// @Summary Create Booking
// @Description Creates a booking, checks seat availability and prices it from the trip
// @Tags Bookings
// @Accept json
// @Produce json
// @Param request body services.CreateBookingInput true "Booking Data"
// @Success 201 {object} models.BookingResponse
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	var input services.CreateBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := h.bookingService.Create(c.Request.Context(), &input, middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"booking": booking.ToResponse()})
}

// @Summary Update Booking
// @Description Adjusts travellers, extras and discount; the total is repriced
// @Tags Bookings
// @Accept json
// @Produce json
// @Param booking_id path int true "Booking ID"
// @Param request body UpdateBookingRequest true "Booking Changes"
// @Success 200 {object} models.BookingResponse
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /bookings/{booking_id} [put]
func (h *BookingHandler) Update(c *gin.Context) {
	var req UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := h.bookingService.Update(c.Request.Context(), paramID(c, "booking_id"), req.Travellers, req.Extras, req.Discount, req.Note, middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"booking": booking.ToResponse()})
}

// @Summary Cancel Booking
// @Description Cancels a booking and re-syncs its commission and lead
// @Tags Bookings
// @Accept json
// @Produce json
// @Param booking_id path int true "Booking ID"
// @Param request body CancelBookingRequest false "Cancellation reason"
// @Success 200 {object} models.BookingResponse
// @Security BearerAuth
// @Router /bookings/{booking_id}/cancel [post]
func (h *BookingHandler) Cancel(c *gin.Context) {
	var req CancelBookingRequest
	c.ShouldBindJSON(&req)

	booking, err := h.bookingService.Cancel(c.Request.Context(), paramID(c, "booking_id"), middleware.GetUserID(c), req.Reason, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"booking": booking.ToResponse()})
}
