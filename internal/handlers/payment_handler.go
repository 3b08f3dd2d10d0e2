package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/horizon-travel/crm-api/internal/middleware"
	"github.com/horizon-travel/crm-api/internal/models"
	"github.com/horizon-travel/crm-api/internal/services"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// @Summary List Payments
// @Tags Payments
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param booking_id query string false "Filter by booking"
// @Param method query string false "Filter by payment method"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /payments [get]
func (h *PaymentHandler) Index(c *gin.Context) {
	query := listQueryFromContext(c, "booking_id", "method")

	payments, total, err := h.paymentService.List(c.Request.Context(), query)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payments": payments, "pagination": gin.H{"total": total}})
}

// @Summary Get Payment
// @Tags Payments
// @Produce json
// @Param payment_id path int true "Payment ID"
// @Success 200 {object} models.Payment
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /payments/{payment_id} [get]
func (h *PaymentHandler) Show(c *gin.Context) {
	payment, err := h.paymentService.FindByID(c.Request.Context(), paramID(c, "payment_id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": payment})
}

// @Summary Record Payment
// @Description Records a payment against a booking and re-derives the booking's payment status
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body models.Payment true "Payment Data"
// @Success 201 {object} models.Payment
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /payments [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	var payment models.Payment
	if err := c.ShouldBindJSON(&payment); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recorded, err := h.paymentService.Record(c.Request.Context(), &payment, middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"payment": recorded})
}

// @Summary Delete Payment
// @Description Removes a payment and re-derives the booking's payment status (Admin)
// @Tags Payments
// @Param payment_id path int true "Payment ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /payments/{payment_id} [delete]
func (h *PaymentHandler) Delete(c *gin.Context) {
	if err := h.paymentService.Delete(c.Request.Context(), paramID(c, "payment_id"), middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent()); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "payment deleted"})
}

// @Summary Upload Receipt
// @Description Upload a payment receipt image or PDF
// @Tags Payments
// @Accept multipart/form-data
// @Produce json
// @Param payment_id path int true "Payment ID"
// @Param receipt formData file true "Receipt File"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /payments/{payment_id}/receipt [post]
func (h *PaymentHandler) UploadReceipt(c *gin.Context) {
	file, header, err := c.Request.FormFile("receipt")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "receipt file is required"})
		return
	}
	defer file.Close()

	payment, err := h.paymentService.UploadReceipt(c.Request.Context(), paramID(c, "payment_id"), file, header)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "receipt uploaded", "payment": payment})
}

// @Summary Download Receipt
// @Description Download a payment receipt
// @Tags Payments
// @Produce application/octet-stream
// @Param payment_id path int true "Payment ID"
// @Success 200 {file} file "receipt"
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /payments/{payment_id}/receipt [get]
func (h *PaymentHandler) DownloadReceipt(c *gin.Context) {
	fullPath, err := h.paymentService.ReceiptPath(c.Request.Context(), paramID(c, "payment_id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.File(fullPath)
}

// @Summary Recalculate Booking Payments
// @Description Re-aggregates a booking's paid amount from its payments (Admin)
// @Tags Payments
// @Produce json
// @Param booking_id path int true "Booking ID"
// @Success 200 {object} models.BookingResponse
// @Security BearerAuth
// @Router /bookings/{booking_id}/recalculate [post]
func (h *PaymentHandler) Recalculate(c *gin.Context) {
	booking, err := h.paymentService.RecalculateBookingPaid(c.Request.Context(), paramID(c, "booking_id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking.ToResponse()})
}
