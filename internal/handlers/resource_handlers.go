package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/horizon-travel/crm-api/internal/models"
	"github.com/horizon-travel/crm-api/internal/services"
)

type CustomerHandler struct {
	customerService *services.CustomerService
}

func NewCustomerHandler(customerService *services.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// @Summary List Customers
// @Tags Customers
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search_term query string false "Search term"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /customers [get]
func (h *CustomerHandler) Index(c *gin.Context) {
	query := listQueryFromContext(c)

	customers, total, err := h.customerService.List(c.Request.Context(), query)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"customers": customers, "pagination": gin.H{"total": total}})
}

// @Summary Get Customer
// @Tags Customers
// @Produce json
// @Param customer_id path int true "Customer ID"
// @Success 200 {object} models.Customer
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /customers/{customer_id} [get]
func (h *CustomerHandler) Show(c *gin.Context) {
	customer, err := h.customerService.Get(c.Request.Context(), paramID(c, "customer_id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer": customer})
}

// @Summary Create Customer
// @Tags Customers
// @Accept json
// @Produce json
// @Param request body models.Customer true "Customer Data"
// @Success 201 {object} models.Customer
// @Security BearerAuth
// @Router /customers [post]
func (h *CustomerHandler) Create(c *gin.Context) {
	var customer models.Customer
	if err := c.ShouldBindJSON(&customer); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.customerService.Create(c.Request.Context(), &customer); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"customer": customer})
}

// @Summary Update Customer
// @Tags Customers
// @Accept json
// @Produce json
// @Param customer_id path int true "Customer ID"
// @Param request body models.Customer true "Customer Data"
// @Success 200 {object} models.Customer
// @Security BearerAuth
// @Router /customers/{customer_id} [put]
func (h *CustomerHandler) Update(c *gin.Context) {
	var customer models.Customer
	if err := c.ShouldBindJSON(&customer); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	customer.ID = paramID(c, "customer_id")

	if err := h.customerService.Update(c.Request.Context(), &customer); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"customer": customer})
}

// @Summary Delete Customer
// @Description Deletes a customer without live bookings
// @Tags Customers
// @Param customer_id path int true "Customer ID"
// @Success 200 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /customers/{customer_id} [delete]
func (h *CustomerHandler) Delete(c *gin.Context) {
	if err := h.customerService.Delete(c.Request.Context(), paramID(c, "customer_id")); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "customer deleted"})
}

// @Summary Customer Bookings
// @Tags Customers
// @Produce json
// @Param customer_id path int true "Customer ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /customers/{customer_id}/bookings [get]
func (h *CustomerHandler) Bookings(c *gin.Context) {
	bookings, err := h.customerService.Bookings(c.Request.Context(), paramID(c, "customer_id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	responses := make([]models.BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		responses = append(responses, b.ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"bookings": responses})
}

type TripHandler struct {
	tripService *services.TripService
}

func NewTripHandler(tripService *services.TripService) *TripHandler {
	return &TripHandler{tripService: tripService}
}

// @Summary List Trips
// @Description Lists trips with their derived status and seat availability
// @Tags Trips
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param status query string false "Filter by derived status"
// @Param destination query string false "Filter by destination"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /trips [get]
func (h *TripHandler) Index(c *gin.Context) {
	query := listQueryFromContext(c, "status", "destination")

	trips, total, err := h.tripService.List(c.Request.Context(), query)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"trips": trips, "pagination": gin.H{"total": total}})
}

// @Summary Get Trip
// @Tags Trips
// @Produce json
// @Param trip_id path int true "Trip ID"
// @Success 200 {object} models.TripResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /trips/{trip_id} [get]
func (h *TripHandler) Show(c *gin.Context) {
	trip, err := h.tripService.Get(c.Request.Context(), paramID(c, "trip_id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trip": trip})
}

// @Summary Create Trip
// @Tags Trips
// @Accept json
// @Produce json
// @Param request body models.Trip true "Trip Data"
// @Success 201 {object} models.Trip
// @Security BearerAuth
// @Router /trips [post]
func (h *TripHandler) Create(c *gin.Context) {
	var trip models.Trip
	if err := c.ShouldBindJSON(&trip); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if trip.EndDate.Before(trip.StartDate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must not be before start_date"})
		return
	}

	if err := h.tripService.Create(c.Request.Context(), &trip); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"trip": trip})
}

// @Summary Update Trip
// @Tags Trips
// @Accept json
// @Produce json
// @Param trip_id path int true "Trip ID"
// @Param request body models.Trip true "Trip Data"
// @Success 200 {object} models.Trip
// @Security BearerAuth
// @Router /trips/{trip_id} [put]
func (h *TripHandler) Update(c *gin.Context) {
	var trip models.Trip
	if err := c.ShouldBindJSON(&trip); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	trip.ID = paramID(c, "trip_id")

	if err := h.tripService.Update(c.Request.Context(), &trip); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"trip": trip})
}

// @Summary Delete Trip
// @Tags Trips
// @Param trip_id path int true "Trip ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /trips/{trip_id} [delete]
func (h *TripHandler) Delete(c *gin.Context) {
	if err := h.tripService.Delete(c.Request.Context(), paramID(c, "trip_id")); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "trip deleted"})
}
