package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/horizon-travel/crm-api/internal/repository"
	"github.com/horizon-travel/crm-api/internal/services"
	"github.com/horizon-travel/crm-api/internal/storage"
)

// Handlers holds all handler instances
type Handlers struct {
	Health       *HealthHandler
	Auth         *AuthHandler
	User         *UserHandler
	Customer     *CustomerHandler
	Trip         *TripHandler
	Lead         *LeadHandler
	Booking      *BookingHandler
	Payment      *PaymentHandler
	Commission   *CommissionHandler
	Dashboard    *DashboardHandler
	Notification *NotificationHandler
	Audit        *AuditHandler
	Job          *JobHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services, storage *storage.LocalStorage) *Handlers {
	return &Handlers{
		Health:       NewHealthHandler(),
		Auth:         NewAuthHandler(svcs.Auth),
		User:         NewUserHandler(svcs.User),
		Customer:     NewCustomerHandler(svcs.Customer),
		Trip:         NewTripHandler(svcs.Trip),
		Lead:         NewLeadHandler(svcs.Lead),
		Booking:      NewBookingHandler(svcs.Booking),
		Payment:      NewPaymentHandler(svcs.Payment),
		Commission:   NewCommissionHandler(svcs.Commission, svcs.Report),
		Dashboard:    NewDashboardHandler(svcs.Dashboard, svcs.Export, svcs.Report),
		Notification: NewNotificationHandler(svcs.Notification),
		Audit:        NewAuditHandler(svcs.Audit),
		Job:          NewJobHandler(svcs.Job, svcs.Lead),
	}
}

// listQueryFromContext builds a repository query from common pagination and
// filter params
func listQueryFromContext(c *gin.Context, filterKeys ...string) *repository.ListQuery {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if query.Page < 1 {
		query.Page = 1
	}
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search_term")
	query.SortBy = c.Query("sort_by")
	query.SortDir = c.Query("sort_dir")
	if query.Search != "" {
		query.Filters["search_term"] = query.Search
	}
	for _, key := range filterKeys {
		if v := c.Query(key); v != "" {
			query.Filters[key] = v
		}
	}
	return query
}

// handleServiceError maps service sentinel errors onto HTTP statuses
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrReasonRequired):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrStatusLocked), errors.Is(err, services.ErrInvalidState), errors.Is(err, services.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrUnauthorized), errors.Is(err, services.ErrInvalidPassword):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// paramID parses a uint path parameter
func paramID(c *gin.Context, name string) uint {
	id, _ := strconv.ParseUint(c.Param(name), 10, 32)
	return uint(id)
}
