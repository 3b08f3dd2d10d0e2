package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/horizon-travel/crm-api/internal/middleware"
	"github.com/horizon-travel/crm-api/internal/models"
	"github.com/horizon-travel/crm-api/internal/services"
)

type LeadHandler struct {
	leadService *services.LeadService
}

func NewLeadHandler(leadService *services.LeadService) *LeadHandler {
	return &LeadHandler{leadService: leadService}
}

type ChangeLeadStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}

// @Summary List Leads
// @Tags Leads
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param status query string false "Filter by status"
// @Param agent_id query string false "Filter by agent"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /leads [get]
func (h *LeadHandler) Index(c *gin.Context) {
	query := listQueryFromContext(c, "status", "agent_id")

	leads, total, err := h.leadService.List(c.Request.Context(), query)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	responses := make([]models.LeadResponse, 0, len(leads))
	for _, l := range leads {
		responses = append(responses, l.ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"leads": responses, "pagination": gin.H{"total": total}})
}

// @Summary Get Lead
// @Tags Leads
// @Produce json
// @Param lead_id path int true "Lead ID"
// @Success 200 {object} models.LeadResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /leads/{lead_id} [get]
func (h *LeadHandler) Show(c *gin.Context) {
	lead, err := h.leadService.Get(c.Request.Context(), paramID(c, "lead_id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	// Tells the UI whether to offer the manual status dialog
	editable, err := h.leadService.CanUpdateStatus(c.Request.Context(), lead.ID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"lead": lead.ToResponse(), "can_update_status": editable})
}

// @Summary Create Lead
// @Tags Leads
// @Accept json
// @Produce json
// @Param request body models.Lead true "Lead Data"
// @Success 201 {object} models.LeadResponse
// @Security BearerAuth
// @Router /leads [post]
func (h *LeadHandler) Create(c *gin.Context) {
	var lead models.Lead
	if err := c.ShouldBindJSON(&lead); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.leadService.Create(c.Request.Context(), &lead); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"lead": lead.ToResponse()})
}

// @Summary Update Lead
// @Description Updates lead details; status changes go through the status endpoint
// @Tags Leads
// @Accept json
// @Produce json
// @Param lead_id path int true "Lead ID"
// @Param request body models.Lead true "Lead Data"
// @Success 200 {object} models.LeadResponse
// @Security BearerAuth
// @Router /leads/{lead_id} [put]
func (h *LeadHandler) Update(c *gin.Context) {
	var lead models.Lead
	if err := c.ShouldBindJSON(&lead); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lead.ID = paramID(c, "lead_id")

	if err := h.leadService.Update(c.Request.Context(), &lead); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"lead": lead.ToResponse()})
}

// @Summary Change Lead Status
// @Description Applies a manual status transition, enforcing pipeline order and reason rules
// @Tags Leads
// @Accept json
// @Produce json
// @Param lead_id path int true "Lead ID"
// @Param request body ChangeLeadStatusRequest true "Target status and optional reason"
// @Success 200 {object} models.LeadResponse
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /leads/{lead_id}/status [patch]
func (h *LeadHandler) ChangeStatus(c *gin.Context) {
	var req ChangeLeadStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lead, err := h.leadService.ChangeStatus(c.Request.Context(), paramID(c, "lead_id"), req.Status, req.Reason, middleware.GetUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"lead": lead.ToResponse()})
}

// @Summary Validate Lead Status Change
// @Description Dry-runs a status transition and reports whether it would be allowed
// @Tags Leads
// @Accept json
// @Produce json
// @Param lead_id path int true "Lead ID"
// @Param request body ChangeLeadStatusRequest true "Target status"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /leads/{lead_id}/status/validate [post]
func (h *LeadHandler) ValidateStatus(c *gin.Context) {
	var req ChangeLeadStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.leadService.ValidateStatusChange(c.Request.Context(), paramID(c, "lead_id"), req.Status)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"allowed":         result.Allowed,
		"requires_reason": result.RequiresReason,
		"warning":         result.Warning,
	})
}

// @Summary Sync Lead From Bookings
// @Description Recomputes the lead's system status from its bookings
// @Tags Leads
// @Produce json
// @Param lead_id path int true "Lead ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /leads/{lead_id}/sync [post]
func (h *LeadHandler) Sync(c *gin.Context) {
	status, err := h.leadService.SyncFromBookings(c.Request.Context(), paramID(c, "lead_id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}
