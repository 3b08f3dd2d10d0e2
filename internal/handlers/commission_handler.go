package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/horizon-travel/crm-api/internal/middleware"
	"github.com/horizon-travel/crm-api/internal/services"
)

type CommissionHandler struct {
	commissionService *services.CommissionService
	reportService     *services.ReportService
}

func NewCommissionHandler(commissionService *services.CommissionService, reportService *services.ReportService) *CommissionHandler {
	return &CommissionHandler{commissionService: commissionService, reportService: reportService}
}

// @Summary List Commissions
// @Tags Commissions
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param status query string false "Filter by status"
// @Param agent_id query string false "Filter by agent"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /commissions [get]
func (h *CommissionHandler) Index(c *gin.Context) {
	query := listQueryFromContext(c, "status", "agent_id")

	// Agents only ever see their own commissions.
	if !middleware.IsAdmin(c) {
		query.Filters["agent_id"] = fmt.Sprintf("%d", middleware.GetUserID(c))
	}

	commissions, total, err := h.commissionService.List(c.Request.Context(), query)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"commissions": commissions, "pagination": gin.H{"total": total}})
}

// @Summary Get Commission
// @Tags Commissions
// @Produce json
// @Param commission_id path int true "Commission ID"
// @Success 200 {object} models.Commission
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /commissions/{commission_id} [get]
func (h *CommissionHandler) Show(c *gin.Context) {
	commission, err := h.commissionService.Get(c.Request.Context(), paramID(c, "commission_id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"commission": commission})
}

// @Summary Mark Commission Paid
// @Description Settles an approved commission (Admin)
// @Tags Commissions
// @Produce json
// @Param commission_id path int true "Commission ID"
// @Success 200 {object} models.Commission
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /commissions/{commission_id}/pay [post]
func (h *CommissionHandler) MarkPaid(c *gin.Context) {
	commission, err := h.commissionService.MarkPaid(c.Request.Context(), paramID(c, "commission_id"), middleware.GetUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"commission": commission, "message": "commission marked as paid"})
}

// @Summary Refresh Commission Status
// @Description Re-derives a booking's commission status from its settlement state (Admin)
// @Tags Commissions
// @Produce json
// @Param booking_id path int true "Booking ID"
// @Success 200 {object} models.Commission
// @Security BearerAuth
// @Router /bookings/{booking_id}/commission/refresh [post]
func (h *CommissionHandler) Refresh(c *gin.Context) {
	commission, err := h.commissionService.RefreshStatus(c.Request.Context(), paramID(c, "booking_id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if commission == nil {
		c.JSON(http.StatusOK, gin.H{"commission": nil, "message": "booking has no commission"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"commission": commission})
}

// @Summary My Commission Summary
// @Description Per-status totals for the authenticated agent
// @Tags Commissions
// @Produce json
// @Success 200 {object} services.CommissionSummary
// @Security BearerAuth
// @Router /commissions/summary [get]
func (h *CommissionHandler) MySummary(c *gin.Context) {
	summary, err := h.commissionService.AgentSummary(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// @Summary Agent Commission Summary
// @Description Per-status totals for any agent (Admin)
// @Tags Commissions
// @Produce json
// @Param agent_id path int true "Agent ID"
// @Success 200 {object} services.CommissionSummary
// @Security BearerAuth
// @Router /agents/{agent_id}/commissions/summary [get]
func (h *CommissionHandler) AgentSummary(c *gin.Context) {
	summary, err := h.commissionService.AgentSummary(c.Request.Context(), paramID(c, "agent_id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// @Summary Agent Statement PDF
// @Description Download an agent's commission statement as PDF
// @Tags Reports
// @Produce application/pdf
// @Param agent_id path int true "Agent ID"
// @Success 200 {file} file "statement.pdf"
// @Security BearerAuth
// @Router /agents/{agent_id}/statement [get]
func (h *CommissionHandler) AgentStatement(c *gin.Context) {
	agentID := paramID(c, "agent_id")
	if !middleware.IsAdmin(c) && agentID != middleware.GetUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have access to this resource"})
		return
	}

	buf, err := h.reportService.GenerateAgentStatementPDF(c.Request.Context(), agentID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=statement_%d.pdf", agentID))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
