package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/horizon-travel/crm-api/internal/services"
)

type AuditHandler struct {
	auditService *services.AuditService
}

func NewAuditHandler(auditService *services.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// @Summary List Audit Logs
// @Description Recent audit entries, newest first (Admin)
// @Tags Audit
// @Produce json
// @Param limit query int false "Max items" default(50)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /audit_logs [get]
func (h *AuditHandler) Index(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	logs, total, err := h.auditService.List(c.Request.Context(), limit, offset)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"audit_logs": logs, "pagination": gin.H{"total": total}})
}

// @Summary Entity Audit Trail
// @Description Audit entries for a single record (Admin)
// @Tags Audit
// @Produce json
// @Param entity path string true "Entity name"
// @Param entity_id path int true "Entity ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /audit_logs/{entity}/{entity_id} [get]
func (h *AuditHandler) ByEntity(c *gin.Context) {
	logs, err := h.auditService.ListByEntity(c.Request.Context(), c.Param("entity"), paramID(c, "entity_id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"audit_logs": logs})
}
