package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/horizon-travel/crm-api/internal/services"
)

type JobHandler struct {
	jobService  *services.JobService
	leadService *services.LeadService
}

func NewJobHandler(jobSvc *services.JobService, leadSvc *services.LeadService) *JobHandler {
	return &JobHandler{
		jobService:  jobSvc,
		leadService: leadSvc,
	}
}

// Status returns the current worker status
// @Summary Get background job status
// @Description Get statistics about background jobs (active, completed, failed, queue length)
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} jobs.WorkerStats
// @Router /jobs/status [get]
func (h *JobHandler) Status(c *gin.Context) {
	status := h.jobService.GetStatus()
	c.JSON(http.StatusOK, status)
}

// @Summary Sweep Abandoned Leads
// @Description Cancels leads idle past the abandonment window (Admin)
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /jobs/sweep_leads [post]
func (h *JobHandler) SweepLeads(c *gin.Context) {
	count, err := h.leadService.SweepAbandoned(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "sweep completed", "cancelled": count})
}
