package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/horizon-travel/crm-api/internal/services"
)

type DashboardHandler struct {
	dashboardService *services.DashboardService
	exportService    *services.ExportService
	reportService    *services.ReportService
}

func NewDashboardHandler(dashboardService *services.DashboardService, exportService *services.ExportService, reportService *services.ReportService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		exportService:    exportService,
		reportService:    reportService,
	}
}

// @Summary Dashboard Summary
// @Description Trip and lead status distributions plus commission totals
// @Tags Dashboard
// @Produce json
// @Success 200 {object} services.DashboardSummary
// @Security BearerAuth
// @Router /dashboard/summary [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	summary, err := h.dashboardService.Summary(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// @Summary Export Trips
// @Description Download the trip catalogue as CSV or XLSX
// @Tags Dashboard
// @Produce application/octet-stream
// @Param format query string false "csv or xlsx" default(csv)
// @Success 200 {file} file "trips export"
// @Security BearerAuth
// @Router /dashboard/export/trips [get]
func (h *DashboardHandler) ExportTrips(c *gin.Context) {
	var (
		data     []byte
		filename string
		err      error
	)
	if c.DefaultQuery("format", "csv") == "xlsx" {
		data, filename, err = h.exportService.ExportTripsXLSX(c.Request.Context())
	} else {
		data, filename, err = h.exportService.ExportTripsCSV(c.Request.Context())
	}
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/octet-stream", data)
}

// @Summary Export Commissions
// @Description Download commissions as CSV or XLSX, optionally filtered
// @Tags Dashboard
// @Produce application/octet-stream
// @Param format query string false "csv or xlsx" default(csv)
// @Param status query string false "Filter by status"
// @Param agent_id query string false "Filter by agent"
// @Success 200 {file} file "commissions export"
// @Security BearerAuth
// @Router /dashboard/export/commissions [get]
func (h *DashboardHandler) ExportCommissions(c *gin.Context) {
	filters := map[string]string{}
	for _, key := range []string{"status", "agent_id"} {
		if v := c.Query(key); v != "" {
			filters[key] = v
		}
	}

	var (
		data     []byte
		filename string
		err      error
	)
	if c.DefaultQuery("format", "csv") == "xlsx" {
		data, filename, err = h.exportService.ExportCommissionsXLSX(c.Request.Context(), filters)
	} else {
		data, filename, err = h.exportService.ExportCommissionsCSV(c.Request.Context(), filters)
	}
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/octet-stream", data)
}

// @Summary Monthly Summary PDF
// @Description Download the monthly payment summary report
// @Tags Dashboard
// @Produce application/pdf
// @Param month query int false "Month (1-12), defaults to current"
// @Param year query int false "Year, defaults to current"
// @Success 200 {file} file "monthly summary"
// @Security BearerAuth
// @Router /dashboard/reports/monthly [get]
func (h *DashboardHandler) MonthlySummary(c *gin.Context) {
	now := time.Now()
	month, _ := strconv.Atoi(c.DefaultQuery("month", strconv.Itoa(int(now.Month()))))
	year, _ := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(now.Year())))
	if month < 1 || month > 12 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month must be between 1 and 12"})
		return
	}

	buf, err := h.reportService.GenerateMonthlySummaryPDF(c.Request.Context(), month, year)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=summary_%d_%02d.pdf", year, month))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
