package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/horizon-travel/crm-api/internal/models"
	"github.com/horizon-travel/crm-api/internal/repository"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

type ReportService struct {
	commissionRepo repository.CommissionRepository
	paymentRepo    repository.PaymentRepository
	userRepo       repository.UserRepository
}

func NewReportService(
	commissionRepo repository.CommissionRepository,
	paymentRepo repository.PaymentRepository,
	userRepo repository.UserRepository,
) *ReportService {
	return &ReportService{
		commissionRepo: commissionRepo,
		paymentRepo:    paymentRepo,
		userRepo:       userRepo,
	}
}

// GenerateAgentStatementPDF renders an agent's commission statement
func (s *ReportService) GenerateAgentStatementPDF(ctx context.Context, agentID uint) (*bytes.Buffer, error) {
	agent, err := s.userRepo.FindByID(ctx, agentID)
	if err != nil {
		return nil, err
	}

	commissions, err := s.commissionRepo.FindByAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Commission Statement")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(60, 6, "Agent:")
	pdf.Cell(60, 6, agent.FullName)
	pdf.Ln(6)
	pdf.Cell(60, 6, "Commission rate:")
	pdf.Cell(60, 6, agent.CommissionRate.StringFixed(2)+"%")
	pdf.Ln(6)
	pdf.Cell(60, 6, "Generated:")
	pdf.Cell(60, 6, time.Now().Format("2006-01-02"))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(20, 8, "Booking")
	pdf.Cell(25, 8, "Type")
	pdf.Cell(20, 8, "Rate %")
	pdf.Cell(30, 8, "Amount")
	pdf.Cell(30, 8, "Status")
	pdf.Cell(30, 8, "Paid At")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	totals := map[string]decimal.Decimal{}
	for _, c := range commissions {
		paidAt := "-"
		if c.PaidAt != nil {
			paidAt = c.PaidAt.Format("2006-01-02")
		}
		pdf.Cell(20, 7, fmt.Sprintf("#%d", c.BookingID))
		pdf.Cell(25, 7, c.Type)
		pdf.Cell(20, 7, c.Rate.StringFixed(2))
		pdf.Cell(30, 7, c.Amount.StringFixed(2))
		pdf.Cell(30, 7, c.Status)
		pdf.Cell(30, 7, paidAt)
		pdf.Ln(7)

		totals[c.Status] = totals[c.Status].Add(c.Amount)
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 10)
	for _, status := range []string{models.CommissionStatusPending, models.CommissionStatusApproved, models.CommissionStatusPaid} {
		total, ok := totals[status]
		if !ok {
			continue
		}
		pdf.Cell(60, 7, fmt.Sprintf("Total %s:", status))
		pdf.Cell(40, 7, total.StringFixed(2))
		pdf.Ln(7)
	}

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// GenerateMonthlySummaryPDF renders a styled HTML summary of the month's
// payments through wkhtmltopdf
func (s *ReportService) GenerateMonthlySummaryPDF(ctx context.Context, month, year int) (*bytes.Buffer, error) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Second)

	query := repository.NewListQuery()
	query.PerPage = 0
	query.Filters["start_date"] = start.Format("2006-01-02")
	query.Filters["end_date"] = end.Format("2006-01-02 15:04:05")

	payments, _, err := s.paymentRepo.List(ctx, query)
	if err != nil {
		return nil, err
	}

	type PaymentRow struct {
		ID         uint
		BookingID  uint
		Amount     string
		Method     string
		PaidAt     string
		RecordedBy string
	}

	total := decimal.Zero
	rows := make([]PaymentRow, 0, len(payments))
	for _, p := range payments {
		recordedBy := ""
		if p.RecordedByUser != nil && p.RecordedByUser.ID != 0 {
			recordedBy = p.RecordedByUser.FullName
		}
		rows = append(rows, PaymentRow{
			ID:         p.ID,
			BookingID:  p.BookingID,
			Amount:     p.Amount.StringFixed(2),
			Method:     p.Method,
			PaidAt:     p.PaidAt.Format("2006-01-02"),
			RecordedBy: recordedBy,
		})
		total = total.Add(p.Amount)
	}

	data := map[string]interface{}{
		"Month":    start.Format("January 2006"),
		"Payments": rows,
		"Count":    len(rows),
		"Total":    total.StringFixed(2),
		"Date":     time.Now().Format("2006-01-02"),
	}

	return s.generatePDF("monthly_summary.html", data)
}

// generatePDF renders an HTML template and converts it with wkhtmltopdf
func (s *ReportService) generatePDF(templateName string, data interface{}) (*bytes.Buffer, error) {
	tmplPath := fmt.Sprintf("internal/services/templates/reports/%s", templateName)
	if _, err := os.Stat(tmplPath); os.IsNotExist(err) {
		tmplPath = fmt.Sprintf("templates/reports/%s", templateName)
	}

	tmpl, err := template.ParseFiles(tmplPath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", templateName, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create pdf generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.Grayscale.Set(false)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(buf.Bytes()))
	page.EnableLocalFileAccess.Set(true)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create pdf: %w", err)
	}

	return pdfg.Buffer(), nil
}
