package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/horizon-travel/crm-api/internal/repository"
	"github.com/xuri/excelize/v2"
)

// ExportService renders trip and commission listings as CSV or XLSX
type ExportService struct {
	tripSvc        *TripService
	commissionRepo repository.CommissionRepository
}

func NewExportService(tripSvc *TripService, commissionRepo repository.CommissionRepository) *ExportService {
	return &ExportService{tripSvc: tripSvc, commissionRepo: commissionRepo}
}

func (s *ExportService) ExportTripsCSV(ctx context.Context) ([]byte, string, error) {
	query := repository.NewListQuery()
	query.PerPage = 0
	trips, _, err := s.tripSvc.List(ctx, query)
	if err != nil {
		return nil, "", err
	}

	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)

	_ = writer.Write([]string{"ID", "Name", "Destination", "Start", "End", "Pax", "Booked", "Seats Left", "Price", "Status"})
	for _, t := range trips {
		_ = writer.Write([]string{
			fmt.Sprintf("%d", t.ID),
			t.Name,
			t.Destination,
			t.StartDate.Format("2006-01-02"),
			t.EndDate.Format("2006-01-02"),
			fmt.Sprintf("%d", t.Pax),
			fmt.Sprintf("%d", t.ActiveBookings),
			fmt.Sprintf("%d", t.SeatsLeft),
			t.Price.StringFixed(2),
			t.Status,
		})
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("trips_%s.csv", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

func (s *ExportService) ExportTripsXLSX(ctx context.Context) ([]byte, string, error) {
	query := repository.NewListQuery()
	query.PerPage = 0
	trips, _, err := s.tripSvc.List(ctx, query)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Trips"
	_ = f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	headers := []string{"ID", "Name", "Destination", "Start", "End", "Pax", "Booked", "Seats Left", "Price", "Status"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
		_ = f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for row, t := range trips {
		values := []interface{}{
			t.ID, t.Name, t.Destination,
			t.StartDate.Format("2006-01-02"), t.EndDate.Format("2006-01-02"),
			t.Pax, t.ActiveBookings, t.SeatsLeft,
			t.Price.InexactFloat64(), t.Status,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("trips_%s.xlsx", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

func (s *ExportService) ExportCommissionsCSV(ctx context.Context, filters map[string]string) ([]byte, string, error) {
	query := repository.NewListQuery()
	query.PerPage = 0
	for k, v := range filters {
		query.Filters[k] = v
	}
	commissions, _, err := s.commissionRepo.List(ctx, query)
	if err != nil {
		return nil, "", err
	}

	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)

	_ = writer.Write([]string{"ID", "Booking", "Agent", "Type", "Rate %", "Amount", "Status", "Paid At"})
	for _, c := range commissions {
		paidAt := ""
		if c.PaidAt != nil {
			paidAt = c.PaidAt.Format("2006-01-02")
		}
		_ = writer.Write([]string{
			fmt.Sprintf("%d", c.ID),
			fmt.Sprintf("%d", c.BookingID),
			c.Agent.FullName,
			c.Type,
			c.Rate.StringFixed(2),
			c.Amount.StringFixed(2),
			c.Status,
			paidAt,
		})
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("commissions_%s.csv", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

func (s *ExportService) ExportCommissionsXLSX(ctx context.Context, filters map[string]string) ([]byte, string, error) {
	query := repository.NewListQuery()
	query.PerPage = 0
	for k, v := range filters {
		query.Filters[k] = v
	}
	commissions, _, err := s.commissionRepo.List(ctx, query)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Commissions"
	_ = f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	headers := []string{"ID", "Booking", "Agent", "Type", "Rate %", "Amount", "Status", "Paid At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
		_ = f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for row, c := range commissions {
		paidAt := ""
		if c.PaidAt != nil {
			paidAt = c.PaidAt.Format("2006-01-02")
		}
		values := []interface{}{
			c.ID, c.BookingID, c.Agent.FullName, c.Type,
			c.Rate.InexactFloat64(), c.Amount.InexactFloat64(),
			c.Status, paidAt,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("commissions_%s.xlsx", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}
