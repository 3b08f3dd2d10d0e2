package services

import (
	"context"

	"github.com/horizon-travel/crm-api/internal/models"
	"github.com/horizon-travel/crm-api/internal/repository"
	"github.com/shopspring/decimal"
)

// DashboardSummary is the back-office landing page payload: trip phases,
// the lead funnel and commission money per status, all from one snapshot.
type DashboardSummary struct {
	TripsByStatus     map[string]int             `json:"trips_by_status"`
	LeadsByStatus     map[string]int64           `json:"leads_by_status"`
	CommissionTotals  map[string]decimal.Decimal `json:"commission_totals"`
	CommissionPayable decimal.Decimal            `json:"commission_payable"`
}

type DashboardService struct {
	tripSvc        *TripService
	leadRepo       repository.LeadRepository
	commissionRepo repository.CommissionRepository
}

func NewDashboardService(tripSvc *TripService, leadRepo repository.LeadRepository, commissionRepo repository.CommissionRepository) *DashboardService {
	return &DashboardService{
		tripSvc:        tripSvc,
		leadRepo:       leadRepo,
		commissionRepo: commissionRepo,
	}
}

func (s *DashboardService) Summary(ctx context.Context) (*DashboardSummary, error) {
	trips, err := s.tripSvc.StatusDistribution(ctx)
	if err != nil {
		return nil, err
	}

	leads, err := s.leadRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	commissions, err := s.commissionRepo.TotalsByStatus(ctx)
	if err != nil {
		return nil, err
	}

	payable := decimal.Zero
	if approved, ok := commissions[models.CommissionStatusApproved]; ok {
		payable = payable.Add(approved)
	}

	return &DashboardSummary{
		TripsByStatus:     trips,
		LeadsByStatus:     leads,
		CommissionTotals:  commissions,
		CommissionPayable: payable,
	}, nil
}
