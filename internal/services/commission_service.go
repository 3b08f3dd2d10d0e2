package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/horizon-travel/crm-api/internal/models"
	"github.com/horizon-travel/crm-api/internal/repository"
	"github.com/horizon-travel/crm-api/internal/statemachine"
	"github.com/horizon-travel/crm-api/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CommissionAgent identifies who earns commission on a booking and at what
// rate. The lead's agent takes precedence over the booking's own agent.
type CommissionAgent struct {
	AgentID uint            `json:"agent_id"`
	Rate    decimal.Decimal `json:"rate"`
	Type    string          `json:"type"`
}

// CommissionSummary aggregates an agent's commissions per status bucket
type CommissionSummary struct {
	Total    decimal.Decimal `json:"total"`
	Pending  decimal.Decimal `json:"pending"`
	Approved decimal.Decimal `json:"approved"`
	Paid     decimal.Decimal `json:"paid"`
	Count    int             `json:"count"`
}

// CommissionService computes and transitions commissions. One commission
// per booking, amount = total × rate / 100, all arithmetic in decimals.
type CommissionService struct {
	repo            repository.CommissionRepository
	bookingRepo     repository.BookingRepository
	leadRepo        repository.LeadRepository
	userRepo        repository.UserRepository
	notificationSvc *NotificationService
	auditSvc        *AuditService
}

// NewCommissionService creates a new commission service
func NewCommissionService(
	repo repository.CommissionRepository,
	bookingRepo repository.BookingRepository,
	leadRepo repository.LeadRepository,
	userRepo repository.UserRepository,
	notificationSvc *NotificationService,
	auditSvc *AuditService,
) *CommissionService {
	return &CommissionService{
		repo:            repo,
		bookingRepo:     bookingRepo,
		leadRepo:        leadRepo,
		userRepo:        userRepo,
		notificationSvc: notificationSvc,
		auditSvc:        auditSvc,
	}
}

// ResolveAgent determines who earns commission for a booking. Priority:
// the lead's agent (SALES), then the booking's own agent (SERVICE when the
// booking came from a lead whose agent lookup failed, WALKIN otherwise).
// Returns nil when nobody qualifies.
func (s *CommissionService) ResolveAgent(ctx context.Context, booking *models.Booking) (*CommissionAgent, error) {
	if booking.LeadID != nil {
		lead, err := s.leadRepo.FindByID(ctx, *booking.LeadID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if lead != nil && lead.Agent != nil && lead.Agent.ID != 0 {
			return &CommissionAgent{
				AgentID: lead.Agent.ID,
				Rate:    lead.Agent.CommissionRate,
				Type:    models.CommissionTypeSales,
			}, nil
		}
	}

	if booking.AgentID != nil {
		agent, err := s.userRepo.FindByID(ctx, *booking.AgentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil
			}
			return nil, err
		}

		commissionType := models.CommissionTypeWalkin
		if booking.LeadID != nil {
			commissionType = models.CommissionTypeService
		}
		return &CommissionAgent{
			AgentID: agent.ID,
			Rate:    agent.CommissionRate,
			Type:    commissionType,
		}, nil
	}

	return nil, nil
}

// Calculate creates the commission for a booking, idempotently: an existing
// commission is returned unchanged, and a booking with no resolvable agent
// yields nil. The initial status is APPROVED when the booking is already
// settled, PENDING otherwise.
func (s *CommissionService) Calculate(ctx context.Context, bookingID uint) (*models.Commission, error) {
	booking, err := s.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	existing, err := s.repo.FindByBooking(ctx, bookingID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	agent, err := s.ResolveAgent(ctx, booking)
	if err != nil {
		return nil, err
	}
	if agent == nil {
		logger.Debug("no commission agent for booking", "booking_id", bookingID)
		return nil, nil
	}

	amount := booking.TotalAmount.Mul(agent.Rate).Div(decimal.NewFromInt(100))

	status := models.CommissionStatusPending
	if booking.IsSettled() {
		status = models.CommissionStatusApproved
	}

	note := fmt.Sprintf("Auto-generated commission (%s)", agent.Type)
	commission := &models.Commission{
		BookingID: bookingID,
		AgentID:   agent.AgentID,
		LeadID:    booking.LeadID,
		Type:      agent.Type,
		Rate:      agent.Rate,
		Amount:    amount,
		Status:    status,
		Note:      &note,
	}

	if err := s.repo.Create(ctx, commission); err != nil {
		if errors.Is(err, repository.ErrCommissionExists) {
			// Lost a creation race; the winner's row is the commission
			return s.repo.FindByBooking(ctx, bookingID)
		}
		return nil, err
	}

	return commission, nil
}

// RefreshStatus re-derives the commission status from the booking's payment
// state: settled flips PENDING to APPROVED, a regressed payment drops
// APPROVED back to PENDING, and a cancelled booking forces PENDING so a
// reversed sale can never drift toward payout. PAID is never touched.
func (s *CommissionService) RefreshStatus(ctx context.Context, bookingID uint) (*models.Commission, error) {
	booking, err := s.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	commission, err := s.repo.FindByBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if commission.IsPaid() {
		return commission, nil
	}

	shouldApprove := booking.IsSettled() && !booking.IsCancelled()

	cfsm := statemachine.NewCommissionFSM(commission)
	switch {
	case shouldApprove && commission.MayApprove():
		if err := cfsm.Approve(ctx); err != nil {
			return nil, err
		}
	case !shouldApprove && commission.MayRevert():
		if err := cfsm.Revert(ctx); err != nil {
			return nil, err
		}
	default:
		return commission, nil
	}

	if err := s.repo.Update(ctx, commission); err != nil {
		return nil, err
	}

	if commission.Status == models.CommissionStatusApproved {
		_ = s.notificationSvc.NotifyUser(ctx, commission.AgentID,
			"Commission approved",
			fmt.Sprintf("Your commission of %s for booking #%d is approved for payout", commission.Amount.StringFixed(2), bookingID),
			models.NotificationTypeCommissionApproved)
	}

	return commission, nil
}

// MarkPaid pays out an approved commission. This is the only path to PAID;
// anything not APPROVED is rejected.
func (s *CommissionService) MarkPaid(ctx context.Context, commissionID, userID uint) (*models.Commission, error) {
	commission, err := s.repo.FindByID(ctx, commissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	cfsm := statemachine.NewCommissionFSM(commission)
	if err := cfsm.Pay(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	if err := s.repo.Update(ctx, commission); err != nil {
		return nil, err
	}

	if err := s.auditSvc.Log(ctx, userID, models.AuditActionMarkPaid, "Commission", commission.ID,
		fmt.Sprintf("commission of %s marked paid", commission.Amount.StringFixed(2)), "", ""); err != nil {
		logger.Error("failed to audit commission payout", "commission_id", commission.ID, "error", err)
	}

	_ = s.notificationSvc.NotifyUser(ctx, commission.AgentID,
		"Commission paid",
		fmt.Sprintf("Your commission of %s has been paid out", commission.Amount.StringFixed(2)),
		models.NotificationTypeCommissionPaid)

	return commission, nil
}

// Get returns a commission by ID
func (s *CommissionService) Get(ctx context.Context, id uint) (*models.Commission, error) {
	commission, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return commission, nil
}

// List returns commissions matching the query
func (s *CommissionService) List(ctx context.Context, query *repository.ListQuery) ([]models.Commission, int64, error) {
	return s.repo.List(ctx, query)
}

// AgentSummary totals an agent's commissions per status bucket. All sums
// are decimal so repeated aggregation never drifts.
func (s *CommissionService) AgentSummary(ctx context.Context, agentID uint) (*CommissionSummary, error) {
	commissions, err := s.repo.FindByAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}

	summary := &CommissionSummary{
		Total:    decimal.Zero,
		Pending:  decimal.Zero,
		Approved: decimal.Zero,
		Paid:     decimal.Zero,
		Count:    len(commissions),
	}

	for _, c := range commissions {
		switch c.Status {
		case models.CommissionStatusPending:
			summary.Pending = summary.Pending.Add(c.Amount)
		case models.CommissionStatusApproved:
			summary.Approved = summary.Approved.Add(c.Amount)
		case models.CommissionStatusPaid:
			summary.Paid = summary.Paid.Add(c.Amount)
		}
		summary.Total = summary.Total.Add(c.Amount)
	}

	return summary, nil
}
