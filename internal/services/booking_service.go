package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/horizon-travel/crm-api/internal/models"
	"github.com/horizon-travel/crm-api/internal/repository"
	"github.com/horizon-travel/crm-api/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreateBookingInput carries the fields a staff member submits when
// confirming a sale. The total is computed here, never taken from the client.
type CreateBookingInput struct {
	CustomerID uint            `json:"customer_id" binding:"required"`
	TripID     uint            `json:"trip_id" binding:"required"`
	LeadID     *uint           `json:"lead_id"`
	AgentID    *uint           `json:"agent_id"`
	Travellers int             `json:"travellers" binding:"required,min=1"`
	Extras     decimal.Decimal `json:"extras"`
	Discount   decimal.Decimal `json:"discount"`
	Note       *string         `json:"note"`
}

type BookingService struct {
	repo          repository.BookingRepository
	tripRepo      repository.TripRepository
	customerRepo  repository.CustomerRepository
	leadRepo      repository.LeadRepository
	commissionSvc *CommissionService
	leadSvc       *LeadService
	auditSvc      *AuditService
}

func NewBookingService(
	repo repository.BookingRepository,
	tripRepo repository.TripRepository,
	customerRepo repository.CustomerRepository,
	leadRepo repository.LeadRepository,
	commissionSvc *CommissionService,
	leadSvc *LeadService,
	auditSvc *AuditService,
) *BookingService {
	return &BookingService{
		repo:          repo,
		tripRepo:      tripRepo,
		customerRepo:  customerRepo,
		leadRepo:      leadRepo,
		commissionSvc: commissionSvc,
		leadSvc:       leadSvc,
		auditSvc:      auditSvc,
	}
}

func (s *BookingService) Get(ctx context.Context, id uint) (*models.Booking, error) {
	booking, err := s.repo.FindByIDWithDetails(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return booking, nil
}

func (s *BookingService) List(ctx context.Context, query *repository.ListQuery) ([]models.Booking, int64, error) {
	return s.repo.List(ctx, query)
}

// Create confirms a sale: prices the booking from the trip, checks seat
// availability, marks the linked lead BOOKED and sets up its commission.
func (s *BookingService) Create(ctx context.Context, input *CreateBookingInput, actorID uint, ip, userAgent string) (*models.Booking, error) {
	trip, err := s.tripRepo.FindByID(ctx, input.TripID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: trip not found", ErrNotFound)
		}
		return nil, err
	}

	if _, err := s.customerRepo.FindByID(ctx, input.CustomerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: customer not found", ErrNotFound)
		}
		return nil, err
	}

	if input.LeadID != nil {
		lead, err := s.leadRepo.FindByID(ctx, *input.LeadID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: lead not found", ErrNotFound)
			}
			return nil, err
		}
		// A lead inherits its agent onto bookings that name none
		if input.AgentID == nil && lead.AgentID != nil {
			input.AgentID = lead.AgentID
		}
	}

	taken, err := s.tripRepo.SumActiveTravellers(ctx, input.TripID)
	if err != nil {
		return nil, err
	}
	if taken+input.Travellers > trip.Pax {
		return nil, fmt.Errorf("%w: trip has %d seat(s) left", ErrInvalidState, trip.Pax-taken)
	}

	total := trip.Price.Mul(decimal.NewFromInt(int64(input.Travellers))).
		Add(input.Extras).
		Sub(input.Discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	booking := &models.Booking{
		CustomerID:    input.CustomerID,
		TripID:        input.TripID,
		LeadID:        input.LeadID,
		AgentID:       input.AgentID,
		Travellers:    input.Travellers,
		PaymentStatus: models.PaymentStatusDepositPending,
		TotalAmount:   total,
		PaidAmount:    decimal.Zero,
		Extras:        input.Extras,
		Discount:      input.Discount,
		Note:          input.Note,
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, err
	}

	if booking.LeadID != nil {
		if err := s.leadSvc.AutoMarkBooked(ctx, *booking.LeadID); err != nil {
			logger.Error("failed to mark lead booked", "lead_id", *booking.LeadID, "error", err)
		}
	}

	if _, err := s.commissionSvc.Calculate(ctx, booking.ID); err != nil {
		logger.Error("failed to create commission for booking", "booking_id", booking.ID, "error", err)
	}

	s.auditSvc.Log(ctx, actorID, models.AuditActionCreate, "Booking", booking.ID,
		fmt.Sprintf("booking created for trip #%d, total %s", booking.TripID, total.StringFixed(2)), ip, userAgent)

	return booking, nil
}

// Update reprices the booking when travellers, extras or discount change.
// The cached paid amount is untouched; payment status is re-derived against
// the new total on the next payment write.
func (s *BookingService) Update(ctx context.Context, id uint, travellers int, extras, discount decimal.Decimal, note *string, actorID uint, ip, userAgent string) (*models.Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if booking.IsCancelled() {
		return nil, fmt.Errorf("%w: cancelled bookings cannot be edited", ErrInvalidState)
	}

	trip, err := s.tripRepo.FindByID(ctx, booking.TripID)
	if err != nil {
		return nil, err
	}

	if travellers > booking.Travellers {
		taken, err := s.tripRepo.SumActiveTravellers(ctx, booking.TripID)
		if err != nil {
			return nil, err
		}
		if taken-booking.Travellers+travellers > trip.Pax {
			return nil, fmt.Errorf("%w: trip has no capacity for %d traveller(s)", ErrInvalidState, travellers)
		}
	}

	total := trip.Price.Mul(decimal.NewFromInt(int64(travellers))).
		Add(extras).
		Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	booking.Travellers = travellers
	booking.Extras = extras
	booking.Discount = discount
	booking.TotalAmount = total
	booking.Note = note

	if err := s.repo.Update(ctx, booking); err != nil {
		return nil, err
	}

	if _, err := s.commissionSvc.RefreshStatus(ctx, booking.ID); err != nil {
		logger.Error("commission refresh failed after booking update", "booking_id", booking.ID, "error", err)
	}

	s.auditSvc.Log(ctx, actorID, models.AuditActionUpdate, "Booking", booking.ID,
		fmt.Sprintf("booking repriced to %s", total.StringFixed(2)), ip, userAgent)

	return booking, nil
}

// Cancel voids a booking. The commission drops back to PENDING unless already
// paid out, and the lead re-derives its status from what remains.
func (s *BookingService) Cancel(ctx context.Context, id, actorID uint, reason, ip, userAgent string) (*models.Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if booking.IsCancelled() {
		return booking, nil
	}

	now := time.Now()
	booking.PaymentStatus = models.PaymentStatusCancelled
	booking.CancelledAt = &now

	if err := s.repo.Update(ctx, booking); err != nil {
		return nil, err
	}

	if _, err := s.commissionSvc.RefreshStatus(ctx, booking.ID); err != nil {
		logger.Error("commission refresh failed after cancellation", "booking_id", booking.ID, "error", err)
	}

	if booking.LeadID != nil {
		if _, err := s.leadSvc.SyncFromBookings(ctx, *booking.LeadID); err != nil {
			logger.Error("lead sync failed after cancellation", "lead_id", *booking.LeadID, "error", err)
		}
	}

	details := fmt.Sprintf("booking #%d cancelled", booking.ID)
	if reason != "" {
		details += "; reason: " + reason
	}
	s.auditSvc.Log(ctx, actorID, models.AuditActionStatusChange, "Booking", booking.ID, details, ip, userAgent)

	return booking, nil
}
