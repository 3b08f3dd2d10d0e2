package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/horizon-travel/crm-api/internal/leadrules"
	"github.com/horizon-travel/crm-api/internal/models"
	"github.com/horizon-travel/crm-api/internal/repository"
	"github.com/horizon-travel/crm-api/internal/statemachine"
	"github.com/horizon-travel/crm-api/pkg/logger"
	"gorm.io/gorm"
)

// defaultAbandonAfter is how long a lead may sit without activity before the
// sweep closes it. Overridable via config (LEAD_ABANDON_DAYS).
const defaultAbandonAfter = 30 * 24 * time.Hour

// LeadService manages leads. Manual status changes run through the
// leadrules decision table; system statuses (BOOKED, COMPLETED, CANCELLED)
// are written only by the sync methods, driven by booking payment state.
type LeadService struct {
	repo            repository.LeadRepository
	bookingRepo     repository.BookingRepository
	notificationSvc *NotificationService
	auditSvc        *AuditService
	abandonAfter    time.Duration
}

// NewLeadService creates a new lead service
func NewLeadService(
	repo repository.LeadRepository,
	bookingRepo repository.BookingRepository,
	notificationSvc *NotificationService,
	auditSvc *AuditService,
) *LeadService {
	return &LeadService{
		repo:            repo,
		bookingRepo:     bookingRepo,
		notificationSvc: notificationSvc,
		auditSvc:        auditSvc,
		abandonAfter:    defaultAbandonAfter,
	}
}

// Get returns a lead by ID
func (s *LeadService) Get(ctx context.Context, id uint) (*models.Lead, error) {
	lead, err := s.repo.FindByIDWithBookings(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return lead, nil
}

// List returns leads matching the query
func (s *LeadService) List(ctx context.Context, query *repository.ListQuery) ([]models.Lead, int64, error) {
	return s.repo.List(ctx, query)
}

// Create creates a new lead in NEW status
func (s *LeadService) Create(ctx context.Context, lead *models.Lead) error {
	lead.Status = models.LeadStatusNew
	lead.LastActivityAt = time.Now()
	return s.repo.Create(ctx, lead)
}

// Update edits lead fields other than status and bumps the activity
// timestamp. Status changes must go through ChangeStatus.
func (s *LeadService) Update(ctx context.Context, lead *models.Lead) error {
	current, err := s.repo.FindByID(ctx, lead.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	// Status never changes through a field edit; ChangeStatus owns that.
	lead.Status = current.Status
	lead.ClosedAt = current.ClosedAt
	lead.Touch()
	return s.repo.Update(ctx, lead)
}

// CanUpdateStatus reports whether the lead's status is open to manual
// edits: true when the lead has no customer, or the customer has no booking
// in an active payment state.
func (s *LeadService) CanUpdateStatus(ctx context.Context, leadID uint) (bool, error) {
	lead, err := s.repo.FindByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrNotFound
		}
		return false, err
	}

	if lead.CustomerID == nil {
		return true, nil
	}

	active, err := s.bookingRepo.CountActiveByCustomer(ctx, *lead.CustomerID)
	if err != nil {
		return false, err
	}
	return active == 0, nil
}

// ValidateStatusChange runs the rules engine for a lead without writing
// anything. Handlers use it for pre-flight checks on the status dialog.
func (s *LeadService) ValidateStatusChange(ctx context.Context, leadID uint, next string) (*leadrules.Result, error) {
	lead, err := s.repo.FindByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	hasActive, err := s.hasActiveBookings(ctx, lead)
	if err != nil {
		return nil, err
	}

	result := leadrules.ValidateStatusChange(lead.Status, next, hasActive)
	return &result, nil
}

// ChangeStatus applies a manual status change. Transitions the rules engine
// flags with RequiresReason are rejected unless a non-empty reason is
// supplied; accepted changes are written and audited with that reason.
func (s *LeadService) ChangeStatus(ctx context.Context, leadID uint, next, reason string, userID uint) (*models.Lead, error) {
	lead, err := s.repo.FindByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	hasActive, err := s.hasActiveBookings(ctx, lead)
	if err != nil {
		return nil, err
	}

	result := leadrules.ValidateStatusChange(lead.Status, next, hasActive)
	if !result.Allowed {
		if hasActive {
			return nil, fmt.Errorf("%w: %s", ErrStatusLocked, result.Warning)
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidState, result.Warning)
	}
	if result.RequiresReason && reason == "" {
		return nil, ErrReasonRequired
	}

	if lead.Status == next {
		return lead, nil
	}

	previous := lead.Status
	lead.Status = next
	if leadrules.IsSystem(next) {
		lead.Close()
	} else {
		lead.Touch()
	}

	if err := s.repo.Update(ctx, lead); err != nil {
		return nil, err
	}

	details := fmt.Sprintf("status %s -> %s", previous, next)
	if reason != "" {
		details += "; reason: " + reason
	}
	if err := s.auditSvc.Log(ctx, userID, models.AuditActionStatusChange, "Lead", lead.ID, details, "", ""); err != nil {
		logger.Error("failed to audit lead status change", "lead_id", lead.ID, "error", err)
	}

	return lead, nil
}

// SyncFromBookings recomputes the lead's system status from the payment
// state of all bookings sharing its customer. Leads without a customer or
// without bookings are left alone. Writes only on change and returns the
// resulting status.
func (s *LeadService) SyncFromBookings(ctx context.Context, leadID uint) (string, error) {
	lead, err := s.repo.FindByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}

	if lead.CustomerID == nil {
		return lead.Status, nil
	}

	bookings, err := s.bookingRepo.FindByCustomer(ctx, *lead.CustomerID)
	if err != nil {
		return "", err
	}
	if len(bookings) == 0 {
		return lead.Status, nil
	}

	target := targetStatusFor(bookings)
	if target == "" || target == lead.Status {
		return lead.Status, nil
	}

	if err := s.transition(ctx, lead, target); err != nil {
		return "", err
	}
	return lead.Status, nil
}

// AutoMarkBooked force-sets BOOKED right after a booking is created for the
// lead's customer.
func (s *LeadService) AutoMarkBooked(ctx context.Context, leadID uint) error {
	lead, err := s.repo.FindByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if lead.Status == models.LeadStatusBooked {
		return nil
	}
	return s.transition(ctx, lead, models.LeadStatusBooked)
}

// AutoMarkCancelled re-checks for active bookings and, if none remain, sets
// the lead CANCELLED.
func (s *LeadService) AutoMarkCancelled(ctx context.Context, leadID uint) error {
	lead, err := s.repo.FindByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	hasActive, err := s.hasActiveBookings(ctx, lead)
	if err != nil {
		return err
	}
	if hasActive || lead.Status == models.LeadStatusCancelled {
		return nil
	}
	return s.transition(ctx, lead, models.LeadStatusCancelled)
}

// SweepAbandoned closes every lead whose inactivity exceeds the configured
// abandonment window and that is not already in a terminal status. Runs from
// the scheduler (or an admin trigger) and returns the number of leads
// affected. Each lead's update is its own write; a failure on one lead does
// not stop the sweep.
func (s *LeadService) SweepAbandoned(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-s.abandonAfter)
	terminal := []string{models.LeadStatusBooked, models.LeadStatusCompleted, models.LeadStatusCancelled}

	stale, err := s.repo.FindStaleSince(ctx, cutoff, terminal)
	if err != nil {
		return 0, err
	}

	affected := 0
	for i := range stale {
		lead := &stale[i]
		if err := s.transition(ctx, lead, models.LeadStatusCancelled); err != nil {
			logger.Error("abandonment sweep failed for lead", "lead_id", lead.ID, "error", err)
			continue
		}
		affected++

		if lead.AgentID != nil {
			agentID := *lead.AgentID
			leadID := lead.ID
			_ = s.notificationSvc.NotifyUser(ctx, agentID,
				"Lead closed for inactivity",
				fmt.Sprintf("Lead #%d had no activity for %d days and was cancelled", leadID, int(s.abandonAfter.Hours()/24)),
				models.NotificationTypeLeadCancelled)
		}
	}

	if affected > 0 {
		logger.Info("abandonment sweep finished", "cancelled", affected, "scanned", len(stale))
	}
	return affected, nil
}

// transition applies a system status through the lead FSM and persists it
func (s *LeadService) transition(ctx context.Context, lead *models.Lead, target string) error {
	lfsm := statemachine.NewLeadFSM(lead)

	var err error
	switch target {
	case models.LeadStatusBooked:
		err = lfsm.Book(ctx)
	case models.LeadStatusCompleted:
		err = lfsm.Complete(ctx)
	case models.LeadStatusCancelled:
		err = lfsm.Cancel(ctx)
	default:
		err = fmt.Errorf("%w: %s is not a system status", ErrInvalidState, target)
	}
	if err != nil {
		return err
	}

	return s.repo.Update(ctx, lead)
}

func (s *LeadService) hasActiveBookings(ctx context.Context, lead *models.Lead) (bool, error) {
	if lead.CustomerID == nil {
		return false, nil
	}
	count, err := s.bookingRepo.CountActiveByCustomer(ctx, *lead.CustomerID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// targetStatusFor derives the system status implied by a set of bookings,
// or "" when the bookings say nothing (all still pending).
func targetStatusFor(bookings []models.Booking) string {
	allFullyPaid := true
	allCancelled := true
	anyActive := false

	for _, b := range bookings {
		if !b.IsFullyPaid() {
			allFullyPaid = false
		}
		if !b.IsCancelled() {
			allCancelled = false
		}
		if b.IsActive() {
			anyActive = true
		}
	}

	switch {
	case allFullyPaid:
		return models.LeadStatusCompleted
	case anyActive:
		return models.LeadStatusBooked
	case allCancelled:
		return models.LeadStatusCancelled
	}
	return ""
}
