package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/horizon-travel/crm-api/internal/jobs"
	"github.com/horizon-travel/crm-api/internal/models"
	"github.com/horizon-travel/crm-api/internal/repository"
	"github.com/horizon-travel/crm-api/internal/storage"
	"github.com/horizon-travel/crm-api/pkg/logger"
	"gorm.io/gorm"
)

// PaymentService records money against bookings. Every write runs the same
// downstream chain: recompute the booking's paid amount from the payment
// rows, refresh the commission, then sync the lead.
type PaymentService struct {
	repo            repository.PaymentRepository
	bookingRepo     repository.BookingRepository
	commissionSvc   *CommissionService
	leadSvc         *LeadService
	notificationSvc *NotificationService
	auditSvc        *AuditService
	storage         *storage.LocalStorage
	worker          *jobs.Worker
}

func NewPaymentService(
	repo repository.PaymentRepository,
	bookingRepo repository.BookingRepository,
	commissionSvc *CommissionService,
	leadSvc *LeadService,
	notificationSvc *NotificationService,
	auditSvc *AuditService,
	storage *storage.LocalStorage,
	worker *jobs.Worker,
) *PaymentService {
	return &PaymentService{
		repo:            repo,
		bookingRepo:     bookingRepo,
		commissionSvc:   commissionSvc,
		leadSvc:         leadSvc,
		notificationSvc: notificationSvc,
		auditSvc:        auditSvc,
		storage:         storage,
		worker:          worker,
	}
}

func (s *PaymentService) FindByID(ctx context.Context, id uint) (*models.Payment, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return payment, nil
}

func (s *PaymentService) FindByBooking(ctx context.Context, bookingID uint) ([]models.Payment, error) {
	return s.repo.FindByBooking(ctx, bookingID)
}

func (s *PaymentService) List(ctx context.Context, query *repository.ListQuery) ([]models.Payment, int64, error) {
	return s.repo.List(ctx, query)
}

// Record writes a payment and runs the downstream chain. Payments against a
// cancelled booking are rejected; refunds for cancelled trips go through the
// booking cancellation flow, not negative payments.
func (s *PaymentService) Record(ctx context.Context, payment *models.Payment, actorID uint, ip, userAgent string) (*models.Payment, error) {
	if !payment.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be positive", ErrInvalidState)
	}

	booking, err := s.bookingRepo.FindByID(ctx, payment.BookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if booking.IsCancelled() {
		return nil, fmt.Errorf("%w: cannot record payment on a cancelled booking", ErrInvalidState)
	}

	if payment.PaidAt.IsZero() {
		payment.PaidAt = time.Now()
	}
	payment.RecordedByUserID = &actorID

	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, err
	}

	booking, err = s.syncAfterPaymentWrite(ctx, payment.BookingID)
	if err != nil {
		return nil, err
	}

	if booking.IsFullyPaid() {
		bookingID := booking.ID
		s.worker.EnqueueAsync(func(ctx context.Context) error {
			return s.notificationSvc.NotifyAdmins(ctx,
				"Booking fully paid",
				fmt.Sprintf("Booking #%d has been fully paid", bookingID),
				models.NotificationTypeBookingFullyPaid)
		})
	}

	s.auditSvc.Log(ctx, actorID, models.AuditActionCreate, "Payment", payment.ID,
		fmt.Sprintf("payment of %s recorded for booking #%d", payment.Amount.StringFixed(2), payment.BookingID), ip, userAgent)

	return payment, nil
}

// Delete removes a payment and re-runs the downstream chain so the booking,
// commission and lead all reflect the corrected total.
func (s *PaymentService) Delete(ctx context.Context, id, actorID uint, ip, userAgent string) error {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if payment.ReceiptPath != nil && *payment.ReceiptPath != "" {
		if err := s.storage.Delete(*payment.ReceiptPath); err != nil {
			logger.Warn("failed to remove payment receipt", "payment_id", id, "error", err)
		}
	}

	if _, err := s.syncAfterPaymentWrite(ctx, payment.BookingID); err != nil {
		return err
	}

	s.auditSvc.Log(ctx, actorID, models.AuditActionDelete, "Payment", id,
		fmt.Sprintf("payment of %s deleted from booking #%d", payment.Amount.StringFixed(2), payment.BookingID), ip, userAgent)

	return nil
}

// UploadReceipt stores a receipt file for a payment and remembers its path
func (s *PaymentService) UploadReceipt(ctx context.Context, id uint, file multipart.File, header *multipart.FileHeader) (*models.Payment, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if header.Size > storage.MaxFileSize() {
		return nil, fmt.Errorf("%w: file exceeds maximum size", ErrInvalidState)
	}
	if !storage.IsValidContentType(header.Header.Get("Content-Type")) {
		return nil, fmt.Errorf("%w: unsupported receipt file type", ErrInvalidState)
	}

	if payment.ReceiptPath != nil && *payment.ReceiptPath != "" {
		if err := s.storage.Delete(*payment.ReceiptPath); err != nil {
			logger.Warn("failed to remove previous receipt", "payment_id", id, "error", err)
		}
	}

	path, err := s.storage.Upload(file, header, "receipts")
	if err != nil {
		return nil, err
	}

	payment.ReceiptPath = &path
	if err := s.repo.Update(ctx, payment); err != nil {
		return nil, err
	}

	return payment, nil
}

// ReceiptPath resolves the absolute path of a payment's receipt for serving
func (s *PaymentService) ReceiptPath(ctx context.Context, id uint) (string, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	if payment.ReceiptPath == nil || *payment.ReceiptPath == "" || !s.storage.Exists(*payment.ReceiptPath) {
		return "", ErrNotFound
	}
	return s.storage.GetFullPath(*payment.ReceiptPath), nil
}

// RecalculateBookingPaid re-derives a booking's cached paid amount from its
// payment rows, without the downstream chain. Exposed for admin repair jobs.
func (s *PaymentService) RecalculateBookingPaid(ctx context.Context, bookingID uint) (*models.Booking, error) {
	return s.bookingRepo.RecalculatePaidAmount(ctx, bookingID)
}

// syncAfterPaymentWrite is the ordering contract for payment writes:
// aggregate first, then commission, then lead. Each step reads the state the
// previous one committed.
func (s *PaymentService) syncAfterPaymentWrite(ctx context.Context, bookingID uint) (*models.Booking, error) {
	booking, err := s.bookingRepo.RecalculatePaidAmount(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if _, err := s.commissionSvc.RefreshStatus(ctx, bookingID); err != nil {
		logger.Error("commission refresh failed after payment write", "booking_id", bookingID, "error", err)
	}

	if booking.LeadID != nil {
		if _, err := s.leadSvc.SyncFromBookings(ctx, *booking.LeadID); err != nil {
			logger.Error("lead sync failed after payment write", "lead_id", *booking.LeadID, "error", err)
		}
	}

	return booking, nil
}
