package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/horizon-travel/crm-api/internal/jobs"
	"github.com/horizon-travel/crm-api/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func newPaymentServiceForTest(
	paymentRepo *mockPaymentRepository,
	bookingRepo *mockBookingRepository,
	leadRepo *mockLeadRepository,
	commissionRepo *mockCommissionRepository,
	worker *jobs.Worker,
) *PaymentService {
	userRepo := &mockUserRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id}, nil
		},
	}
	notifSvc := NewNotificationService(&mockNotificationRepository{}, userRepo)
	commissionSvc := newCommissionServiceForTest(commissionRepo, bookingRepo, leadRepo, userRepo)
	leadSvc := newLeadServiceForTest(leadRepo, bookingRepo)
	return NewPaymentService(paymentRepo, bookingRepo, commissionSvc, leadSvc, notifSvc, nil, nil, worker)
}

func TestRecordPayment_RejectsNonPositiveAmount(t *testing.T) {
	service := newPaymentServiceForTest(&mockPaymentRepository{}, &mockBookingRepository{}, &mockLeadRepository{}, &mockCommissionRepository{}, nil)

	_, err := service.Record(context.Background(), &models.Payment{BookingID: 1, Amount: decimal.Zero}, 9, "", "")
	assert.True(t, errors.Is(err, ErrInvalidState))

	_, err = service.Record(context.Background(), &models.Payment{BookingID: 1, Amount: decimal.NewFromInt(-100)}, 9, "", "")
	assert.True(t, errors.Is(err, ErrInvalidState))
}

func TestRecordPayment_RejectsCancelledBooking(t *testing.T) {
	bookingRepo := &mockBookingRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Booking, error) {
			return &models.Booking{ID: 1, PaymentStatus: models.PaymentStatusCancelled}, nil
		},
	}
	paymentRepo := &mockPaymentRepository{
		mockCreate: func(ctx context.Context, payment *models.Payment) error {
			t.Fatal("payments against a cancelled booking must not be written")
			return nil
		},
	}

	service := newPaymentServiceForTest(paymentRepo, bookingRepo, &mockLeadRepository{}, &mockCommissionRepository{}, nil)
	_, err := service.Record(context.Background(), &models.Payment{BookingID: 1, Amount: decimal.NewFromInt(5000)}, 9, "", "")

	assert.True(t, errors.Is(err, ErrInvalidState))
}

func TestRecordPayment_RunsDownstreamChain(t *testing.T) {
	worker := jobs.NewWorker(1)
	defer worker.Shutdown()

	leadID := uint(10)

	recalculated := false
	bookingRepo := &mockBookingRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Booking, error) {
			return &models.Booking{
				ID:            1,
				LeadID:        &leadID,
				PaymentStatus: models.PaymentStatusDepositPending,
				TotalAmount:   decimal.NewFromInt(50000),
			}, nil
		},
		mockRecalculatePaidAmount: func(ctx context.Context, bookingID uint) (*models.Booking, error) {
			recalculated = true
			return &models.Booking{
				ID:            1,
				LeadID:        &leadID,
				PaymentStatus: models.PaymentStatusDepositPaid,
				TotalAmount:   decimal.NewFromInt(50000),
				PaidAmount:    decimal.NewFromInt(5000),
			}, nil
		},
		mockFindByCustomer: func(ctx context.Context, customerID uint) ([]models.Booking, error) {
			return []models.Booking{{ID: 1, PaymentStatus: models.PaymentStatusDepositPaid}}, nil
		},
	}

	commissionChecked := false
	commissionRepo := &mockCommissionRepository{
		mockFindByBooking: func(ctx context.Context, bookingID uint) (*models.Commission, error) {
			commissionChecked = true
			return nil, gorm.ErrRecordNotFound
		},
	}

	leadSynced := false
	leadRepo := &mockLeadRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Lead, error) {
			leadSynced = true
			return &models.Lead{ID: leadID, CustomerID: uintPtr(3), Status: models.LeadStatusNegotiating}, nil
		},
	}

	var written *models.Payment
	paymentRepo := &mockPaymentRepository{
		mockCreate: func(ctx context.Context, payment *models.Payment) error {
			payment.ID = 500
			written = payment
			return nil
		},
	}

	service := newPaymentServiceForTest(paymentRepo, bookingRepo, leadRepo, commissionRepo, worker)

	payment := &models.Payment{BookingID: 1, Amount: decimal.NewFromInt(5000), Method: models.PaymentMethodTransfer}
	recorded, err := service.Record(context.Background(), payment, 9, "", "")

	assert.NoError(t, err)
	assert.NotNil(t, written)
	assert.True(t, recalculated, "paid amount must be re-aggregated after the write")
	assert.True(t, commissionChecked, "commission must be refreshed after the aggregate")
	assert.True(t, leadSynced, "lead must be synced after the commission")
	assert.NotNil(t, recorded.RecordedByUserID)
	assert.Equal(t, uint(9), *recorded.RecordedByUserID)
	assert.False(t, recorded.PaidAt.IsZero())
}

func TestRecordPayment_KeepsSuppliedPaidAt(t *testing.T) {
	paidAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	bookingRepo := &mockBookingRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Booking, error) {
			return &models.Booking{ID: 1, TotalAmount: decimal.NewFromInt(50000)}, nil
		},
		mockRecalculatePaidAmount: func(ctx context.Context, bookingID uint) (*models.Booking, error) {
			return &models.Booking{ID: 1, PaidAmount: decimal.NewFromInt(5000), TotalAmount: decimal.NewFromInt(50000)}, nil
		},
	}
	commissionRepo := &mockCommissionRepository{
		mockFindByBooking: func(ctx context.Context, bookingID uint) (*models.Commission, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}

	service := newPaymentServiceForTest(&mockPaymentRepository{}, bookingRepo, &mockLeadRepository{}, commissionRepo, nil)

	payment := &models.Payment{BookingID: 1, Amount: decimal.NewFromInt(5000), PaidAt: paidAt}
	recorded, err := service.Record(context.Background(), payment, 9, "", "")

	assert.NoError(t, err)
	assert.Equal(t, paidAt, recorded.PaidAt)
}

func TestDeletePayment_RerunsDownstreamChain(t *testing.T) {
	deleted := false
	paymentRepo := &mockPaymentRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Payment, error) {
			return &models.Payment{ID: 500, BookingID: 1, Amount: decimal.NewFromInt(5000)}, nil
		},
		mockDelete: func(ctx context.Context, id uint) error {
			deleted = true
			return nil
		},
	}

	recalculated := false
	bookingRepo := &mockBookingRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Booking, error) {
			return &models.Booking{ID: 1, TotalAmount: decimal.NewFromInt(50000)}, nil
		},
		mockRecalculatePaidAmount: func(ctx context.Context, bookingID uint) (*models.Booking, error) {
			recalculated = true
			return &models.Booking{ID: 1, TotalAmount: decimal.NewFromInt(50000)}, nil
		},
	}
	commissionRepo := &mockCommissionRepository{
		mockFindByBooking: func(ctx context.Context, bookingID uint) (*models.Commission, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}

	service := newPaymentServiceForTest(paymentRepo, bookingRepo, &mockLeadRepository{}, commissionRepo, nil)
	err := service.Delete(context.Background(), 500, 9, "", "")

	assert.NoError(t, err)
	assert.True(t, deleted)
	assert.True(t, recalculated, "a deleted payment must re-derive the booking's paid amount")
}

func TestDeletePayment_RegressedPaymentRevertsCommission(t *testing.T) {
	paymentRepo := &mockPaymentRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Payment, error) {
			return &models.Payment{ID: 500, BookingID: 1, Amount: decimal.NewFromInt(50000)}, nil
		},
	}
	bookingRepo := &mockBookingRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Booking, error) {
			// No longer settled after the delete
			return &models.Booking{ID: 1, PaymentStatus: models.PaymentStatusDepositPaid, TotalAmount: decimal.NewFromInt(50000), PaidAmount: decimal.Zero}, nil
		},
		mockRecalculatePaidAmount: func(ctx context.Context, bookingID uint) (*models.Booking, error) {
			return &models.Booking{ID: 1, PaymentStatus: models.PaymentStatusDepositPaid, TotalAmount: decimal.NewFromInt(50000), PaidAmount: decimal.Zero}, nil
		},
	}

	var saved *models.Commission
	commissionRepo := &mockCommissionRepository{
		mockFindByBooking: func(ctx context.Context, bookingID uint) (*models.Commission, error) {
			return &models.Commission{ID: 2, BookingID: 1, AgentID: 4, Status: models.CommissionStatusApproved}, nil
		},
		mockUpdate: func(ctx context.Context, commission *models.Commission) error {
			saved = commission
			return nil
		},
	}

	service := newPaymentServiceForTest(paymentRepo, bookingRepo, &mockLeadRepository{}, commissionRepo, nil)
	err := service.Delete(context.Background(), 500, 9, "", "")

	assert.NoError(t, err)
	assert.NotNil(t, saved)
	assert.Equal(t, models.CommissionStatusPending, saved.Status)
}
