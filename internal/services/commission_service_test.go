package services

import (
	"context"
	"errors"
	"testing"

	"github.com/horizon-travel/crm-api/internal/models"
	"github.com/horizon-travel/crm-api/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func newCommissionServiceForTest(
	commissionRepo *mockCommissionRepository,
	bookingRepo *mockBookingRepository,
	leadRepo *mockLeadRepository,
	userRepo *mockUserRepository,
) *CommissionService {
	notifSvc := NewNotificationService(&mockNotificationRepository{}, userRepo)
	return NewCommissionService(commissionRepo, bookingRepo, leadRepo, userRepo, notifSvc, nil)
}

func uintPtr(v uint) *uint { return &v }

func TestResolveAgent_LeadAgentTakesPrecedence(t *testing.T) {
	leadAgent := &models.User{ID: 7, CommissionRate: decimal.NewFromInt(5)}
	leadID := uint(10)

	leadRepo := &mockLeadRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Lead, error) {
			return &models.Lead{ID: leadID, AgentID: uintPtr(7), Agent: leadAgent}, nil
		},
	}
	userRepo := &mockUserRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.User, error) {
			t.Fatal("booking agent should not be consulted when the lead has one")
			return nil, nil
		},
	}
	service := newCommissionServiceForTest(&mockCommissionRepository{}, &mockBookingRepository{}, leadRepo, userRepo)

	booking := &models.Booking{ID: 1, LeadID: &leadID, AgentID: uintPtr(99)}
	agent, err := service.ResolveAgent(context.Background(), booking)

	assert.NoError(t, err)
	assert.NotNil(t, agent)
	assert.Equal(t, uint(7), agent.AgentID)
	assert.Equal(t, models.CommissionTypeSales, agent.Type)
	assert.True(t, agent.Rate.Equal(decimal.NewFromInt(5)))
}

func TestResolveAgent_BookingAgentIsWalkinWithoutLead(t *testing.T) {
	userRepo := &mockUserRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, CommissionRate: decimal.NewFromInt(3)}, nil
		},
	}
	service := newCommissionServiceForTest(&mockCommissionRepository{}, &mockBookingRepository{}, &mockLeadRepository{}, userRepo)

	booking := &models.Booking{ID: 1, AgentID: uintPtr(4)}
	agent, err := service.ResolveAgent(context.Background(), booking)

	assert.NoError(t, err)
	assert.NotNil(t, agent)
	assert.Equal(t, models.CommissionTypeWalkin, agent.Type)
}

func TestResolveAgent_NobodyQualifies(t *testing.T) {
	service := newCommissionServiceForTest(&mockCommissionRepository{}, &mockBookingRepository{}, &mockLeadRepository{}, &mockUserRepository{})

	agent, err := service.ResolveAgent(context.Background(), &models.Booking{ID: 1})

	assert.NoError(t, err)
	assert.Nil(t, agent)
}

func TestCalculate_CreatesPendingCommission(t *testing.T) {
	bookingRepo := &mockBookingRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Booking, error) {
			return &models.Booking{
				ID:          1,
				AgentID:     uintPtr(4),
				TotalAmount: decimal.NewFromInt(50000),
				PaidAmount:  decimal.NewFromInt(10000),
			}, nil
		},
	}
	userRepo := &mockUserRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.User, error) {
			return &models.User{ID: 4, CommissionRate: decimal.NewFromInt(5)}, nil
		},
	}

	var created *models.Commission
	commissionRepo := &mockCommissionRepository{
		mockFindByBooking: func(ctx context.Context, bookingID uint) (*models.Commission, error) {
			return nil, gorm.ErrRecordNotFound
		},
		mockCreate: func(ctx context.Context, commission *models.Commission) error {
			created = commission
			return nil
		},
	}

	service := newCommissionServiceForTest(commissionRepo, bookingRepo, &mockLeadRepository{}, userRepo)
	commission, err := service.Calculate(context.Background(), 1)

	assert.NoError(t, err)
	assert.NotNil(t, created)
	// 50000 * 5 / 100 = 2500
	assert.True(t, commission.Amount.Equal(decimal.NewFromInt(2500)), "got %s", commission.Amount)
	assert.Equal(t, models.CommissionStatusPending, commission.Status)
	assert.Equal(t, models.CommissionTypeWalkin, commission.Type)
}

func TestCalculate_ApprovedWhenBookingAlreadySettled(t *testing.T) {
	bookingRepo := &mockBookingRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Booking, error) {
			return &models.Booking{
				ID:          1,
				AgentID:     uintPtr(4),
				TotalAmount: decimal.NewFromInt(20000),
				PaidAmount:  decimal.NewFromInt(20000),
			}, nil
		},
	}
	userRepo := &mockUserRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.User, error) {
			return &models.User{ID: 4, CommissionRate: decimal.NewFromInt(10)}, nil
		},
	}
	commissionRepo := &mockCommissionRepository{
		mockFindByBooking: func(ctx context.Context, bookingID uint) (*models.Commission, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}

	service := newCommissionServiceForTest(commissionRepo, bookingRepo, &mockLeadRepository{}, userRepo)
	commission, err := service.Calculate(context.Background(), 1)

	assert.NoError(t, err)
	assert.Equal(t, models.CommissionStatusApproved, commission.Status)
	assert.True(t, commission.Amount.Equal(decimal.NewFromInt(2000)))
}

func TestCalculate_IdempotentOnExistingCommission(t *testing.T) {
	existing := &models.Commission{ID: 55, BookingID: 1, Amount: decimal.NewFromInt(100)}
	commissionRepo := &mockCommissionRepository{
		mockFindByBooking: func(ctx context.Context, bookingID uint) (*models.Commission, error) {
			return existing, nil
		},
		mockCreate: func(ctx context.Context, commission *models.Commission) error {
			t.Fatal("should not create a second commission for the booking")
			return nil
		},
	}
	bookingRepo := &mockBookingRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Booking, error) {
			return &models.Booking{ID: 1}, nil
		},
	}

	service := newCommissionServiceForTest(commissionRepo, bookingRepo, &mockLeadRepository{}, &mockUserRepository{})
	commission, err := service.Calculate(context.Background(), 1)

	assert.NoError(t, err)
	assert.Equal(t, existing, commission)
}

func TestCalculate_CreationRaceReturnsWinner(t *testing.T) {
	winner := &models.Commission{ID: 9, BookingID: 1}
	firstLookup := true
	commissionRepo := &mockCommissionRepository{
		mockFindByBooking: func(ctx context.Context, bookingID uint) (*models.Commission, error) {
			if firstLookup {
				firstLookup = false
				return nil, gorm.ErrRecordNotFound
			}
			return winner, nil
		},
		mockCreate: func(ctx context.Context, commission *models.Commission) error {
			return repository.ErrCommissionExists
		},
	}
	bookingRepo := &mockBookingRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Booking, error) {
			return &models.Booking{ID: 1, AgentID: uintPtr(4), TotalAmount: decimal.NewFromInt(1000)}, nil
		},
	}
	userRepo := &mockUserRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.User, error) {
			return &models.User{ID: 4, CommissionRate: decimal.NewFromInt(5)}, nil
		},
	}

	service := newCommissionServiceForTest(commissionRepo, bookingRepo, &mockLeadRepository{}, userRepo)
	commission, err := service.Calculate(context.Background(), 1)

	assert.NoError(t, err)
	assert.Equal(t, winner, commission)
}

func TestCalculate_NoAgentYieldsNoCommission(t *testing.T) {
	commissionRepo := &mockCommissionRepository{
		mockFindByBooking: func(ctx context.Context, bookingID uint) (*models.Commission, error) {
			return nil, gorm.ErrRecordNotFound
		},
		mockCreate: func(ctx context.Context, commission *models.Commission) error {
			t.Fatal("should not create a commission without an agent")
			return nil
		},
	}
	bookingRepo := &mockBookingRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Booking, error) {
			return &models.Booking{ID: 1, TotalAmount: decimal.NewFromInt(1000)}, nil
		},
	}

	service := newCommissionServiceForTest(commissionRepo, bookingRepo, &mockLeadRepository{}, &mockUserRepository{})
	commission, err := service.Calculate(context.Background(), 1)

	assert.NoError(t, err)
	assert.Nil(t, commission)
}

func TestRefreshStatus_ApprovesWhenSettled(t *testing.T) {
	bookingRepo := &mockBookingRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Booking, error) {
			return &models.Booking{
				ID:            1,
				PaymentStatus: models.PaymentStatusFullyPaid,
				TotalAmount:   decimal.NewFromInt(10000),
				PaidAmount:    decimal.NewFromInt(10000),
			}, nil
		},
	}

	updated := false
	commissionRepo := &mockCommissionRepository{
		mockFindByBooking: func(ctx context.Context, bookingID uint) (*models.Commission, error) {
			return &models.Commission{ID: 2, BookingID: 1, AgentID: 4, Status: models.CommissionStatusPending}, nil
		},
		mockUpdate: func(ctx context.Context, commission *models.Commission) error {
			updated = true
			return nil
		},
	}

	service := newCommissionServiceForTest(commissionRepo, bookingRepo, &mockLeadRepository{}, &mockUserRepository{})
	commission, err := service.RefreshStatus(context.Background(), 1)

	assert.NoError(t, err)
	assert.True(t, updated)
	assert.Equal(t, models.CommissionStatusApproved, commission.Status)
}

func TestRefreshStatus_CancelledBookingRevertsApproval(t *testing.T) {
	bookingRepo := &mockBookingRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Booking, error) {
			// Settled on paper but cancelled; must not stay approved
			return &models.Booking{
				ID:            1,
				PaymentStatus: models.PaymentStatusCancelled,
				TotalAmount:   decimal.NewFromInt(10000),
				PaidAmount:    decimal.NewFromInt(10000),
			}, nil
		},
	}
	commissionRepo := &mockCommissionRepository{
		mockFindByBooking: func(ctx context.Context, bookingID uint) (*models.Commission, error) {
			return &models.Commission{ID: 2, BookingID: 1, AgentID: 4, Status: models.CommissionStatusApproved}, nil
		},
	}

	service := newCommissionServiceForTest(commissionRepo, bookingRepo, &mockLeadRepository{}, &mockUserRepository{})
	commission, err := service.RefreshStatus(context.Background(), 1)

	assert.NoError(t, err)
	assert.Equal(t, models.CommissionStatusPending, commission.Status)
}

func TestRefreshStatus_PaidIsTerminal(t *testing.T) {
	bookingRepo := &mockBookingRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Booking, error) {
			return &models.Booking{ID: 1, PaymentStatus: models.PaymentStatusCancelled}, nil
		},
	}
	commissionRepo := &mockCommissionRepository{
		mockFindByBooking: func(ctx context.Context, bookingID uint) (*models.Commission, error) {
			return &models.Commission{ID: 2, BookingID: 1, Status: models.CommissionStatusPaid}, nil
		},
		mockUpdate: func(ctx context.Context, commission *models.Commission) error {
			t.Fatal("a paid commission must never be rewritten")
			return nil
		},
	}

	service := newCommissionServiceForTest(commissionRepo, bookingRepo, &mockLeadRepository{}, &mockUserRepository{})
	commission, err := service.RefreshStatus(context.Background(), 1)

	assert.NoError(t, err)
	assert.Equal(t, models.CommissionStatusPaid, commission.Status)
}

func TestRefreshStatus_NoCommissionIsNotAnError(t *testing.T) {
	bookingRepo := &mockBookingRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Booking, error) {
			return &models.Booking{ID: 1}, nil
		},
	}
	commissionRepo := &mockCommissionRepository{
		mockFindByBooking: func(ctx context.Context, bookingID uint) (*models.Commission, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}

	service := newCommissionServiceForTest(commissionRepo, bookingRepo, &mockLeadRepository{}, &mockUserRepository{})
	commission, err := service.RefreshStatus(context.Background(), 1)

	assert.NoError(t, err)
	assert.Nil(t, commission)
}

func TestMarkPaid_RejectsUnapprovedCommission(t *testing.T) {
	commissionRepo := &mockCommissionRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Commission, error) {
			return &models.Commission{ID: 2, Status: models.CommissionStatusPending}, nil
		},
	}

	service := newCommissionServiceForTest(commissionRepo, &mockBookingRepository{}, &mockLeadRepository{}, &mockUserRepository{})
	_, err := service.MarkPaid(context.Background(), 2, 1)

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidState))
}

func TestMarkPaid_ApprovedCommission(t *testing.T) {
	var saved *models.Commission
	commissionRepo := &mockCommissionRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Commission, error) {
			return &models.Commission{ID: 2, AgentID: 4, Status: models.CommissionStatusApproved, Amount: decimal.NewFromInt(2500)}, nil
		},
		mockUpdate: func(ctx context.Context, commission *models.Commission) error {
			saved = commission
			return nil
		},
	}

	service := newCommissionServiceForTest(commissionRepo, &mockBookingRepository{}, &mockLeadRepository{}, &mockUserRepository{})
	commission, err := service.MarkPaid(context.Background(), 2, 1)

	assert.NoError(t, err)
	assert.NotNil(t, saved)
	assert.Equal(t, models.CommissionStatusPaid, commission.Status)
	assert.NotNil(t, commission.PaidAt)
}

func TestAgentSummary_BucketsByStatus(t *testing.T) {
	commissionRepo := &mockCommissionRepository{
		mockFindByAgent: func(ctx context.Context, agentID uint) ([]models.Commission, error) {
			return []models.Commission{
				{Status: models.CommissionStatusPending, Amount: decimal.NewFromInt(100)},
				{Status: models.CommissionStatusPending, Amount: decimal.NewFromInt(50)},
				{Status: models.CommissionStatusApproved, Amount: decimal.NewFromInt(200)},
				{Status: models.CommissionStatusPaid, Amount: decimal.NewFromInt(300)},
			}, nil
		},
	}

	service := newCommissionServiceForTest(commissionRepo, &mockBookingRepository{}, &mockLeadRepository{}, &mockUserRepository{})
	summary, err := service.AgentSummary(context.Background(), 4)

	assert.NoError(t, err)
	assert.Equal(t, 4, summary.Count)
	assert.True(t, summary.Pending.Equal(decimal.NewFromInt(150)))
	assert.True(t, summary.Approved.Equal(decimal.NewFromInt(200)))
	assert.True(t, summary.Paid.Equal(decimal.NewFromInt(300)))
	assert.True(t, summary.Total.Equal(decimal.NewFromInt(650)))
}
