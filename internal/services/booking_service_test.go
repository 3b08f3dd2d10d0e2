package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/horizon-travel/crm-api/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func newBookingServiceForTest(
	bookingRepo *mockBookingRepository,
	tripRepo *mockTripRepository,
	customerRepo *mockCustomerRepository,
	leadRepo *mockLeadRepository,
	commissionRepo *mockCommissionRepository,
) *BookingService {
	userRepo := &mockUserRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, CommissionRate: decimal.NewFromInt(5)}, nil
		},
	}
	commissionSvc := newCommissionServiceForTest(commissionRepo, bookingRepo, leadRepo, userRepo)
	leadSvc := newLeadServiceForTest(leadRepo, bookingRepo)
	return NewBookingService(bookingRepo, tripRepo, customerRepo, leadRepo, commissionSvc, leadSvc, nil)
}

func testTrip() *models.Trip {
	return &models.Trip{
		ID:        2,
		Name:      "Kyoto Autumn Leaves",
		Pax:       20,
		Price:     decimal.NewFromInt(25000),
		StartDate: time.Now().AddDate(0, 1, 0),
		EndDate:   time.Now().AddDate(0, 1, 7),
	}
}

func TestCreateBooking_PricesFromTrip(t *testing.T) {
	tripRepo := &mockTripRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Trip, error) { return testTrip(), nil },
	}
	customerRepo := &mockCustomerRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Customer, error) {
			return &models.Customer{ID: 3}, nil
		},
	}
	var created *models.Booking
	bookingRepo := &mockBookingRepository{
		mockCreate: func(ctx context.Context, booking *models.Booking) error {
			booking.ID = 77
			created = booking
			return nil
		},
		mockFindByID: func(ctx context.Context, id uint) (*models.Booking, error) {
			return created, nil
		},
	}
	commissionRepo := &mockCommissionRepository{
		mockFindByBooking: func(ctx context.Context, bookingID uint) (*models.Commission, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}

	service := newBookingServiceForTest(bookingRepo, tripRepo, customerRepo, &mockLeadRepository{}, commissionRepo)

	input := &CreateBookingInput{
		CustomerID: 3,
		TripID:     2,
		Travellers: 2,
		Extras:     decimal.NewFromInt(3000),
		Discount:   decimal.NewFromInt(1000),
	}
	booking, err := service.Create(context.Background(), input, 9, "", "")

	assert.NoError(t, err)
	// 25000 * 2 + 3000 - 1000 = 52000
	assert.True(t, booking.TotalAmount.Equal(decimal.NewFromInt(52000)), "got %s", booking.TotalAmount)
	assert.Equal(t, models.PaymentStatusDepositPending, booking.PaymentStatus)
	assert.True(t, booking.PaidAmount.IsZero())
}

func TestCreateBooking_NegativeTotalClampsToZero(t *testing.T) {
	tripRepo := &mockTripRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Trip, error) { return testTrip(), nil },
	}
	customerRepo := &mockCustomerRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Customer, error) {
			return &models.Customer{ID: 3}, nil
		},
	}
	bookingRepo := &mockBookingRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Booking, error) {
			return &models.Booking{ID: id}, nil
		},
	}
	commissionRepo := &mockCommissionRepository{
		mockFindByBooking: func(ctx context.Context, bookingID uint) (*models.Commission, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}

	service := newBookingServiceForTest(bookingRepo, tripRepo, customerRepo, &mockLeadRepository{}, commissionRepo)

	input := &CreateBookingInput{
		CustomerID: 3,
		TripID:     2,
		Travellers: 1,
		Discount:   decimal.NewFromInt(99999),
	}
	booking, err := service.Create(context.Background(), input, 9, "", "")

	assert.NoError(t, err)
	assert.True(t, booking.TotalAmount.IsZero())
}

func TestCreateBooking_RejectsOverbooking(t *testing.T) {
	tripRepo := &mockTripRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Trip, error) { return testTrip(), nil },
		mockSumActiveTravellers: func(ctx context.Context, tripID uint) (int, error) {
			return 19, nil
		},
	}
	customerRepo := &mockCustomerRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Customer, error) {
			return &models.Customer{ID: 3}, nil
		},
	}
	bookingRepo := &mockBookingRepository{
		mockCreate: func(ctx context.Context, booking *models.Booking) error {
			t.Fatal("an overbooked trip must not get a new booking")
			return nil
		},
	}

	service := newBookingServiceForTest(bookingRepo, tripRepo, customerRepo, &mockLeadRepository{}, &mockCommissionRepository{})

	input := &CreateBookingInput{CustomerID: 3, TripID: 2, Travellers: 2}
	_, err := service.Create(context.Background(), input, 9, "", "")

	assert.True(t, errors.Is(err, ErrInvalidState))
}

func TestCreateBooking_InheritsLeadAgent(t *testing.T) {
	leadID := uint(10)
	tripRepo := &mockTripRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Trip, error) { return testTrip(), nil },
	}
	customerRepo := &mockCustomerRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Customer, error) {
			return &models.Customer{ID: 3}, nil
		},
	}
	leadRepo := &mockLeadRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Lead, error) {
			agent := &models.User{ID: 4, CommissionRate: decimal.NewFromInt(5)}
			return &models.Lead{ID: leadID, CustomerID: uintPtr(3), AgentID: uintPtr(4), Agent: agent, Status: models.LeadStatusNegotiating}, nil
		},
	}
	var created *models.Booking
	bookingRepo := &mockBookingRepository{
		mockCreate: func(ctx context.Context, booking *models.Booking) error {
			booking.ID = 77
			created = booking
			return nil
		},
		mockFindByID: func(ctx context.Context, id uint) (*models.Booking, error) {
			return created, nil
		},
	}
	commissionRepo := &mockCommissionRepository{
		mockFindByBooking: func(ctx context.Context, bookingID uint) (*models.Commission, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}

	service := newBookingServiceForTest(bookingRepo, tripRepo, customerRepo, leadRepo, commissionRepo)

	input := &CreateBookingInput{CustomerID: 3, TripID: 2, LeadID: &leadID, Travellers: 1}
	booking, err := service.Create(context.Background(), input, 9, "", "")

	assert.NoError(t, err)
	assert.NotNil(t, booking.AgentID)
	assert.Equal(t, uint(4), *booking.AgentID)
}

func TestCreateBooking_MissingTrip(t *testing.T) {
	tripRepo := &mockTripRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Trip, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}

	service := newBookingServiceForTest(&mockBookingRepository{}, tripRepo, &mockCustomerRepository{}, &mockLeadRepository{}, &mockCommissionRepository{})

	input := &CreateBookingInput{CustomerID: 3, TripID: 2, Travellers: 1}
	_, err := service.Create(context.Background(), input, 9, "", "")

	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCancelBooking_IsIdempotent(t *testing.T) {
	cancelledAt := time.Now().Add(-time.Hour)
	bookingRepo := &mockBookingRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Booking, error) {
			return &models.Booking{ID: 1, PaymentStatus: models.PaymentStatusCancelled, CancelledAt: &cancelledAt}, nil
		},
		mockUpdate: func(ctx context.Context, booking *models.Booking) error {
			t.Fatal("a cancelled booking must not be rewritten")
			return nil
		},
	}

	service := newBookingServiceForTest(bookingRepo, &mockTripRepository{}, &mockCustomerRepository{}, &mockLeadRepository{}, &mockCommissionRepository{})
	booking, err := service.Cancel(context.Background(), 1, 9, "", "", "")

	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCancelled, booking.PaymentStatus)
}
