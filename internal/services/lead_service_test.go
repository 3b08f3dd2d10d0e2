package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/horizon-travel/crm-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func newLeadServiceForTest(leadRepo *mockLeadRepository, bookingRepo *mockBookingRepository) *LeadService {
	notifSvc := NewNotificationService(&mockNotificationRepository{}, &mockUserRepository{})
	return NewLeadService(leadRepo, bookingRepo, notifSvc, nil)
}

func TestSyncFromBookings_AllFullyPaidCompletes(t *testing.T) {
	var saved *models.Lead
	leadRepo := &mockLeadRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Lead, error) {
			return &models.Lead{ID: 1, CustomerID: uintPtr(3), Status: models.LeadStatusBooked}, nil
		},
		mockUpdate: func(ctx context.Context, lead *models.Lead) error {
			saved = lead
			return nil
		},
	}
	bookingRepo := &mockBookingRepository{
		mockFindByCustomer: func(ctx context.Context, customerID uint) ([]models.Booking, error) {
			return []models.Booking{
				{PaymentStatus: models.PaymentStatusFullyPaid},
				{PaymentStatus: models.PaymentStatusFullyPaid},
			}, nil
		},
	}

	service := newLeadServiceForTest(leadRepo, bookingRepo)
	status, err := service.SyncFromBookings(context.Background(), 1)

	assert.NoError(t, err)
	assert.Equal(t, models.LeadStatusCompleted, status)
	assert.NotNil(t, saved)
	assert.NotNil(t, saved.ClosedAt)
}

func TestSyncFromBookings_AnyActiveBookingMeansBooked(t *testing.T) {
	leadRepo := &mockLeadRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Lead, error) {
			return &models.Lead{ID: 1, CustomerID: uintPtr(3), Status: models.LeadStatusNegotiating}, nil
		},
	}
	bookingRepo := &mockBookingRepository{
		mockFindByCustomer: func(ctx context.Context, customerID uint) ([]models.Booking, error) {
			return []models.Booking{
				{PaymentStatus: models.PaymentStatusFullyPaid},
				{PaymentStatus: models.PaymentStatusDepositPaid},
				{PaymentStatus: models.PaymentStatusCancelled},
			}, nil
		},
	}

	service := newLeadServiceForTest(leadRepo, bookingRepo)
	status, err := service.SyncFromBookings(context.Background(), 1)

	assert.NoError(t, err)
	assert.Equal(t, models.LeadStatusBooked, status)
}

func TestSyncFromBookings_AllCancelledCancels(t *testing.T) {
	leadRepo := &mockLeadRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Lead, error) {
			return &models.Lead{ID: 1, CustomerID: uintPtr(3), Status: models.LeadStatusBooked}, nil
		},
	}
	bookingRepo := &mockBookingRepository{
		mockFindByCustomer: func(ctx context.Context, customerID uint) ([]models.Booking, error) {
			return []models.Booking{
				{PaymentStatus: models.PaymentStatusCancelled},
				{PaymentStatus: models.PaymentStatusCancelled},
			}, nil
		},
	}

	service := newLeadServiceForTest(leadRepo, bookingRepo)
	status, err := service.SyncFromBookings(context.Background(), 1)

	assert.NoError(t, err)
	assert.Equal(t, models.LeadStatusCancelled, status)
}

func TestSyncFromBookings_PendingBookingsSayNothing(t *testing.T) {
	leadRepo := &mockLeadRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Lead, error) {
			return &models.Lead{ID: 1, CustomerID: uintPtr(3), Status: models.LeadStatusQuoted}, nil
		},
		mockUpdate: func(ctx context.Context, lead *models.Lead) error {
			t.Fatal("pending bookings must not move the lead")
			return nil
		},
	}
	bookingRepo := &mockBookingRepository{
		mockFindByCustomer: func(ctx context.Context, customerID uint) ([]models.Booking, error) {
			return []models.Booking{{PaymentStatus: models.PaymentStatusDepositPending}}, nil
		},
	}

	service := newLeadServiceForTest(leadRepo, bookingRepo)
	status, err := service.SyncFromBookings(context.Background(), 1)

	assert.NoError(t, err)
	assert.Equal(t, models.LeadStatusQuoted, status)
}

func TestSyncFromBookings_NoCustomerIsANoop(t *testing.T) {
	leadRepo := &mockLeadRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Lead, error) {
			return &models.Lead{ID: 1, Status: models.LeadStatusNew}, nil
		},
	}
	bookingRepo := &mockBookingRepository{
		mockFindByCustomer: func(ctx context.Context, customerID uint) ([]models.Booking, error) {
			t.Fatal("bookings must not be consulted without a customer")
			return nil, nil
		},
	}

	service := newLeadServiceForTest(leadRepo, bookingRepo)
	status, err := service.SyncFromBookings(context.Background(), 1)

	assert.NoError(t, err)
	assert.Equal(t, models.LeadStatusNew, status)
}

func TestChangeStatus_ForwardStep(t *testing.T) {
	var saved *models.Lead
	leadRepo := &mockLeadRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Lead, error) {
			return &models.Lead{ID: 1, Status: models.LeadStatusNew}, nil
		},
		mockUpdate: func(ctx context.Context, lead *models.Lead) error {
			saved = lead
			return nil
		},
	}

	service := newLeadServiceForTest(leadRepo, &mockBookingRepository{})
	lead, err := service.ChangeStatus(context.Background(), 1, models.LeadStatusContacted, "", 9)

	assert.NoError(t, err)
	assert.Equal(t, models.LeadStatusContacted, lead.Status)
	assert.NotNil(t, saved)
}

func TestChangeStatus_SkippingStepsNeedsReason(t *testing.T) {
	leadRepo := &mockLeadRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Lead, error) {
			return &models.Lead{ID: 1, Status: models.LeadStatusNew}, nil
		},
	}

	service := newLeadServiceForTest(leadRepo, &mockBookingRepository{})

	_, err := service.ChangeStatus(context.Background(), 1, models.LeadStatusNegotiating, "", 9)
	assert.True(t, errors.Is(err, ErrReasonRequired))

	lead, err := service.ChangeStatus(context.Background(), 1, models.LeadStatusNegotiating, "customer already has a quote from last season", 9)
	assert.NoError(t, err)
	assert.Equal(t, models.LeadStatusNegotiating, lead.Status)
}

func TestChangeStatus_RevertNeedsReason(t *testing.T) {
	leadRepo := &mockLeadRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Lead, error) {
			return &models.Lead{ID: 1, Status: models.LeadStatusQuoted}, nil
		},
	}

	service := newLeadServiceForTest(leadRepo, &mockBookingRepository{})
	_, err := service.ChangeStatus(context.Background(), 1, models.LeadStatusContacted, "", 9)

	assert.True(t, errors.Is(err, ErrReasonRequired))
}

func TestChangeStatus_LockedByActiveBookings(t *testing.T) {
	leadRepo := &mockLeadRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Lead, error) {
			return &models.Lead{ID: 1, CustomerID: uintPtr(3), Status: models.LeadStatusBooked}, nil
		},
	}
	bookingRepo := &mockBookingRepository{
		mockCountActiveByCustomer: func(ctx context.Context, customerID uint) (int64, error) {
			return 1, nil
		},
	}

	service := newLeadServiceForTest(leadRepo, bookingRepo)
	_, err := service.ChangeStatus(context.Background(), 1, models.LeadStatusNegotiating, "trying to reopen", 9)

	assert.True(t, errors.Is(err, ErrStatusLocked))
}

func TestChangeStatus_CompletedIsSystemOnly(t *testing.T) {
	leadRepo := &mockLeadRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Lead, error) {
			return &models.Lead{ID: 1, Status: models.LeadStatusNegotiating}, nil
		},
	}

	service := newLeadServiceForTest(leadRepo, &mockBookingRepository{})
	_, err := service.ChangeStatus(context.Background(), 1, models.LeadStatusCompleted, "closing it myself", 9)

	assert.True(t, errors.Is(err, ErrInvalidState))
}

func TestChangeStatus_SameStatusIsANoop(t *testing.T) {
	leadRepo := &mockLeadRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Lead, error) {
			return &models.Lead{ID: 1, Status: models.LeadStatusContacted}, nil
		},
		mockUpdate: func(ctx context.Context, lead *models.Lead) error {
			t.Fatal("unchanged status must not be written")
			return nil
		},
	}

	service := newLeadServiceForTest(leadRepo, &mockBookingRepository{})
	lead, err := service.ChangeStatus(context.Background(), 1, models.LeadStatusContacted, "", 9)

	assert.NoError(t, err)
	assert.Equal(t, models.LeadStatusContacted, lead.Status)
}

func TestSweepAbandoned_CancelsStaleLeads(t *testing.T) {
	stale := []models.Lead{
		{ID: 1, AgentID: uintPtr(4), Status: models.LeadStatusContacted, LastActivityAt: time.Now().Add(-40 * 24 * time.Hour)},
		{ID: 2, Status: models.LeadStatusNew, LastActivityAt: time.Now().Add(-35 * 24 * time.Hour)},
	}

	var cancelled []uint
	leadRepo := &mockLeadRepository{
		mockFindStaleSince: func(ctx context.Context, before time.Time, excludingStatuses []string) ([]models.Lead, error) {
			assert.Contains(t, excludingStatuses, models.LeadStatusBooked)
			assert.Contains(t, excludingStatuses, models.LeadStatusCompleted)
			assert.Contains(t, excludingStatuses, models.LeadStatusCancelled)
			return stale, nil
		},
		mockUpdate: func(ctx context.Context, lead *models.Lead) error {
			assert.Equal(t, models.LeadStatusCancelled, lead.Status)
			cancelled = append(cancelled, lead.ID)
			return nil
		},
	}

	notified := 0
	notifRepo := &mockNotificationRepository{
		mockCreate: func(ctx context.Context, notification *models.Notification) error {
			notified++
			return nil
		},
	}
	notifSvc := NewNotificationService(notifRepo, &mockUserRepository{})
	service := NewLeadService(leadRepo, &mockBookingRepository{}, notifSvc, nil)

	count, err := service.SweepAbandoned(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, []uint{1, 2}, cancelled)
	// Only the lead with an agent triggers a notification
	assert.Equal(t, 1, notified)
}

func TestAutoMarkBooked_TransitionsAndIsIdempotent(t *testing.T) {
	updates := 0
	leadRepo := &mockLeadRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Lead, error) {
			return &models.Lead{ID: 1, Status: models.LeadStatusQuoted}, nil
		},
		mockUpdate: func(ctx context.Context, lead *models.Lead) error {
			updates++
			assert.Equal(t, models.LeadStatusBooked, lead.Status)
			return nil
		},
	}
	service := newLeadServiceForTest(leadRepo, &mockBookingRepository{})

	assert.NoError(t, service.AutoMarkBooked(context.Background(), 1))
	assert.Equal(t, 1, updates)

	leadRepo.mockFindByID = func(ctx context.Context, id uint) (*models.Lead, error) {
		return &models.Lead{ID: 1, Status: models.LeadStatusBooked}, nil
	}
	assert.NoError(t, service.AutoMarkBooked(context.Background(), 1))
	assert.Equal(t, 1, updates, "an already booked lead must not be rewritten")
}

func TestAutoMarkCancelled_BlockedByActiveBookings(t *testing.T) {
	leadRepo := &mockLeadRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Lead, error) {
			return &models.Lead{ID: 1, CustomerID: uintPtr(3), Status: models.LeadStatusBooked}, nil
		},
		mockUpdate: func(ctx context.Context, lead *models.Lead) error {
			t.Fatal("lead with active bookings must not be cancelled")
			return nil
		},
	}
	bookingRepo := &mockBookingRepository{
		mockCountActiveByCustomer: func(ctx context.Context, customerID uint) (int64, error) {
			return 1, nil
		},
	}
	service := newLeadServiceForTest(leadRepo, bookingRepo)

	assert.NoError(t, service.AutoMarkCancelled(context.Background(), 1))
}

func TestAutoMarkCancelled_NoActiveBookingsCancels(t *testing.T) {
	var saved *models.Lead
	leadRepo := &mockLeadRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Lead, error) {
			return &models.Lead{ID: 1, CustomerID: uintPtr(3), Status: models.LeadStatusBooked}, nil
		},
		mockUpdate: func(ctx context.Context, lead *models.Lead) error {
			saved = lead
			return nil
		},
	}
	service := newLeadServiceForTest(leadRepo, &mockBookingRepository{})

	assert.NoError(t, service.AutoMarkCancelled(context.Background(), 1))
	assert.NotNil(t, saved)
	assert.Equal(t, models.LeadStatusCancelled, saved.Status)
}

func TestUpdateLead_NeverChangesStatusOrClosedAt(t *testing.T) {
	closedAt := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	var saved *models.Lead
	leadRepo := &mockLeadRepository{
		mockFindByID: func(ctx context.Context, id uint) (*models.Lead, error) {
			return &models.Lead{ID: 1, Status: models.LeadStatusBooked, ClosedAt: &closedAt}, nil
		},
		mockUpdate: func(ctx context.Context, lead *models.Lead) error {
			saved = lead
			return nil
		},
	}
	service := newLeadServiceForTest(leadRepo, &mockBookingRepository{})

	lead := &models.Lead{ID: 1, Status: models.LeadStatusNew, Source: "referral"}
	assert.NoError(t, service.Update(context.Background(), lead))

	assert.NotNil(t, saved)
	assert.Equal(t, models.LeadStatusBooked, saved.Status)
	assert.Equal(t, &closedAt, saved.ClosedAt)
	assert.Equal(t, "referral", saved.Source)
	assert.False(t, saved.LastActivityAt.IsZero())
}
