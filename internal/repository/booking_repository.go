package repository

import (
	"context"

	"github.com/horizon-travel/crm-api/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookingRepository defines the interface for booking data access
type BookingRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Booking, error)
	FindByIDWithDetails(ctx context.Context, id uint) (*models.Booking, error)
	FindByCustomer(ctx context.Context, customerID uint) ([]models.Booking, error)
	CountActiveByCustomer(ctx context.Context, customerID uint) (int64, error)
	Create(ctx context.Context, booking *models.Booking) error
	Update(ctx context.Context, booking *models.Booking) error
	List(ctx context.Context, query *ListQuery) ([]models.Booking, int64, error)
	RecalculatePaidAmount(ctx context.Context, bookingID uint) (*models.Booking, error)
}

type bookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) FindByID(ctx context.Context, id uint) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).First(&booking, id).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindByIDWithDetails(ctx context.Context, id uint) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Trip").
		Preload("Lead").
		Preload("Lead.Agent").
		Preload("Agent").
		Preload("Payments").
		First(&booking, id).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindByCustomer(ctx context.Context, customerID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&bookings).Error
	return bookings, err
}

// CountActiveByCustomer counts the customer's bookings in a live payment
// state (deposit or fully paid). This is what locks a lead's status.
func (r *bookingRepository) CountActiveByCustomer(ctx context.Context, customerID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("customer_id = ? AND payment_status IN ?", customerID, models.ActivePaymentStatuses).
		Count(&count).Error
	return count, err
}

func (r *bookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *bookingRepository) Update(ctx context.Context, booking *models.Booking) error {
	return r.db.WithContext(ctx).Save(booking).Error
}

func (r *bookingRepository) List(ctx context.Context, query *ListQuery) ([]models.Booking, int64, error) {
	var bookings []models.Booking
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Booking{})

	if status := query.Filters["payment_status"]; status != "" {
		db = db.Where("payment_status = ?", status)
	}
	if tripID := query.Filters["trip_id"]; tripID != "" {
		db = db.Where("trip_id = ?", tripID)
	}
	if customerID := query.Filters["customer_id"]; customerID != "" {
		db = db.Where("customer_id = ?", customerID)
	}
	if agentID := query.Filters["agent_id"]; agentID != "" {
		db = db.Where("agent_id = ?", agentID)
	}

	db.Count(&total)

	if query.SortBy != "" {
		order := query.SortBy
		if query.SortDir == "desc" {
			order += " DESC"
		}
		db = db.Order(order)
	} else {
		db = db.Order("created_at DESC")
	}

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Preload("Customer").Preload("Trip").Preload("Agent").Find(&bookings).Error
	return bookings, total, err
}

// RecalculatePaidAmount re-reads the authoritative payment rows and rewrites
// the booking's cached paid_amount inside a single transaction, locking the
// booking row so two staff recording payments at once cannot lose an update.
// The payment status is re-derived from the fresh total unless the booking
// is cancelled. Returns the refreshed booking.
func (r *bookingRepository) RecalculatePaidAmount(ctx context.Context, bookingID uint) (*models.Booking, error) {
	var booking models.Booking

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&booking, bookingID).Error; err != nil {
			return err
		}

		var sum decimal.NullDecimal
		if err := tx.Model(&models.Payment{}).
			Where("booking_id = ?", bookingID).
			Select("COALESCE(SUM(amount), 0)").
			Scan(&sum).Error; err != nil {
			return err
		}

		paid := decimal.Zero
		if sum.Valid {
			paid = sum.Decimal
		}

		booking.PaidAmount = paid
		if !booking.IsCancelled() {
			switch {
			case paid.GreaterThanOrEqual(booking.TotalAmount) && booking.TotalAmount.IsPositive():
				booking.PaymentStatus = models.PaymentStatusFullyPaid
			case paid.IsPositive():
				booking.PaymentStatus = models.PaymentStatusDepositPaid
			default:
				booking.PaymentStatus = models.PaymentStatusDepositPending
			}
		}

		return tx.Model(&models.Booking{}).
			Where("id = ?", bookingID).
			Updates(map[string]interface{}{
				"paid_amount":    booking.PaidAmount,
				"payment_status": booking.PaymentStatus,
			}).Error
	})
	if err != nil {
		return nil, err
	}

	return &booking, nil
}
