package repository

import (
	"context"
	"errors"

	"github.com/horizon-travel/crm-api/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrCommissionExists is returned when a second commission is created for
// the same booking. The unique index on booking_id enforces one per booking.
var ErrCommissionExists = errors.New("commission already exists for this booking")

// CommissionRepository defines the interface for commission data access
type CommissionRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Commission, error)
	FindByBooking(ctx context.Context, bookingID uint) (*models.Commission, error)
	FindByAgent(ctx context.Context, agentID uint) ([]models.Commission, error)
	Create(ctx context.Context, commission *models.Commission) error
	Update(ctx context.Context, commission *models.Commission) error
	List(ctx context.Context, query *ListQuery) ([]models.Commission, int64, error)
	TotalsByStatus(ctx context.Context) (map[string]decimal.Decimal, error)
}

type commissionRepository struct {
	db *gorm.DB
}

// NewCommissionRepository creates a new commission repository
func NewCommissionRepository(db *gorm.DB) CommissionRepository {
	return &commissionRepository{db: db}
}

func (r *commissionRepository) FindByID(ctx context.Context, id uint) (*models.Commission, error) {
	var commission models.Commission
	err := r.db.WithContext(ctx).
		Preload("Agent").
		First(&commission, id).Error
	if err != nil {
		return nil, err
	}
	return &commission, nil
}

func (r *commissionRepository) FindByBooking(ctx context.Context, bookingID uint) (*models.Commission, error) {
	var commission models.Commission
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		First(&commission).Error
	if err != nil {
		return nil, err
	}
	return &commission, nil
}

func (r *commissionRepository) FindByAgent(ctx context.Context, agentID uint) ([]models.Commission, error) {
	var commissions []models.Commission
	err := r.db.WithContext(ctx).
		Where("agent_id = ?", agentID).
		Order("created_at DESC").
		Find(&commissions).Error
	return commissions, err
}

func (r *commissionRepository) Create(ctx context.Context, commission *models.Commission) error {
	if err := r.db.WithContext(ctx).Create(commission).Error; err != nil {
		if isDuplicateKeyError(err, "idx_commissions_booking_id") {
			return ErrCommissionExists
		}
		return err
	}
	return nil
}

func (r *commissionRepository) Update(ctx context.Context, commission *models.Commission) error {
	return r.db.WithContext(ctx).Save(commission).Error
}

func (r *commissionRepository) List(ctx context.Context, query *ListQuery) ([]models.Commission, int64, error) {
	var commissions []models.Commission
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Commission{})

	if status := query.Filters["status"]; status != "" {
		db = db.Where("status = ?", status)
	}
	if commissionType := query.Filters["type"]; commissionType != "" {
		db = db.Where("type = ?", commissionType)
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

	err := db.Preload("Agent").Preload("Booking").Preload("Booking.Trip").Find(&commissions).Error
	return commissions, total, err
}

// TotalsByStatus sums commission amounts grouped by status
func (r *commissionRepository) TotalsByStatus(ctx context.Context) (map[string]decimal.Decimal, error) {
	type row struct {
		Status string
		Total  decimal.Decimal
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.Commission{}).
		Select("status, COALESCE(SUM(amount), 0) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	totals := make(map[string]decimal.Decimal, len(rows))
	for _, r := range rows {
		totals[r.Status] = r.Total
	}
	return totals, nil
}
