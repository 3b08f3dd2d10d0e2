package repository

import (
	"context"
	"time"

	"github.com/horizon-travel/crm-api/internal/models"
	"gorm.io/gorm"
)

// LeadRepository defines the interface for lead data access
type LeadRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Lead, error)
	FindByIDWithBookings(ctx context.Context, id uint) (*models.Lead, error)
	Create(ctx context.Context, lead *models.Lead) error
	Update(ctx context.Context, lead *models.Lead) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, query *ListQuery) ([]models.Lead, int64, error)
	FindStaleSince(ctx context.Context, before time.Time, excludingStatuses []string) ([]models.Lead, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type leadRepository struct {
	db *gorm.DB
}

// NewLeadRepository creates a new lead repository
func NewLeadRepository(db *gorm.DB) LeadRepository {
	return &leadRepository{db: db}
}

func (r *leadRepository) FindByID(ctx context.Context, id uint) (*models.Lead, error) {
	var lead models.Lead
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Agent").
		First(&lead, id).Error
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

func (r *leadRepository) FindByIDWithBookings(ctx context.Context, id uint) (*models.Lead, error) {
	var lead models.Lead
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Agent").
		Preload("Bookings").
		First(&lead, id).Error
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

func (r *leadRepository) Create(ctx context.Context, lead *models.Lead) error {
	return r.db.WithContext(ctx).Create(lead).Error
}

func (r *leadRepository) Update(ctx context.Context, lead *models.Lead) error {
	return r.db.WithContext(ctx).Save(lead).Error
}

func (r *leadRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Lead{}, id).Error
}

func (r *leadRepository) List(ctx context.Context, query *ListQuery) ([]models.Lead, int64, error) {
	var leads []models.Lead
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Lead{})

	if status := query.Filters["status"]; status != "" {
		db = db.Where("status = ?", status)
	}
	if source := query.Filters["source"]; source != "" {
		db = db.Where("source = ?", source)
	}
	if agentID := query.Filters["agent_id"]; agentID != "" {
		db = db.Where("agent_id = ?", agentID)
	}
	if customerID := query.Filters["customer_id"]; customerID != "" {
		db = db.Where("customer_id = ?", customerID)
	}

	db.Count(&total)

	if query.SortBy != "" {
		order := query.SortBy
		if query.SortDir == "desc" {
			order += " DESC"
		}
		db = db.Order(order)
	} else {
		db = db.Order("last_activity_at DESC")
	}

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Preload("Customer").Preload("Agent").Find(&leads).Error
	return leads, total, err
}

// FindStaleSince returns leads whose last activity predates the cutoff and
// whose status is not in the excluded set. Used by the abandonment sweep.
func (r *leadRepository) FindStaleSince(ctx context.Context, before time.Time, excludingStatuses []string) ([]models.Lead, error) {
	var leads []models.Lead
	db := r.db.WithContext(ctx).Where("last_activity_at < ?", before)
	if len(excludingStatuses) > 0 {
		db = db.Where("status NOT IN ?", excludingStatuses)
	}
	err := db.Find(&leads).Error
	return leads, err
}

func (r *leadRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.Lead{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
