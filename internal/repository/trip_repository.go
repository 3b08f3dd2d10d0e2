package repository

import (
	"context"
	"strings"

	"github.com/horizon-travel/crm-api/internal/models"
	"gorm.io/gorm"
)

// TripRepository defines the interface for trip data access
type TripRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Trip, error)
	Create(ctx context.Context, trip *models.Trip) error
	Update(ctx context.Context, trip *models.Trip) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, query *ListQuery) ([]models.Trip, int64, error)
	CountActiveBookings(ctx context.Context, tripID uint) (int, error)
	CountActiveBookingsBatch(ctx context.Context, tripIDs []uint) (map[uint]int, error)
	SumActiveTravellers(ctx context.Context, tripID uint) (int, error)
}

type tripRepository struct {
	db *gorm.DB
}

// NewTripRepository creates a new trip repository
func NewTripRepository(db *gorm.DB) TripRepository {
	return &tripRepository{db: db}
}

func (r *tripRepository) FindByID(ctx context.Context, id uint) (*models.Trip, error) {
	var trip models.Trip
	err := r.db.WithContext(ctx).First(&trip, id).Error
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

func (r *tripRepository) Create(ctx context.Context, trip *models.Trip) error {
	return r.db.WithContext(ctx).Create(trip).Error
}

func (r *tripRepository) Update(ctx context.Context, trip *models.Trip) error {
	return r.db.WithContext(ctx).Save(trip).Error
}

func (r *tripRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Trip{}, id).Error
}

func (r *tripRepository) List(ctx context.Context, query *ListQuery) ([]models.Trip, int64, error) {
	var trips []models.Trip
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Trip{})

	if search := query.Filters["search_term"]; search != "" {
		term := "%" + strings.ToLower(search) + "%"
		db = db.Where("LOWER(name) LIKE ? OR LOWER(destination) LIKE ?", term, term)
	}
	if destination := query.Filters["destination"]; destination != "" {
		db = db.Where("LOWER(destination) = LOWER(?)", destination)
	}
	if from := query.Filters["start_from"]; from != "" {
		db = db.Where("start_date >= ?", from)
	}
	if to := query.Filters["start_to"]; to != "" {
		db = db.Where("start_date <= ?", to)
	}

	db.Count(&total)

	if query.SortBy != "" {
		order := query.SortBy
		if query.SortDir == "desc" {
			order += " DESC"
		}
		db = db.Order(order)
	} else {
		db = db.Order("start_date ASC")
	}

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Find(&trips).Error
	return trips, total, err
}

// CountActiveBookings counts non-cancelled bookings for a trip
func (r *tripRepository) CountActiveBookings(ctx context.Context, tripID uint) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("trip_id = ? AND payment_status <> ?", tripID, models.PaymentStatusCancelled).
		Count(&count).Error
	return int(count), err
}

// SumActiveTravellers totals the travellers on non-cancelled bookings for a
// trip, i.e. the seats actually taken.
func (r *tripRepository) SumActiveTravellers(ctx context.Context, tripID uint) (int, error) {
	var sum int64
	err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("trip_id = ? AND payment_status <> ?", tripID, models.PaymentStatusCancelled).
		Select("COALESCE(SUM(travellers), 0)").
		Scan(&sum).Error
	return int(sum), err
}

// CountActiveBookingsBatch counts non-cancelled bookings for a set of trips
// in one query. Trips with no bookings are absent from the result map.
func (r *tripRepository) CountActiveBookingsBatch(ctx context.Context, tripIDs []uint) (map[uint]int, error) {
	counts := make(map[uint]int, len(tripIDs))
	if len(tripIDs) == 0 {
		return counts, nil
	}

	type row struct {
		TripID uint
		Count  int
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Select("trip_id, COUNT(*) AS count").
		Where("trip_id IN ? AND payment_status <> ?", tripIDs, models.PaymentStatusCancelled).
		Group("trip_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, r := range rows {
		counts[r.TripID] = r.Count
	}
	return counts, nil
}
