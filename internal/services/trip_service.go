package services

import (
	"context"
	"errors"
	"time"

	"github.com/horizon-travel/crm-api/internal/models"
	"github.com/horizon-travel/crm-api/internal/repository"
	"github.com/horizon-travel/crm-api/internal/tripstatus"
	"gorm.io/gorm"
)

// TripService manages trips. Trip status is derived, never stored: every
// read takes one clock snapshot and computes the phase for the whole batch,
// so two trips on a date boundary cannot disagree within a single response.
type TripService struct {
	repo repository.TripRepository
}

// NewTripService creates a new trip service
func NewTripService(repo repository.TripRepository) *TripService {
	return &TripService{repo: repo}
}

// Get returns a trip with its derived status
func (s *TripService) Get(ctx context.Context, id uint) (*models.TripResponse, error) {
	trip, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	active, err := s.repo.CountActiveBookings(ctx, id)
	if err != nil {
		return nil, err
	}

	status := tripstatus.Calculate(trip.StartDate, trip.EndDate, active, trip.Pax, time.Now())
	resp := trip.ToResponse(string(status), active)
	return &resp, nil
}

// List returns trips with derived statuses, optionally filtered down to a
// single derived status. Status filtering happens after derivation since the
// phase is not a column.
func (s *TripService) List(ctx context.Context, query *repository.ListQuery) ([]models.TripResponse, int64, error) {
	statusFilter := query.Filters["status"]
	delete(query.Filters, "status")

	trips, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]uint, len(trips))
	for i, t := range trips {
		ids[i] = t.ID
	}

	counts, err := s.repo.CountActiveBookingsBatch(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	// One snapshot for the whole batch
	now := time.Now()

	responses := make([]models.TripResponse, 0, len(trips))
	for _, t := range trips {
		active := counts[t.ID]
		status := tripstatus.Calculate(t.StartDate, t.EndDate, active, t.Pax, now)
		if statusFilter != "" && string(status) != statusFilter {
			continue
		}
		responses = append(responses, t.ToResponse(string(status), active))
	}

	return responses, total, nil
}

// Create creates a new trip
func (s *TripService) Create(ctx context.Context, trip *models.Trip) error {
	return s.repo.Create(ctx, trip)
}

// Update updates an existing trip
func (s *TripService) Update(ctx context.Context, trip *models.Trip) error {
	return s.repo.Update(ctx, trip)
}

// Delete removes a trip
func (s *TripService) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

// StatusDistribution counts trips per derived phase, for the dashboard
func (s *TripService) StatusDistribution(ctx context.Context) (map[string]int, error) {
	query := repository.NewListQuery()
	query.PerPage = 0 // no pagination

	trips, _, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, len(trips))
	for i, t := range trips {
		ids[i] = t.ID
	}
	counts, err := s.repo.CountActiveBookingsBatch(ctx, ids)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	dist := make(map[string]int)
	for _, t := range trips {
		status := tripstatus.Calculate(t.StartDate, t.EndDate, counts[t.ID], t.Pax, now)
		dist[string(status)]++
	}
	return dist, nil
}
