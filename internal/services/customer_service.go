package services

import (
	"context"
	"errors"
	"strings"

	"github.com/horizon-travel/crm-api/internal/models"
	"github.com/horizon-travel/crm-api/internal/repository"
	"gorm.io/gorm"
)

type CustomerService struct {
	repo        repository.CustomerRepository
	bookingRepo repository.BookingRepository
}

func NewCustomerService(repo repository.CustomerRepository, bookingRepo repository.BookingRepository) *CustomerService {
	return &CustomerService{repo: repo, bookingRepo: bookingRepo}
}

func (s *CustomerService) Get(ctx context.Context, id uint) (*models.Customer, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return customer, nil
}

func (s *CustomerService) List(ctx context.Context, query *repository.ListQuery) ([]models.Customer, int64, error) {
	return s.repo.List(ctx, query)
}

func (s *CustomerService) Create(ctx context.Context, customer *models.Customer) error {
	normalizeEmail(customer)
	return s.repo.Create(ctx, customer)
}

func (s *CustomerService) Update(ctx context.Context, customer *models.Customer) error {
	normalizeEmail(customer)
	return s.repo.Update(ctx, customer)
}

func normalizeEmail(customer *models.Customer) {
	if customer.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*customer.Email))
		customer.Email = &email
	}
}

// Delete removes a customer. Customers with live bookings cannot be deleted.
func (s *CustomerService) Delete(ctx context.Context, id uint) error {
	active, err := s.bookingRepo.CountActiveByCustomer(ctx, id)
	if err != nil {
		return err
	}
	if active > 0 {
		return ErrStatusLocked
	}
	return s.repo.Delete(ctx, id)
}

// Bookings lists a customer's bookings, newest first
func (s *CustomerService) Bookings(ctx context.Context, id uint) ([]models.Booking, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.bookingRepo.FindByCustomer(ctx, id)
}
